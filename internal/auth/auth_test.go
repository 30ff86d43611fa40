package auth

import (
	"context"
	"testing"

	"github.com/hcardin/mesada/internal/model"
)

func TestAuthContextRoundTrip(t *testing.T) {
	ac := AuthContext{
		UserID:    42,
		Roles:     model.RoleSet{model.RoleValidator},
		SessionID: 7,
	}

	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if got.UserID != 42 || got.SessionID != 7 {
		t.Errorf("got %+v, want %+v", got, ac)
	}
	if UserID(ctx) != 42 {
		t.Errorf("UserID = %d, want 42", UserID(ctx))
	}
	if !IsValidator(ctx) {
		t.Error("expected IsValidator = true")
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("expected no auth context")
	}
	if UserID(ctx) != 0 {
		t.Error("expected UserID = 0")
	}
	if IsValidator(ctx) {
		t.Error("expected IsValidator = false")
	}
	if Roles(ctx) != nil {
		t.Error("expected nil roles")
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword(hash, "secret123") {
		t.Error("expected correct password to verify")
	}
	if CheckPassword(hash, "wrongpass") {
		t.Error("expected wrong password to fail")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	h1, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password must differ")
	}
}
