package store

import (
	"testing"

	"github.com/hcardin/mesada/internal/model"
)

func TestDebitCreate(t *testing.T) {
	db := openTestDB(t)
	users := NewUserStore(db)
	debits := NewDebitStore(db)
	child, validator := seedChildAndValidator(t, users)

	money := 2.5
	d, err := debits.Create(child.ID, 0, &money, nil, "candy", validator.ID)
	if err != nil {
		t.Fatalf("create debit: %v", err)
	}
	if d.UserID != child.ID {
		t.Errorf("user id = %d, want %d", d.UserID, child.ID)
	}
	if d.MoneyAmount == nil || *d.MoneyAmount != 2.5 {
		t.Errorf("money = %v, want 2.5", d.MoneyAmount)
	}
	if d.HoursAmount != nil {
		t.Error("expected nil hours amount")
	}
	if d.Reason != "candy" {
		t.Errorf("reason = %q, want candy", d.Reason)
	}
	if d.PerformedByID != validator.ID {
		t.Errorf("performed by = %d, want %d", d.PerformedByID, validator.ID)
	}
}

func TestDebitListByUser(t *testing.T) {
	db := openTestDB(t)
	users := NewUserStore(db)
	debits := NewDebitStore(db)
	child, validator := seedChildAndValidator(t, users)
	other, _ := users.Create("Ana", nil, model.RoleSet{model.RoleChild}, nil)

	money := 1.0
	debits.Create(child.ID, 0, &money, nil, "one", validator.ID)
	debits.Create(other.ID, 0, &money, nil, "two", validator.ID)

	got, err := debits.List(&child.ID)
	if err != nil {
		t.Fatalf("list debits: %v", err)
	}
	if len(got) != 1 || got[0].Reason != "one" {
		t.Errorf("got %v, want just the child's debit", got)
	}

	all, _ := debits.List(nil)
	if len(all) != 2 {
		t.Errorf("all = %d debits, want 2", len(all))
	}
}

func TestDebitDelete(t *testing.T) {
	db := openTestDB(t)
	users := NewUserStore(db)
	debits := NewDebitStore(db)
	child, validator := seedChildAndValidator(t, users)

	hours := 0.5
	d, _ := debits.Create(child.ID, 0, nil, &hours, "screen time", validator.ID)

	deleted, err := debits.Delete(d.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deletion")
	}
	if deleted, _ := debits.Delete(d.ID); deleted {
		t.Error("second delete should report false")
	}
}
