package model

import "testing"

func TestParseRoleSet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single", "child", "child"},
		{"multiple", "child,validator", "child,validator"},
		{"whitespace", " validator , parent ", "validator,parent"},
		{"legacy admin", "admin", "validator"},
		{"legacy debiter", "debiter,child", "validator,child"},
		{"duplicates collapse", "validator,admin", "validator"},
		{"unknown dropped", "child,wizard", "child"},
		{"empty defaults to child", "", "child"},
		{"all unknown defaults to child", "wizard,elf", "child"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRoleSet(tt.in).String()
			if got != tt.want {
				t.Errorf("ParseRoleSet(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoleSetHas(t *testing.T) {
	rs := ParseRoleSet("child,validator")
	if !rs.Has(RoleChild) {
		t.Error("expected Has(child) = true")
	}
	if !rs.Has(RoleValidator) {
		t.Error("expected Has(validator) = true")
	}
	if rs.Has(RoleParent) {
		t.Error("expected Has(parent) = false")
	}
}

func TestRoleSetRoundTrip(t *testing.T) {
	rs := RoleSet{RoleValidator, RoleParent}
	if got := ParseRoleSet(rs.String()).String(); got != "validator,parent" {
		t.Errorf("round trip = %q, want %q", got, "validator,parent")
	}
}
