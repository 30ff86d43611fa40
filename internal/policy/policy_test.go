package policy

import (
	"testing"

	"github.com/hcardin/mesada/internal/model"
)

func TestAllowed(t *testing.T) {
	validator := model.RoleSet{model.RoleValidator}
	child := model.RoleSet{model.RoleChild}
	parent := model.RoleSet{model.RoleParent}
	both := model.RoleSet{model.RoleChild, model.RoleValidator}

	tests := []struct {
		name  string
		roles model.RoleSet
		page  Page
		want  bool
	}{
		{"dashboard open to validator", validator, PageDashboard, true},
		{"dashboard open to child", child, PageDashboard, true},
		{"dashboard open to parent", parent, PageDashboard, true},
		{"tasks for child", child, PageTasks, true},
		{"tasks for validator", validator, PageTasks, true},
		{"tasks denied to parent", parent, PageTasks, false},
		{"validate for validator only", validator, PageValidate, true},
		{"validate denied to child", child, PageValidate, false},
		{"debits for child", child, PageDebits, true},
		{"users for validator", validator, PageUsers, true},
		{"users denied to child", child, PageUsers, false},
		{"combined roles get both", both, PageValidate, true},
		{"unknown page denied", validator, Page("billing"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.roles, tt.page); got != tt.want {
				t.Errorf("Allowed(%v, %q) = %v, want %v", tt.roles, tt.page, got, tt.want)
			}
		})
	}
}

func TestCanDebit(t *testing.T) {
	validator := model.RoleSet{model.RoleValidator}
	child := model.RoleSet{model.RoleChild}

	if !CanDebit(validator, 1, 2) {
		t.Error("validator should debit any user")
	}
	if !CanDebit(child, 3, 3) {
		t.Error("child should debit self")
	}
	if CanDebit(child, 3, 4) {
		t.Error("child must not debit another user")
	}
	if CanDebit(model.RoleSet{model.RoleParent}, 5, 5) {
		t.Error("parent role alone grants no debit rights")
	}
}

func TestCanEditEmail(t *testing.T) {
	child := model.RoleSet{model.RoleChild}
	if !CanEditEmail(child, 7, 7) {
		t.Error("user should edit own email")
	}
	if CanEditEmail(child, 7, 8) {
		t.Error("child must not edit another user's email")
	}
	if !CanEditEmail(model.RoleSet{model.RoleValidator}, 1, 8) {
		t.Error("validator should edit any email")
	}
}
