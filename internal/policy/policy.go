// Package policy maps role sets to the pages and actions they may reach.
// The table is enforced at the HTTP boundary; stores and the ledger trust
// their callers.
package policy

import "github.com/hcardin/mesada/internal/model"

// Page identifies an access-controlled area of the application.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageTasks     Page = "tasks"
	PageValidate  Page = "validate"
	PageDebits    Page = "debits"
	PageUsers     Page = "users"
)

// pageRoles lists which roles unlock each page. A nil entry means any
// authenticated user.
var pageRoles = map[Page][]model.Role{
	PageDashboard: nil,
	PageTasks:     {model.RoleValidator, model.RoleChild},
	PageValidate:  {model.RoleValidator},
	PageDebits:    {model.RoleValidator, model.RoleChild},
	PageUsers:     {model.RoleValidator},
}

// Allowed reports whether a user holding roles may reach page. Unknown pages
// are denied.
func Allowed(roles model.RoleSet, page Page) bool {
	required, ok := pageRoles[page]
	if !ok {
		return false
	}
	if required == nil {
		return len(roles) > 0
	}
	for _, r := range required {
		if roles.Has(r) {
			return true
		}
	}
	return false
}

// CanValidate reports whether the roles include the validator role.
func CanValidate(roles model.RoleSet) bool {
	return roles.Has(model.RoleValidator)
}

// CanDebit reports whether a user holding roles may create a debit against
// targetID. Validators may debit anyone; children only themselves.
func CanDebit(roles model.RoleSet, userID, targetID int64) bool {
	if roles.Has(model.RoleValidator) {
		return true
	}
	return roles.Has(model.RoleChild) && userID == targetID
}

// CanEditEmail reports whether a user may change the email of targetID:
// validators anyone, everyone their own.
func CanEditEmail(roles model.RoleSet, userID, targetID int64) bool {
	return roles.Has(model.RoleValidator) || userID == targetID
}
