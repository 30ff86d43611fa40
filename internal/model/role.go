package model

import "strings"

// Role is a single permission role a user can hold.
type Role string

const (
	RoleChild     Role = "child"
	RoleValidator Role = "validator"
	RoleParent    Role = "parent"
)

// RoleSet is the set of roles assigned to a user. Stored as a comma-joined
// string; Go code only ever sees the parsed form.
type RoleSet []Role

// ParseRoleSet parses the comma-joined storage form. Legacy "admin" and
// "debiter" spellings collapse into validator. Unknown entries are dropped,
// duplicates removed. An empty or all-unknown input yields {child}.
func ParseRoleSet(s string) RoleSet {
	var set RoleSet
	for _, part := range strings.Split(s, ",") {
		var r Role
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "child":
			r = RoleChild
		case "validator", "admin", "debiter":
			r = RoleValidator
		case "parent":
			r = RoleParent
		default:
			continue
		}
		if !set.Has(r) {
			set = append(set, r)
		}
	}
	if len(set) == 0 {
		set = RoleSet{RoleChild}
	}
	return set
}

// Has reports whether the set contains the given role.
func (rs RoleSet) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// String returns the comma-joined storage form.
func (rs RoleSet) String() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
