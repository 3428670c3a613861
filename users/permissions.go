package users

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// PermissionKey identifies a single capability a user may be granted.
// The set of keys is closed: anything outside it is rejected on parse
// and denied on lookup.
type PermissionKey string

const (
	PermManageMenu     PermissionKey = "manage_menu"
	PermManageOrders   PermissionKey = "manage_orders"
	PermManageStaff    PermissionKey = "manage_staff"
	PermManageTables   PermissionKey = "manage_tables"
	PermManageSpecials PermissionKey = "manage_specials"
	PermViewAnalytics  PermissionKey = "view_analytics"
	PermProcessPayment PermissionKey = "process_payments"
)

// knownPermissions is the closed set of keys the client understands.
var knownPermissions = map[PermissionKey]struct{}{
	PermManageMenu:     {},
	PermManageOrders:   {},
	PermManageStaff:    {},
	PermManageTables:   {},
	PermManageSpecials: {},
	PermViewAnalytics:  {},
	PermProcessPayment: {},
}

// ErrUnknownPermission is returned when a permission map carries a key
// outside the closed set.
var ErrUnknownPermission = errors.New("unknown permission key")

// Permissions is a validated capability grant map with a default-deny
// policy: absent or unknown keys always resolve to false.
type Permissions map[PermissionKey]bool

// NewPermissions builds a Permissions map from raw key/value pairs,
// rejecting keys outside the closed set.
func NewPermissions(raw map[string]bool) (Permissions, error) {
	p := make(Permissions, len(raw))
	for k, v := range raw {
		key := PermissionKey(k)
		if _, ok := knownPermissions[key]; !ok {
			return nil, errors.Wrapf(ErrUnknownPermission, "[NewPermissions] %q", k)
		}
		p[key] = v
	}
	return p, nil
}

// Allows reports whether the capability is explicitly granted.
// Unknown and absent keys are denied.
func (p Permissions) Allows(key PermissionKey) bool {
	if _, ok := knownPermissions[key]; !ok {
		return false
	}
	return p[key]
}

// UnmarshalJSON validates incoming permission maps against the closed
// key set so an unexpected backend grant is an error rather than a
// silently-honored capability.
func (p *Permissions) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "[Permissions.UnmarshalJSON]")
	}
	parsed, err := NewPermissions(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
