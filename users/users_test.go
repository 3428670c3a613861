package users_test

import (
	"encoding/json"
	"testing"

	"github.com/dinekit/dinekit/users"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "Password1", false},
		{"too short", "Pass1", true},
		{"no uppercase", "password1", true},
		{"no lowercase", "PASSWORD1", true},
		{"no number", "PasswordX", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCanManageRestaurant(t *testing.T) {
	admin := &users.User{ID: "u1", Role: users.RoleAdmin}
	owner := &users.User{ID: "u2", Role: users.RoleOwner, RestaurantID: "rest-1"}
	waiter := &users.User{ID: "u3", Role: users.RoleStaff, StaffType: users.StaffWaiter, RestaurantID: "rest-1"}

	require.True(t, admin.CanManageRestaurant("rest-1"))
	require.True(t, admin.CanManageRestaurant("rest-2"))

	require.True(t, owner.CanManageRestaurant("rest-1"))
	require.False(t, owner.CanManageRestaurant("rest-2"))

	require.False(t, waiter.CanManageRestaurant("rest-1"))
	require.True(t, waiter.BelongsTo("rest-1"))
	require.True(t, waiter.IsStaff())
}

func TestFullName(t *testing.T) {
	require.Equal(t, "Jane Doe", (&users.User{FirstName: "Jane", LastName: "Doe"}).FullName())
	require.Equal(t, "Jane", (&users.User{FirstName: "Jane"}).FullName())
	require.Equal(t, "jane@example.com", (&users.User{Email: "jane@example.com"}).FullName())
}

func TestPermissionsDefaultDeny(t *testing.T) {
	p, err := users.NewPermissions(map[string]bool{
		"manage_menu":   true,
		"manage_orders": false,
	})
	require.NoError(t, err)

	require.True(t, p.Allows(users.PermManageMenu))
	require.False(t, p.Allows(users.PermManageOrders))  // explicitly denied
	require.False(t, p.Allows(users.PermViewAnalytics)) // absent
	require.False(t, p.Allows(users.PermissionKey("ride_unicorns")))
}

func TestPermissionsRejectUnknownKeys(t *testing.T) {
	_, err := users.NewPermissions(map[string]bool{"delete_everything": true})
	require.ErrorIs(t, err, users.ErrUnknownPermission)
}

func TestPermissionsJSONRoundTrip(t *testing.T) {
	var u users.User
	err := json.Unmarshal([]byte(`{"id":"u1","permissions":{"view_analytics":true}}`), &u)
	require.NoError(t, err)
	require.True(t, u.Permissions.Allows(users.PermViewAnalytics))

	err = json.Unmarshal([]byte(`{"permissions":{"bogus":true}}`), &u)
	require.ErrorIs(t, err, users.ErrUnknownPermission)
}
