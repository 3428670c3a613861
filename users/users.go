package users

import (
	"fmt"
	"time"

	"unicode"
)

// RoleType represents a user's role within a restaurant
type RoleType string

const (
	RoleAdmin    RoleType = "ADMIN"    // Platform administrator, can manage all restaurants
	RoleOwner    RoleType = "OWNER"    // Restaurant owner, full control of their restaurant
	RoleManager  RoleType = "MANAGER"  // Can manage staff, menus, and orders
	RoleStaff    RoleType = "STAFF"    // Day-to-day operations within a restaurant
	RoleCustomer RoleType = "CUSTOMER" // Ordering and profile access only
)

// StaffType narrows a STAFF role to a concrete job function
type StaffType string

const (
	StaffOwner     StaffType = "OWNER"
	StaffManager   StaffType = "MANAGER"
	StaffHeadChef  StaffType = "HEAD_CHEF"
	StaffChef      StaffType = "CHEF"
	StaffWaiter    StaffType = "WAITER"
	StaffCashier   StaffType = "CASHIER"
	StaffHost      StaffType = "HOST"
	StaffBartender StaffType = "BARTENDER"
	StaffKitchen   StaffType = "KITCHEN"
	StaffCleaner   StaffType = "CLEANER"
	StaffDelivery  StaffType = "DELIVERY"
)

// User is the client-side snapshot of the backend's user record. It is
// read-mostly: the backend owns the record, the client caches what the
// auth endpoints return.
type User struct {
	ID           string      `json:"id,omitempty"`            // Unique identifier for the user
	Email        string      `json:"email,omitempty"`         // User's email address
	FirstName    string      `json:"first_name,omitempty"`    // First name of the user
	LastName     string      `json:"last_name,omitempty"`     // Last name of the user
	PhoneNumber  string      `json:"phone_number,omitempty"`  // Contact phone number
	Role         RoleType    `json:"role,omitempty"`          // Role within the restaurant
	StaffType    StaffType   `json:"staff_type,omitempty"`    // Job function for staff roles
	RestaurantID string      `json:"restaurant_id,omitempty"` // Restaurant the user belongs to
	Active       bool        `json:"is_active,omitempty"`     // Active, can the user still log in
	CreatedAt    time.Time   `json:"created_at,omitempty"`    // When the account was created
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"` // Last successful login, if any
	Permissions  Permissions `json:"permissions,omitempty"`   // Per-user capability grants
}

// ValidatePasswordStrength checks if a password meets security requirements
// before it is ever sent to the backend:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// FullName returns the user's display name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// IsAdmin returns true if the user has platform admin privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageRestaurant checks whether the user can administer the given restaurant
func (u *User) CanManageRestaurant(restaurantID string) bool {
	if u.IsAdmin() {
		return true
	}
	if u.RestaurantID != restaurantID {
		return false
	}
	return u.Role == RoleOwner || u.Role == RoleManager
}

// BelongsTo checks if the user is a member of the given restaurant.
// An empty restaurant ID matches any user.
func (u *User) BelongsTo(restaurantID string) bool {
	if restaurantID == "" {
		return true
	}
	return u.RestaurantID == restaurantID
}

// IsStaff returns true for roles that work inside a restaurant
func (u *User) IsStaff() bool {
	switch u.Role {
	case RoleOwner, RoleManager, RoleStaff:
		return true
	}
	return false
}
