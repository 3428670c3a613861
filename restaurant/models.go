// Package restaurant provides read-mostly typed access to the
// platform's restaurant resources for an authenticated client. It is a
// collaborator surface over the documented REST API; the backend owns
// all business logic.
package restaurant

import "time"

// RestaurantStatus mirrors the backend's restaurant lifecycle states.
type RestaurantStatus string

const (
	StatusActive    RestaurantStatus = "ACTIVE"
	StatusInactive  RestaurantStatus = "INACTIVE"
	StatusSuspended RestaurantStatus = "SUSPENDED"
	StatusPending   RestaurantStatus = "PENDING"
	StatusClosed    RestaurantStatus = "CLOSED"
)

// OrderStatus mirrors the backend's order lifecycle states.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderServed    OrderStatus = "SERVED"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderRefunded  OrderStatus = "REFUNDED"
)

// Restaurant is the tenant record.
type Restaurant struct {
	ID                string           `json:"id"`
	Name              string           `json:"restaurant_name"`
	Code              string           `json:"restaurant_code"`
	BusinessEmail     string           `json:"business_email,omitempty"`
	PhoneNumber       string           `json:"phone_number,omitempty"`
	Address           string           `json:"address,omitempty"`
	Timezone          string           `json:"timezone,omitempty"`
	CurrencyCode      string           `json:"currency_code,omitempty"`
	TaxRate           float64          `json:"tax_rate,omitempty"`
	ServiceChargeRate float64          `json:"service_charge_rate,omitempty"`
	Status            RestaurantStatus `json:"status,omitempty"`
	SubscriptionTier  string           `json:"subscription_tier,omitempty"`
	AllowsTakeout     bool             `json:"allows_takeout,omitempty"`
	AllowsDelivery    bool             `json:"allows_delivery,omitempty"`
	CreatedAt         time.Time        `json:"created_at,omitempty"`
}

// MenuCategory groups menu items for display.
type MenuCategory struct {
	ID              string `json:"id"`
	Name            string `json:"category_name"`
	Description     string `json:"description,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	DisplayOrder    int    `json:"display_order"`
	Active          bool   `json:"is_active"`
	AvailableAllDay bool   `json:"available_all_day"`
}

// MenuItem is a sellable dish.
type MenuItem struct {
	ID              string  `json:"id"`
	CategoryID      string  `json:"category_id,omitempty"`
	Name            string  `json:"item_name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	PrepTimeMinutes int     `json:"prep_time_minutes,omitempty"`
	Vegetarian      bool    `json:"is_vegetarian,omitempty"`
	Vegan           bool    `json:"is_vegan,omitempty"`
	GlutenFree      bool    `json:"is_gluten_free,omitempty"`
	Spicy           bool    `json:"is_spicy,omitempty"`
	SpiceLevel      int     `json:"spice_level,omitempty"`
	Available       bool    `json:"is_available"`
	Featured        bool    `json:"is_featured,omitempty"`
	Popular         bool    `json:"is_popular,omitempty"`
	DisplayOrder    int     `json:"display_order,omitempty"`
	ImageURL        string  `json:"image_url,omitempty"`
}

// Special is a time-bounded promotion.
type Special struct {
	ID          string     `json:"id"`
	Name        string     `json:"special_name"`
	Description string     `json:"description,omitempty"`
	Price       float64    `json:"special_price,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Active      bool       `json:"is_active"`
}

// Table is a physical table in the restaurant.
type Table struct {
	ID          string `json:"id"`
	TableNumber string `json:"table_number"`
	Capacity    int    `json:"capacity,omitempty"`
	Location    string `json:"location,omitempty"`
	Active      bool   `json:"is_active"`
	Occupied    bool   `json:"is_occupied,omitempty"`
}

// Order is a summary of a placed order.
type Order struct {
	ID            string      `json:"id"`
	OrderNumber   string      `json:"order_number"`
	TableID       string      `json:"table_id,omitempty"`
	OrderType     string      `json:"order_type,omitempty"`
	Status        OrderStatus `json:"order_status"`
	PaymentStatus string      `json:"payment_status,omitempty"`
	GuestName     string      `json:"guest_name,omitempty"`
	PartySize     int         `json:"party_size,omitempty"`
	Subtotal      float64     `json:"subtotal,omitempty"`
	TaxAmount     float64     `json:"tax_amount,omitempty"`
	TotalAmount   float64     `json:"total_amount,omitempty"`
	OrderedAt     time.Time   `json:"ordered_at,omitempty"`
}

// Terminal reports whether the order has reached a final state.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderCompleted, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// Pagination echoes the backend's paging envelope.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

// PageRequest selects a page of results. Zero values fall back to the
// backend's defaults.
type PageRequest struct {
	Page int
	Size int
}
