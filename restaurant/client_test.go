package restaurant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dinekit/dinekit/authclient"
	"github.com/dinekit/dinekit/restaurant"
	"github.com/dinekit/dinekit/session"
	"github.com/dinekit/dinekit/session/storage/storagefake"
	"github.com/dinekit/dinekit/users"
	"github.com/stretchr/testify/require"
)

const (
	testRestaurantID = "rest-1"
	testAccessToken  = "access-abc"
)

// fixture wires an authenticated store against a fake backend.
type fixture struct {
	store  *session.Store
	client *restaurant.Client
	server *httptest.Server
}

func setupFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := session.New(storagefake.NewFakeStorage())
	require.NoError(t, err)
	store.Login(
		&users.User{ID: "user-1", Email: "jane@bistro.example", Role: users.RoleManager, RestaurantID: testRestaurantID},
		&session.Tokens{Access: testAccessToken, Type: "bearer"},
	)

	client, err := restaurant.New(server.URL, store)
	require.NoError(t, err)

	return &fixture{store: store, client: client, server: server}
}

func requireBearer(t *testing.T, r *http.Request) bool {
	t.Helper()
	return r.Header.Get("Authorization") == "Bearer "+testAccessToken
}

func writeData(w http.ResponseWriter, data any) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

func TestGetRestaurant(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants/"+testRestaurantID, func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(t, r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeData(w, map[string]any{
			"restaurant": map[string]any{
				"id":              testRestaurantID,
				"restaurant_name": "The Blue Bistro",
				"restaurant_code": "BLUE01",
				"status":          "ACTIVE",
				"tax_rate":        0.08,
			},
		})
	})

	f := setupFixture(t, mux)

	rest, err := f.client.Get(context.Background(), testRestaurantID)
	require.NoError(t, err)
	require.Equal(t, "The Blue Bistro", rest.Name)
	require.Equal(t, restaurant.StatusActive, rest.Status)
	require.InDelta(t, 0.08, rest.TaxRate, 1e-9)
}

func TestMenuItemsPagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants/"+testRestaurantID+"/menu/items", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "10", r.URL.Query().Get("size"))
		writeData(w, map[string]any{
			"items": []map[string]any{
				{"id": "item-1", "item_name": "Margherita", "price": 12.5, "is_available": true},
				{"id": "item-2", "item_name": "Diavola", "price": 14.0, "is_available": true, "is_spicy": true, "spice_level": 2},
			},
			"pagination": map[string]any{"total": 22, "page": 2, "size": 10, "pages": 3},
		})
	})

	f := setupFixture(t, mux)

	items, pagination, err := f.client.MenuItems(context.Background(), testRestaurantID, restaurant.PageRequest{Page: 2, Size: 10})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Margherita", items[0].Name)
	require.True(t, items[1].Spicy)
	require.Equal(t, 3, pagination.Pages)
	require.Equal(t, 22, pagination.Total)
}

func TestMenuCategories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants/"+testRestaurantID+"/menu/categories", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "true", r.URL.Query().Get("active_only"))
		writeData(w, map[string]any{
			"categories": []map[string]any{
				{"id": "cat-1", "category_name": "Starters", "display_order": 1, "is_active": true},
			},
		})
	})

	f := setupFixture(t, mux)

	categories, err := f.client.MenuCategories(context.Background(), testRestaurantID, true)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, "Starters", categories[0].Name)
}

func TestOrdersStatusFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants/"+testRestaurantID+"/orders", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "PREPARING", r.URL.Query().Get("status"))
		writeData(w, map[string]any{
			"orders": []map[string]any{
				{"id": "order-1", "order_number": "ORD-0042", "order_status": "PREPARING", "total_amount": 31.5},
			},
			"pagination": map[string]any{"total": 1, "page": 1, "size": 50, "pages": 1},
		})
	})

	f := setupFixture(t, mux)

	orders, _, err := f.client.Orders(context.Background(), testRestaurantID, restaurant.OrderPreparing, restaurant.PageRequest{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, restaurant.OrderPreparing, orders[0].Status)
	require.False(t, orders[0].Status.Terminal())
}

func TestRequestsFailAfterLogout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants/"+testRestaurantID, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, map[string]any{"restaurant": map[string]any{"id": testRestaurantID}})
	})

	f := setupFixture(t, mux)
	f.store.Logout()

	_, err := f.client.Get(context.Background(), testRestaurantID)
	require.ErrorIs(t, err, authclient.ErrNotAuthenticated)
}

func TestUnauthorizedResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/restaurants/"+testRestaurantID+"/tables", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
	})

	f := setupFixture(t, mux)

	_, err := f.client.Tables(context.Background(), testRestaurantID)
	require.ErrorIs(t, err, authclient.ErrUnauthorized)
}

func TestOrderStatusTerminal(t *testing.T) {
	require.True(t, restaurant.OrderCompleted.Terminal())
	require.True(t, restaurant.OrderCancelled.Terminal())
	require.True(t, restaurant.OrderRefunded.Terminal())
	require.False(t, restaurant.OrderPending.Terminal())
	require.False(t, restaurant.OrderServed.Terminal())
}
