package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/auth"
	"github.com/shoplane/shoplane-api/models"
	"github.com/shoplane/shoplane-api/testutil"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	tm := auth.NewTokenManager("test-secret", time.Hour)

	r := gin.New()
	SetupRoutes(r, db, tm)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestSignupLoginMe(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	token := loginToken(t, r, "alice")

	w = doJSON(t, r, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, models.RoleCustomer, me.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, db := setupRouter(t)
	testutil.CreateUser(t, db, "alice", models.RoleCustomer)

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r, db := setupRouter(t)
	testutil.CreateUser(t, db, "alice", models.RoleCustomer)
	testutil.CreateUser(t, db, "root", models.RoleAdmin)

	// No token at all.
	w := doJSON(t, r, http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Customer token.
	w = doJSON(t, r, http.MethodGet, "/admin/users", loginToken(t, r, "alice"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin token.
	w = doJSON(t, r, http.MethodGet, "/admin/users", loginToken(t, r, "root"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestCheckoutOverHTTP walks the whole flow through the routing layer:
// admin creates catalog data, a customer fills the cart and checks out.
func TestCheckoutOverHTTP(t *testing.T) {
	r, db := setupRouter(t)
	testutil.CreateUser(t, db, "alice", models.RoleCustomer)
	testutil.CreateUser(t, db, "root", models.RoleAdmin)

	adminToken := loginToken(t, r, "root")
	customerToken := loginToken(t, r, "alice")

	// Admin builds the catalog.
	w := doJSON(t, r, http.MethodPost, "/admin/categories", adminToken, gin.H{"name": "toys"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category models.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))

	w = doJSON(t, r, http.MethodPost, "/admin/products", adminToken, gin.H{
		"name":        "yo-yo",
		"price":       4.50,
		"stock":       3,
		"category_id": category.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))

	// Customer cannot create products.
	w = doJSON(t, r, http.MethodPost, "/admin/products", customerToken, gin.H{
		"name": "x", "price": 1, "stock": 1, "category_id": category.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Checkout with an empty cart fails.
	w = doJSON(t, r, http.MethodPost, "/orders/checkout", customerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Fill the cart and check out.
	w = doJSON(t, r, http.MethodPost, "/cart", customerToken, gin.H{
		"product_id": product.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/orders/checkout", customerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, 9.00, order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	// Asking for more than the remaining stock maps to 409.
	w = doJSON(t, r, http.MethodPost, "/cart", customerToken, gin.H{
		"product_id": product.ID,
		"quantity":   5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/orders/checkout", customerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Only admins may advance the order status.
	path := "/orders/" + itoa(order.ID) + "/status"
	w = doJSON(t, r, http.MethodPut, path, customerToken, gin.H{"status": "paid"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPut, path, adminToken, gin.H{"status": "paid"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Backwards transitions map to 409.
	w = doJSON(t, r, http.MethodPut, path, adminToken, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
