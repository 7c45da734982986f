package orderControllers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/apperr"
	"github.com/shoplane/shoplane-api/models"
	"github.com/shoplane/shoplane-api/testutil"
)

type checkoutFixture struct {
	db       *gorm.DB
	customer *models.User
	admin    *models.User
	productA *models.Product
	productB *models.Product
}

// newCheckoutFixture builds the canonical scenario: product A at $10 with
// stock 10, product B at $5 with stock 10.
func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	category := testutil.CreateCategory(t, db, "general")
	return &checkoutFixture{
		db:       db,
		customer: testutil.CreateUser(t, db, "alice", models.RoleCustomer),
		admin:    testutil.CreateUser(t, db, "root", models.RoleAdmin),
		productA: testutil.CreateProduct(t, db, "product-a", 10.00, 10, category.ID),
		productB: testutil.CreateProduct(t, db, "product-b", 5.00, 10, category.ID),
	}
}

func (f *checkoutFixture) stockOf(t *testing.T, productID uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, f.db.First(&product, productID).Error)
	return product.Stock
}

func TestCheckoutScenario(t *testing.T) {
	f := newCheckoutFixture(t)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productA.ID, 2)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productB.ID, 1)

	order, err := Checkout(context.Background(), f.db, f.customer.ID, models.RoleCustomer)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, f.customer.ID, order.UserID)
	assert.NotEmpty(t, order.OrderRef)
	assert.Equal(t, 25.00, order.Total)

	require.Len(t, order.Items, 2)
	byProduct := map[uint]models.OrderItem{}
	for _, item := range order.Items {
		byProduct[item.ProductID] = item
	}
	assert.Equal(t, 10.00, byProduct[f.productA.ID].UnitPrice)
	assert.Equal(t, 2, byProduct[f.productA.ID].Quantity)
	assert.Equal(t, 5.00, byProduct[f.productB.ID].UnitPrice)
	assert.Equal(t, 1, byProduct[f.productB.ID].Quantity)

	// Stock conservation: each product lost exactly the checked-out amount.
	assert.Equal(t, 8, f.stockOf(t, f.productA.ID))
	assert.Equal(t, 9, f.stockOf(t, f.productB.ID))

	// The cart is emptied by a successful checkout.
	var count int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("user_id = ?", f.customer.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := Checkout(context.Background(), f.db, f.customer.ID, models.RoleCustomer)
	assert.Equal(t, apperr.KindEmptyCart, apperr.KindOf(err))
}

func TestCheckoutAdminForbidden(t *testing.T) {
	f := newCheckoutFixture(t)
	testutil.AddCartItem(t, f.db, f.admin.ID, f.productA.ID, 1)

	_, err := Checkout(context.Background(), f.db, f.admin.ID, models.RoleAdmin)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestCheckoutAllOrNothing(t *testing.T) {
	f := newCheckoutFixture(t)
	// First line is satisfiable, second exceeds available stock.
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productA.ID, 2)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productB.ID, 11)

	_, err := Checkout(context.Background(), f.db, f.customer.ID, models.RoleCustomer)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, f.productB.ID, ae.EntityID)

	// No partial decrement: the first line's stock is unchanged too.
	assert.Equal(t, 10, f.stockOf(t, f.productA.ID))
	assert.Equal(t, 10, f.stockOf(t, f.productB.ID))

	// No order was created and the cart is untouched for retry.
	var orders, cartRows int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("user_id = ?", f.customer.ID).Count(&cartRows).Error)
	assert.Zero(t, orders)
	assert.Equal(t, int64(2), cartRows)
}

func TestCheckoutInsufficientStockDetail(t *testing.T) {
	f := newCheckoutFixture(t)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productB.ID, 11)

	_, err := Checkout(context.Background(), f.db, f.customer.ID, models.RoleCustomer)
	require.Error(t, err)

	// The error names the offending product and how much is actually left.
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindInsufficientStock, ae.Kind)
	assert.Equal(t, "product", ae.Entity)
	assert.Equal(t, f.productB.ID, ae.EntityID)
	assert.Contains(t, ae.Message, "available: 10")
}

func TestCheckoutDeletedProduct(t *testing.T) {
	f := newCheckoutFixture(t)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productA.ID, 1)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productB.ID, 1)

	// Product B is deleted after it was added to the cart.
	require.NoError(t, f.db.Delete(f.productB).Error)

	_, err := Checkout(context.Background(), f.db, f.customer.ID, models.RoleCustomer)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// The whole checkout aborted: product A still has its stock.
	assert.Equal(t, 10, f.stockOf(t, f.productA.ID))

	var orders int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestPriceFreeze(t *testing.T) {
	f := newCheckoutFixture(t)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productA.ID, 2)

	order, err := Checkout(context.Background(), f.db, f.customer.ID, models.RoleCustomer)
	require.NoError(t, err)
	require.Equal(t, 20.00, order.Total)

	// Raise the product price after checkout.
	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", f.productA.ID).
		Update("price", 99.99).Error)

	var reloaded models.Order
	require.NoError(t, f.db.Preload("Items").First(&reloaded, order.ID).Error)
	assert.Equal(t, 20.00, reloaded.Total)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 10.00, reloaded.Items[0].UnitPrice)
}

func TestCheckoutConcurrentLastUnit(t *testing.T) {
	f := newCheckoutFixture(t)
	category := testutil.CreateCategory(t, f.db, "limited")
	lastUnit := testutil.CreateProduct(t, f.db, "last-unit", 30.00, 1, category.ID)

	bob := testutil.CreateUser(t, f.db, "bob", models.RoleCustomer)
	testutil.AddCartItem(t, f.db, f.customer.ID, lastUnit.ID, 1)
	testutil.AddCartItem(t, f.db, bob.ID, lastUnit.ID, 1)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, userID := range []uint{f.customer.ID, bob.ID} {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			_, errs[i] = Checkout(context.Background(), f.db, userID, models.RoleCustomer)
		}(i, userID)
	}
	wg.Wait()

	var successes, stockFailures int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperr.KindOf(err) == apperr.KindInsufficientStock:
			stockFailures++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one checkout must win the last unit")
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, f.stockOf(t, lastUnit.ID))
}

func TestCheckoutCancelledContext(t *testing.T) {
	f := newCheckoutFixture(t)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productA.ID, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Checkout(ctx, f.db, f.customer.ID, models.RoleCustomer)
	require.Error(t, err)

	// An aborted checkout commits nothing.
	assert.Equal(t, 10, f.stockOf(t, f.productA.ID))
	var orders, cartRows int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("user_id = ?", f.customer.ID).Count(&cartRows).Error)
	assert.Zero(t, orders)
	assert.Equal(t, int64(1), cartRows)
}

func TestOrderVisibility(t *testing.T) {
	f := newCheckoutFixture(t)
	bob := testutil.CreateUser(t, f.db, "bob", models.RoleCustomer)

	testutil.AddCartItem(t, f.db, f.customer.ID, f.productA.ID, 1)
	aliceOrder, err := Checkout(context.Background(), f.db, f.customer.ID, models.RoleCustomer)
	require.NoError(t, err)

	testutil.AddCartItem(t, f.db, bob.ID, f.productB.ID, 1)
	bobOrder, err := Checkout(context.Background(), f.db, bob.ID, models.RoleCustomer)
	require.NoError(t, err)

	ctx := context.Background()

	// Customers see only their own orders.
	orders, err := ListOrders(ctx, f.db, f.customer.ID, models.RoleCustomer, 0, 100)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, aliceOrder.ID, orders[0].ID)

	// Admins see everything.
	orders, err = ListOrders(ctx, f.db, f.admin.ID, models.RoleAdmin, 0, 100)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	// A customer cannot read another user's order; an admin can.
	_, err = GetOrder(ctx, f.db, bobOrder.ID, f.customer.ID, models.RoleCustomer)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	got, err := GetOrder(ctx, f.db, bobOrder.ID, f.admin.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, bobOrder.ID, got.ID)

	_, err = GetOrder(ctx, f.db, 9999, f.admin.ID, models.RoleAdmin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSetStatus(t *testing.T) {
	f := newCheckoutFixture(t)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productA.ID, 1)
	order, err := Checkout(context.Background(), f.db, f.customer.ID, models.RoleCustomer)
	require.NoError(t, err)

	ctx := context.Background()

	// Non-admins cannot change status.
	_, err = SetStatus(ctx, f.db, order.ID, models.OrderStatusPaid, models.RoleCustomer)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// Unknown order.
	_, err = SetStatus(ctx, f.db, 9999, models.OrderStatusPaid, models.RoleAdmin)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Forward steps succeed.
	updated, err := SetStatus(ctx, f.db, order.ID, models.OrderStatusPaid, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, updated.Status)

	updated, err = SetStatus(ctx, f.db, order.ID, models.OrderStatusShipped, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	updated, err = SetStatus(ctx, f.db, order.ID, models.OrderStatusDelivered, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	// delivered is terminal.
	_, err = SetStatus(ctx, f.db, order.ID, models.OrderStatusShipped, models.RoleAdmin)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestSetStatusCancellation(t *testing.T) {
	f := newCheckoutFixture(t)
	testutil.AddCartItem(t, f.db, f.customer.ID, f.productA.ID, 1)
	order, err := Checkout(context.Background(), f.db, f.customer.ID, models.RoleCustomer)
	require.NoError(t, err)

	ctx := context.Background()

	// pending -> cancelled is the one allowed exit.
	updated, err := SetStatus(ctx, f.db, order.ID, models.OrderStatusCancelled, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)

	// cancelled is terminal.
	for _, next := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusPaid,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		_, err = SetStatus(ctx, f.db, order.ID, next, models.RoleAdmin)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err), "cancelled -> %s", next)
	}
}
