package order

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/catalog"
	"softmarket-service/internal/domain/license"
	"softmarket-service/internal/domain/order"
	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
)

func subs() []catalog.SoftwareSubscription {
	return []catalog.SoftwareSubscription{
		{ID: 1, Price: 9.99, PlanDuration: 1},
		{ID: 2, Price: 49.99, PlanDuration: 6},
	}
}

func items(ids ...int64) []order.OrderItemInput {
	out := make([]order.OrderItemInput, 0, len(ids))
	for _, id := range ids {
		out = append(out, order.OrderItemInput{SubscriptionID: id})
	}
	return out
}

func TestValidateItemsTotal(t *testing.T) {
	t.Parallel()

	total, byID, err := ValidateItems(items(1, 2), subs(), true)
	assert.NoError(t, err)
	assert.Equal(t, 59.98, total)
	assert.Len(t, byID, 2)
}

func TestValidateItemsEmpty(t *testing.T) {
	t.Parallel()

	_, _, err := ValidateItems(nil, subs(), true)
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))

	_, _, err = ValidateItems([]order.OrderItemInput{}, subs(), true)
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
}

func TestValidateItemsUnknownSubscription(t *testing.T) {
	t.Parallel()

	// id 99 is not among the fetched active subscriptions, which also
	// covers inactive and deleted plans since the query filters those out.
	_, _, err := ValidateItems(items(1, 99), subs(), true)
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
}

func TestValidateItemsDuplicatesAllowed(t *testing.T) {
	t.Parallel()

	// Each duplicate is its own line item and is charged again.
	total, _, err := ValidateItems(items(1, 1, 2), subs(), true)
	assert.NoError(t, err)
	assert.Equal(t, 69.97, total)
}

func TestValidateItemsDuplicatesRejected(t *testing.T) {
	t.Parallel()

	_, _, err := ValidateItems(items(1, 1), subs(), false)
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
}

func TestUniqueIDs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int64{1, 2}, uniqueIDs(items(1, 1, 2, 1)))
	assert.Equal(t, []int64{5}, uniqueIDs(items(5)))
}

type fakeTxRunner struct {
	calls      int
	rolledBack bool
}

func (f *fakeTxRunner) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	err := fn(nil)
	if err != nil {
		f.rolledBack = true
	}
	return err
}

type fakeOrderStore struct {
	orders    map[int64]*order.Order
	items     map[int64][]order.OrderItem
	statuses  []order.OrderStatus
	sellerIDs []int64
	nextID    int64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[int64]*order.Order),
		items:  make(map[int64][]order.OrderItem),
	}
}

func (f *fakeOrderStore) CreateWithTx(_ context.Context, _ pgx.Tx, o *order.Order) error {
	f.nextID++
	o.ID = f.nextID
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderStore) CreateItemsWithTx(_ context.Context, _ pgx.Tx, items []order.OrderItem) ([]order.OrderItem, error) {
	for i := range items {
		items[i].ID = int64(i + 1)
	}
	if len(items) > 0 {
		f.items[items[0].OrderID] = items
	}
	return items, nil
}

func (f *fakeOrderStore) FindByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) ListByUser(_ context.Context, userID int64) ([]order.Order, error) {
	var out []order.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateStatusWithTx(_ context.Context, _ pgx.Tx, id int64, status order.OrderStatus) error {
	f.orders[id].Status = status
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeOrderStore) ItemIDsWithTx(_ context.Context, _ pgx.Tx, orderID int64) ([]int64, error) {
	ids := []int64{}
	for _, item := range f.items[orderID] {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func (f *fakeOrderStore) SellerIDs(_ context.Context, _ int64) ([]int64, error) {
	return f.sellerIDs, nil
}

type fakeSubFinder struct {
	subs []catalog.SoftwareSubscription
}

func (f *fakeSubFinder) FindByIDs(_ context.Context, _ []int64) ([]catalog.SoftwareSubscription, error) {
	return f.subs, nil
}

type fakeLicenseIssuer struct {
	created  []license.LicenseKey
	expired  []int64
	batchErr error
}

func (f *fakeLicenseIssuer) CreateBatchWithTx(_ context.Context, _ pgx.Tx, licenses []license.LicenseKey) ([]license.LicenseKey, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	f.created = append(f.created, licenses...)
	return licenses, nil
}

func (f *fakeLicenseIssuer) ExpireByOrderItemsWithTx(_ context.Context, _ pgx.Tx, orderItemIDs []int64) error {
	f.expired = append(f.expired, orderItemIDs...)
	return nil
}

type fakePaymentStore struct {
	created []*order.Payment
	known   map[string]bool
}

func (f *fakePaymentStore) CreateWithTx(_ context.Context, _ pgx.Tx, p *order.Payment) error {
	if f.known[p.TransactionID] {
		return xerrors.ErrDuplicateEntry
	}
	f.created = append(f.created, p)
	return nil
}

func (f *fakePaymentStore) ExistsByTransactionID(_ context.Context, transactionID string) (bool, error) {
	return f.known[transactionID], nil
}

type fakeCartStore struct {
	removed [][]int64
}

func (f *fakeCartStore) RemoveBySubscriptions(_ context.Context, _ int64, subscriptionIDs []int64) error {
	f.removed = append(f.removed, subscriptionIDs)
	return nil
}

type fakeEnqueuer struct {
	jobs []string
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, jobType string, _ interface{}) error {
	f.jobs = append(f.jobs, jobType)
	return nil
}

type fakeDashboards struct {
	invalidated []int64
}

func (f *fakeDashboards) Invalidate(_ context.Context, sellerID int64) {
	f.invalidated = append(f.invalidated, sellerID)
}

type orderFixture struct {
	runner     *fakeTxRunner
	orders     *fakeOrderStore
	licenses   *fakeLicenseIssuer
	payments   *fakePaymentStore
	cart       *fakeCartStore
	queue      *fakeEnqueuer
	dashboards *fakeDashboards
	svc        *Service
}

func newOrderFixture(available []catalog.SoftwareSubscription) *orderFixture {
	f := &orderFixture{
		runner:     &fakeTxRunner{},
		orders:     newFakeOrderStore(),
		licenses:   &fakeLicenseIssuer{},
		payments:   &fakePaymentStore{known: make(map[string]bool)},
		cart:       &fakeCartStore{},
		queue:      &fakeEnqueuer{},
		dashboards: &fakeDashboards{},
	}
	f.svc = NewService(f.runner, f.orders, &fakeSubFinder{subs: available}, f.licenses,
		f.payments, f.cart, f.queue, f.dashboards, zap.NewNop())
	return f
}

func buyer() user.Principal {
	return user.Principal{UserID: 7, Role: "user"}
}

func TestCreateOrderIssuesOneLicensePerItem(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(subs())

	o, err := f.svc.CreateOrder(context.Background(), buyer(), &order.CreateOrderRequest{
		OrderItems: items(1, 2, 1),
	})
	assert.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, 69.97, o.TotalAmount)
	assert.NotEmpty(t, o.Reference)

	assert.Len(t, o.Items, 3)
	assert.Len(t, f.licenses.created, 3)
	for i, l := range f.licenses.created {
		assert.Equal(t, o.Items[i].SubscriptionID, l.SubscriptionID)
		assert.Equal(t, int64(7), l.UserID)
		assert.True(t, l.OrderItemID.Valid)
		assert.NotEmpty(t, l.Key)
		assert.True(t, l.ValidUntil.After(time.Now()))
	}

	// Only the purchased subscription ids leave the cart.
	assert.Equal(t, [][]int64{{1, 2}}, f.cart.removed)
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(subs())

	o, err := f.svc.CreateOrder(context.Background(), buyer(), &order.CreateOrderRequest{
		OrderItems: items(2),
	})
	assert.NoError(t, err)
	assert.Equal(t, 49.99, o.Items[0].Price)
}

func TestCreateOrderRollsBackOnLicenseFailure(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(subs())
	f.licenses.batchErr = assert.AnError

	_, err := f.svc.CreateOrder(context.Background(), buyer(), &order.CreateOrderRequest{
		OrderItems: items(1, 2),
	})
	assert.Error(t, err)
	assert.True(t, f.runner.rolledBack)
	assert.Empty(t, f.cart.removed)
}

func TestCreateOrderRejectsUnknownSubscription(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(subs())

	_, err := f.svc.CreateOrder(context.Background(), buyer(), &order.CreateOrderRequest{
		OrderItems: items(1, 99),
	})
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
	assert.Zero(t, f.runner.calls)
}

func TestConfirmPaymentCompletesOrder(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(subs())
	f.orders.sellerIDs = []int64{3, 5}

	o, err := f.svc.CreateOrder(context.Background(), buyer(), &order.CreateOrderRequest{
		OrderItems: items(1),
	})
	assert.NoError(t, err)

	payment, err := f.svc.ConfirmPayment(context.Background(), buyer(), &order.CreatePaymentRequest{
		TransactionID: "TX-1",
		Amount:        o.TotalAmount,
		Method:        "CARD",
		OrderID:       &o.ID,
	})
	assert.NoError(t, err)
	assert.Equal(t, order.PaymentCompleted, payment.Status)
	assert.Equal(t, []order.OrderStatus{order.StatusCompleted}, f.orders.statuses)
	assert.Equal(t, []string{"ORDER_COMPLETED"}, f.queue.jobs)
	assert.Equal(t, []int64{3, 5}, f.dashboards.invalidated)
}

func TestConfirmPaymentRejectsReplayedTransaction(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(subs())
	f.payments.known["TX-1"] = true

	_, err := f.svc.ConfirmPayment(context.Background(), buyer(), &order.CreatePaymentRequest{
		TransactionID: "TX-1",
		Amount:        9.99,
		Method:        "CARD",
	})
	assert.True(t, xerrors.Is(err, xerrors.ErrConflict))
	assert.Empty(t, f.queue.jobs)
	assert.Empty(t, f.dashboards.invalidated)
}

func TestCancelCompletedOrderRefunds(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(subs())
	f.orders.sellerIDs = []int64{3}

	o, err := f.svc.CreateOrder(context.Background(), buyer(), &order.CreateOrderRequest{
		OrderItems: items(1, 2),
	})
	assert.NoError(t, err)
	f.orders.orders[o.ID].Status = order.StatusCompleted

	err = f.svc.CancelOrderWithRefund(context.Background(), buyer(), o.ID)
	assert.NoError(t, err)

	assert.Equal(t, order.StatusRefunded, f.orders.orders[o.ID].Status)
	assert.Equal(t, []int64{1, 2}, f.licenses.expired)

	refund := f.payments.created[len(f.payments.created)-1]
	assert.Equal(t, -o.TotalAmount, refund.Amount)
	assert.Equal(t, "REFUND", refund.Method)
	assert.Equal(t, []int64{3}, f.dashboards.invalidated)
}

func TestCancelPendingOrderSkipsRefund(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(subs())

	o, err := f.svc.CreateOrder(context.Background(), buyer(), &order.CreateOrderRequest{
		OrderItems: items(1),
	})
	assert.NoError(t, err)

	err = f.svc.CancelOrderWithRefund(context.Background(), buyer(), o.ID)
	assert.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, f.orders.orders[o.ID].Status)
	assert.Empty(t, f.payments.created)
	assert.Empty(t, f.dashboards.invalidated)
}
