package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/catalog"
	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
)

// fakeTxRunner executes the closure directly and records whether the
// (simulated) transaction committed or rolled back.
type fakeTxRunner struct {
	inTx       bool
	rolledBack bool
}

func (f *fakeTxRunner) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.inTx = true
	err := fn(nil)
	f.inTx = false
	if err != nil {
		f.rolledBack = true
	}
	return err
}

type fakeSoftwareStore struct {
	runner *fakeTxRunner

	created      []*catalog.Software
	createdInTx  bool
	statusCalls  []catalog.SoftwareStatus
	findSoftware *catalog.Software
}

func (f *fakeSoftwareStore) CreateWithTx(_ context.Context, _ pgx.Tx, s *catalog.Software) error {
	s.ID = int64(len(f.created) + 1)
	f.created = append(f.created, s)
	f.createdInTx = f.runner.inTx
	return nil
}

func (f *fakeSoftwareStore) FindByID(_ context.Context, _ int64) (*catalog.Software, error) {
	if f.findSoftware == nil {
		return nil, xerrors.ErrNotFound
	}
	return f.findSoftware, nil
}

func (f *fakeSoftwareStore) List(_ context.Context, _ *catalog.ProductListFilters) ([]catalog.Software, error) {
	return nil, nil
}

func (f *fakeSoftwareStore) UpdateStatus(_ context.Context, _ int64, status catalog.SoftwareStatus) error {
	f.statusCalls = append(f.statusCalls, status)
	return nil
}

type fakeSubStore struct {
	created   []*catalog.SoftwareSubscription
	createErr error
}

func (f *fakeSubStore) CreateWithTx(_ context.Context, _ pgx.Tx, s *catalog.SoftwareSubscription) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSubStore) ListBySoftware(_ context.Context, _ int64) ([]catalog.SoftwareSubscription, error) {
	return nil, nil
}

type fakePlanStore struct{}

func (fakePlanStore) Create(_ context.Context, _ *catalog.SubscriptionPlan) error { return nil }
func (fakePlanStore) FindByID(_ context.Context, _ int64) (*catalog.SubscriptionPlan, error) {
	return nil, xerrors.ErrNotFound
}
func (fakePlanStore) List(_ context.Context) ([]catalog.SubscriptionPlan, error) { return nil, nil }
func (fakePlanStore) Update(_ context.Context, _ int64, _ *catalog.UpdatePlanRequest) error {
	return nil
}
func (fakePlanStore) Delete(_ context.Context, _ int64) error { return nil }

func seller() user.Principal {
	return user.Principal{UserID: 10, Role: "seller", SellerID: 3}
}

func TestCreateProductDerivesOptionPrices(t *testing.T) {
	t.Parallel()

	runner := &fakeTxRunner{}
	software := &fakeSoftwareStore{runner: runner}
	subs := &fakeSubStore{}
	svc := NewService(runner, software, subs, fakePlanStore{}, zap.NewNop())

	created, err := svc.CreateProduct(context.Background(), seller(), &catalog.CreateProductRequest{
		Name:     "PhotoSuite",
		Discount: 20,
		SubscriptionOptions: []catalog.SubscriptionOptionInput{
			{SubscriptionPlanID: 1, Price: 49.99},
			{SubscriptionPlanID: 2, Price: 99.99},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, catalog.SoftwarePending, created.Status)
	assert.Equal(t, int64(3), created.SellerID)
	assert.True(t, software.createdInTx)

	assert.Len(t, subs.created, 2)
	assert.Equal(t, 49.99, subs.created[0].BasePrice)
	assert.Equal(t, 39.99, subs.created[0].Price)
	assert.Equal(t, 79.99, subs.created[1].Price)
}

func TestCreateProductRollsBackWithOptions(t *testing.T) {
	t.Parallel()

	// A rejected subscription option must take the listing down with it;
	// the header row never commits on its own.
	runner := &fakeTxRunner{}
	software := &fakeSoftwareStore{runner: runner}
	subs := &fakeSubStore{createErr: errors.New("fk violation")}
	svc := NewService(runner, software, subs, fakePlanStore{}, zap.NewNop())

	_, err := svc.CreateProduct(context.Background(), seller(), &catalog.CreateProductRequest{
		Name:     "PhotoSuite",
		Discount: 0,
		SubscriptionOptions: []catalog.SubscriptionOptionInput{
			{SubscriptionPlanID: 999, Price: 49.99},
		},
	})
	assert.Error(t, err)
	assert.True(t, runner.rolledBack)
	// The listing insert happened inside the same transaction, so the
	// rollback reverts it together with the option.
	assert.True(t, software.createdInTx)
}

func TestCreateProductRejectsNonSellers(t *testing.T) {
	t.Parallel()

	runner := &fakeTxRunner{}
	software := &fakeSoftwareStore{runner: runner}
	svc := NewService(runner, software, &fakeSubStore{}, fakePlanStore{}, zap.NewNop())

	_, err := svc.CreateProduct(context.Background(), user.Principal{UserID: 4, Role: "user"}, &catalog.CreateProductRequest{Name: "X"})
	assert.True(t, xerrors.Is(err, xerrors.ErrForbidden))
	assert.Empty(t, software.created)
}

func TestUpdateProductStatusRejectsUnknown(t *testing.T) {
	t.Parallel()

	runner := &fakeTxRunner{}
	software := &fakeSoftwareStore{runner: runner}
	svc := NewService(runner, software, &fakeSubStore{}, fakePlanStore{}, zap.NewNop())

	err := svc.UpdateProductStatus(context.Background(), 1, catalog.SoftwareStatus(9))
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
	assert.Empty(t, software.statusCalls)
}
