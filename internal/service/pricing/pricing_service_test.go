package pricing

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/catalog"
	"softmarket-service/internal/domain/notification"
	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
)

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

type fakeSoftwareStore struct {
	software *catalog.Software
	patches  []*catalog.ProductPatch
}

func (f *fakeSoftwareStore) FindByID(_ context.Context, _ int64) (*catalog.Software, error) {
	if f.software == nil {
		return nil, xerrors.ErrNotFound
	}
	return f.software, nil
}

func (f *fakeSoftwareStore) FindByIDForUpdate(_ context.Context, _ pgx.Tx, _ int64) (*catalog.Software, error) {
	if f.software == nil {
		return nil, xerrors.ErrNotFound
	}
	cp := *f.software
	return &cp, nil
}

func (f *fakeSoftwareStore) UpdatePatchWithTx(_ context.Context, _ pgx.Tx, _ int64, patch *catalog.ProductPatch) error {
	f.patches = append(f.patches, patch)
	return nil
}

// fakeSubStore answers the lowest-price lookup from a scripted sequence:
// first call is the before snapshot, second the after.
type fakeSubStore struct {
	lowest    []*catalog.SoftwareSubscription
	lowCalls  int
	discounts []float64
	cancelled int
	upserts   []*catalog.SoftwareSubscription
}

func (f *fakeSubStore) LowestActivePriceWithTx(_ context.Context, _ pgx.Tx, _ int64) (*catalog.SoftwareSubscription, error) {
	low := f.lowest[f.lowCalls]
	f.lowCalls++
	return low, nil
}

func (f *fakeSubStore) RepriceAllWithTx(_ context.Context, _ pgx.Tx, _ int64, discount float64) error {
	f.discounts = append(f.discounts, discount)
	return nil
}

func (f *fakeSubStore) CancelActiveWithTx(_ context.Context, _ pgx.Tx, _ int64) error {
	f.cancelled++
	return nil
}

func (f *fakeSubStore) UpsertWithTx(_ context.Context, _ pgx.Tx, s *catalog.SoftwareSubscription) error {
	f.upserts = append(f.upserts, s)
	return nil
}

type fakeHistoryStore struct {
	created []*catalog.PriceHistory
}

func (f *fakeHistoryStore) CreateWithTx(_ context.Context, _ pgx.Tx, h *catalog.PriceHistory) error {
	f.created = append(f.created, h)
	return nil
}

func (f *fakeHistoryStore) ListBySoftware(_ context.Context, _ int64) ([]catalog.PriceHistory, error) {
	out := make([]catalog.PriceHistory, 0, len(f.created))
	for _, h := range f.created {
		out = append(out, *h)
	}
	return out, nil
}

type fakeEnqueuer struct {
	jobs []struct {
		Type    string
		Payload interface{}
	}
	err error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, jobType string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, struct {
		Type    string
		Payload interface{}
	}{jobType, payload})
	return nil
}

func sub(price float64) *catalog.SoftwareSubscription {
	return &catalog.SoftwareSubscription{Price: price, PlanName: "Monthly"}
}

func discountPatch(d float64) *catalog.ProductPatch {
	return &catalog.ProductPatch{Discount: &d}
}

func newTestService(software *fakeSoftwareStore, subs *fakeSubStore, history *fakeHistoryStore, q *fakeEnqueuer) (*Service, *fakeTxRunner) {
	runner := &fakeTxRunner{}
	return NewService(runner, software, subs, history, q, zap.NewNop()), runner
}

func owner() user.Principal {
	return user.Principal{UserID: 1, Role: "seller", SellerID: 3}
}

func TestApplyDiscountRecordsDropAndEnqueuesOnce(t *testing.T) {
	t.Parallel()

	software := &fakeSoftwareStore{software: &catalog.Software{ID: 9, Name: "PhotoSuite", SellerID: 3}}
	subs := &fakeSubStore{lowest: []*catalog.SoftwareSubscription{sub(49.99), sub(39.99)}}
	history := &fakeHistoryStore{}
	q := &fakeEnqueuer{}
	svc, _ := newTestService(software, subs, history, q)

	_, err := svc.ApplyDiscount(context.Background(), owner(), 9, discountPatch(20))
	assert.NoError(t, err)

	assert.Equal(t, []float64{20}, subs.discounts)

	// Strictly lower lowest price: exactly one history row and one job.
	assert.Len(t, history.created, 1)
	assert.Equal(t, 49.99, history.created[0].OldPrice)
	assert.Equal(t, 39.99, history.created[0].NewPrice)

	assert.Len(t, q.jobs, 1)
	assert.Equal(t, string(notification.TypePriceDrop), q.jobs[0].Type)
	payload := q.jobs[0].Payload.(*notification.PriceDropPayload)
	assert.Equal(t, int64(9), payload.ProductID)
	assert.Equal(t, 49.99, payload.OldPrice)
	assert.Equal(t, 39.99, payload.NewPrice)
}

func TestApplyDiscountNoHistoryOnIncrease(t *testing.T) {
	t.Parallel()

	software := &fakeSoftwareStore{software: &catalog.Software{ID: 9, SellerID: 3}}
	subs := &fakeSubStore{lowest: []*catalog.SoftwareSubscription{sub(39.99), sub(49.99)}}
	history := &fakeHistoryStore{}
	q := &fakeEnqueuer{}
	svc, _ := newTestService(software, subs, history, q)

	_, err := svc.ApplyDiscount(context.Background(), owner(), 9, discountPatch(0))
	assert.NoError(t, err)
	assert.Empty(t, history.created)
	assert.Empty(t, q.jobs)
}

func TestApplyDiscountNoHistoryOnEqualPrice(t *testing.T) {
	t.Parallel()

	// The drop must be strict; an unchanged lowest price records nothing.
	software := &fakeSoftwareStore{software: &catalog.Software{ID: 9, SellerID: 3}}
	subs := &fakeSubStore{lowest: []*catalog.SoftwareSubscription{sub(39.99), sub(39.99)}}
	history := &fakeHistoryStore{}
	q := &fakeEnqueuer{}
	svc, _ := newTestService(software, subs, history, q)

	name := "Renamed"
	_, err := svc.ApplyDiscount(context.Background(), owner(), 9, &catalog.ProductPatch{Name: &name})
	assert.NoError(t, err)
	assert.Empty(t, history.created)
	assert.Empty(t, q.jobs)
}

func TestApplyDiscountReplacesOptionSet(t *testing.T) {
	t.Parallel()

	software := &fakeSoftwareStore{software: &catalog.Software{ID: 9, SellerID: 3, Discount: 50}}
	subs := &fakeSubStore{lowest: []*catalog.SoftwareSubscription{sub(39.99), sub(39.99)}}
	history := &fakeHistoryStore{}
	q := &fakeEnqueuer{}
	svc, _ := newTestService(software, subs, history, q)

	_, err := svc.ApplyDiscount(context.Background(), owner(), 9, &catalog.ProductPatch{
		SubscriptionOptions: []catalog.SubscriptionOptionInput{
			{SubscriptionPlanID: 1, Price: 100},
		},
	})
	assert.NoError(t, err)

	// Replacement keeps the stored 50% discount when the patch omits one.
	assert.Equal(t, 1, subs.cancelled)
	assert.Len(t, subs.upserts, 1)
	assert.Equal(t, 100.0, subs.upserts[0].BasePrice)
	assert.Equal(t, 50.0, subs.upserts[0].Price)
}

func TestApplyDiscountRejectsInvalidDiscount(t *testing.T) {
	t.Parallel()

	software := &fakeSoftwareStore{software: &catalog.Software{ID: 9, SellerID: 3}}
	subs := &fakeSubStore{}
	svc, runner := newTestService(software, subs, &fakeHistoryStore{}, &fakeEnqueuer{})

	_, err := svc.ApplyDiscount(context.Background(), owner(), 9, discountPatch(101))
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidInput))
	assert.Zero(t, runner.calls)
}

func TestApplyDiscountRejectsForeignSeller(t *testing.T) {
	t.Parallel()

	software := &fakeSoftwareStore{software: &catalog.Software{ID: 9, SellerID: 99}}
	subs := &fakeSubStore{lowest: []*catalog.SoftwareSubscription{sub(39.99), sub(39.99)}}
	history := &fakeHistoryStore{}
	q := &fakeEnqueuer{}
	svc, runner := newTestService(software, subs, history, q)

	_, err := svc.ApplyDiscount(context.Background(), owner(), 9, discountPatch(10))
	assert.True(t, xerrors.Is(err, xerrors.ErrForbidden))
	assert.True(t, runner.rolledBack)
	assert.Empty(t, software.patches)
	assert.Empty(t, q.jobs)
}

func TestApplyDiscountSurvivesEnqueueFailure(t *testing.T) {
	t.Parallel()

	// The price change is committed before the job is enqueued; a queue
	// outage must not fail the request.
	software := &fakeSoftwareStore{software: &catalog.Software{ID: 9, SellerID: 3}}
	subs := &fakeSubStore{lowest: []*catalog.SoftwareSubscription{sub(49.99), sub(39.99)}}
	history := &fakeHistoryStore{}
	q := &fakeEnqueuer{err: assert.AnError}
	svc, _ := newTestService(software, subs, history, q)

	updated, err := svc.ApplyDiscount(context.Background(), owner(), 9, discountPatch(20))
	assert.NoError(t, err)
	assert.NotNil(t, updated)
	assert.Len(t, history.created, 1)
}
