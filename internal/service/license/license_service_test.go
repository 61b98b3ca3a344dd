package license

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/license"
	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
)

func TestNextValidUntil(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC), NextValidUntil(start, 1))
	assert.Equal(t, time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC), NextValidUntil(start, 6))
	assert.Equal(t, time.Date(2027, 1, 15, 12, 0, 0, 0, time.UTC), NextValidUntil(start, 12))
}

func TestNextValidUntilStacks(t *testing.T) {
	t.Parallel()

	// Renewing twice from the running expiry must equal one renewal of
	// double the duration; the remaining time is never lost.
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, NextValidUntil(start, 2), NextValidUntil(NextValidUntil(start, 1), 1))
}

func TestNextValidUntilFromPastExpiry(t *testing.T) {
	t.Parallel()

	// Renewal of a lapsed license extends from the old expiry, not from
	// the renewal moment.
	expired := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), NextValidUntil(expired, 1))
}

func TestLicenseValid(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	l := &license.LicenseKey{IsActive: true, ValidUntil: future}
	assert.True(t, l.Valid(now))

	// Past validity invalidates even before the sweep flips is_expired.
	l = &license.LicenseKey{IsActive: true, ValidUntil: past}
	assert.False(t, l.Valid(now))

	l = &license.LicenseKey{IsActive: false, ValidUntil: future}
	assert.False(t, l.Valid(now))

	l = &license.LicenseKey{IsActive: true, IsExpired: true, ValidUntil: future}
	assert.False(t, l.Valid(now))
}

type fakeStore struct {
	byKey map[string]*license.LicenseKey
	byID  map[int64]*license.LicenseKey

	activated   []int64
	deactivated []int64
	activateErr error
}

func newFakeStore(keys ...*license.LicenseKey) *fakeStore {
	f := &fakeStore{
		byKey: make(map[string]*license.LicenseKey),
		byID:  make(map[int64]*license.LicenseKey),
	}
	for _, l := range keys {
		f.byKey[l.Key] = l
		f.byID[l.ID] = l
	}
	return f
}

func (f *fakeStore) FindByKeyAndUser(_ context.Context, key string, userID int64) (*license.LicenseKey, error) {
	l, ok := f.byKey[key]
	if !ok || l.UserID != userID {
		return nil, xerrors.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) FindByIDAndUser(_ context.Context, id, userID int64) (*license.LicenseKey, error) {
	l, ok := f.byID[id]
	if !ok || l.UserID != userID {
		return nil, xerrors.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]license.LicenseKey, error) {
	var out []license.LicenseKey
	for _, l := range f.byID {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeStore) Activate(_ context.Context, id int64) error {
	if f.activateErr != nil {
		return f.activateErr
	}
	l := f.byID[id]
	l.IsActive = true
	l.RedeemedAt = sql.NullTime{Time: time.Now(), Valid: true}
	f.activated = append(f.activated, id)
	return nil
}

func (f *fakeStore) Deactivate(_ context.Context, id int64) error {
	f.byID[id].IsActive = false
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeStore) Renew(_ context.Context, id int64, newValidUntil time.Time) error {
	l := f.byID[id]
	l.ValidUntil = newValidUntil
	l.IsExpired = false
	l.IsActive = true
	return nil
}

func (f *fakeStore) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, l := range f.byID {
		if !l.IsExpired && l.ValidUntil.Before(now) {
			l.IsExpired = true
			n++
		}
	}
	return n, nil
}

func testService(store Store, now time.Time) *Service {
	svc := NewService(store, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestValidateUnknownKeyIsNotFound(t *testing.T) {
	t.Parallel()

	svc := testService(newFakeStore(), time.Now())

	result, err := svc.Validate(context.Background(), user.Principal{UserID: 1}, "AAAA-BBBB")
	assert.Nil(t, result)
	assert.True(t, xerrors.Is(err, xerrors.ErrNotFound))
}

func TestValidateAnotherUsersKeyIsNotFound(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(&license.LicenseKey{
		ID: 1, Key: "AAAA-BBBB", UserID: 7, IsActive: true, ValidUntil: now.Add(time.Hour),
	})
	svc := testService(store, now)

	result, err := svc.Validate(context.Background(), user.Principal{UserID: 8}, "AAAA-BBBB")
	assert.Nil(t, result)
	assert.True(t, xerrors.Is(err, xerrors.ErrNotFound))
}

func TestValidateKnownButInvalidKey(t *testing.T) {
	t.Parallel()

	// A key that exists but is lapsed answers with a false verdict, not
	// an error.
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(&license.LicenseKey{
		ID: 1, Key: "AAAA-BBBB", UserID: 7, IsActive: true, ValidUntil: now.Add(-time.Hour),
	})
	svc := testService(store, now)

	result, err := svc.Validate(context.Background(), user.Principal{UserID: 7}, "AAAA-BBBB")
	assert.NoError(t, err)
	assert.False(t, result.IsValid)
}

func TestValidateActiveKey(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(&license.LicenseKey{
		ID: 4, Key: "AAAA-BBBB", UserID: 7, IsActive: true,
		ValidUntil: now.Add(time.Hour), SoftwareName: "PhotoSuite",
	})
	svc := testService(store, now)

	result, err := svc.Validate(context.Background(), user.Principal{UserID: 7}, "AAAA-BBBB")
	assert.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, int64(4), result.LicenseID)
	assert.Equal(t, "PhotoSuite", result.SoftwareName)
}

func TestActivateExpiredKeySucceeds(t *testing.T) {
	t.Parallel()

	// Redemption is gated by redeemed_at alone. An expired key activates
	// fine and stays unusable until renewed.
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(&license.LicenseKey{
		ID: 2, Key: "CCCC-DDDD", UserID: 7, ValidUntil: now.Add(-time.Hour),
	})
	svc := testService(store, now)

	result, err := svc.Activate(context.Background(), user.Principal{UserID: 7}, "CCCC-DDDD")
	assert.NoError(t, err)
	assert.False(t, result.AlreadyActivated)
	assert.Equal(t, []int64{2}, store.activated)
	assert.True(t, result.License.RedeemedAt.Valid)
}

func TestActivateRedeemedKeyIsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(&license.LicenseKey{
		ID: 3, Key: "EEEE-FFFF", UserID: 7, IsActive: true,
		ValidUntil: now.Add(time.Hour),
		RedeemedAt: sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
	})
	svc := testService(store, now)

	result, err := svc.Activate(context.Background(), user.Principal{UserID: 7}, "EEEE-FFFF")
	assert.NoError(t, err)
	assert.True(t, result.AlreadyActivated)
	assert.Empty(t, store.activated)
}

func TestActivateLostRaceReportsAlreadyActivated(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(&license.LicenseKey{
		ID: 5, Key: "GGGG-HHHH", UserID: 7, ValidUntil: now.Add(time.Hour),
	})
	store.activateErr = xerrors.ErrConflict
	svc := testService(store, now)

	result, err := svc.Activate(context.Background(), user.Principal{UserID: 7}, "GGGG-HHHH")
	assert.NoError(t, err)
	assert.True(t, result.AlreadyActivated)
}
