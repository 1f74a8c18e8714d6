package devicebind

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/loginhistory"
)

// recordingNotifier collects migration notices on a channel so tests can
// wait for the async delivery
type recordingNotifier struct {
	notices chan string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{notices: make(chan string, 10)}
}

func (n *recordingNotifier) DeviceMigrated(ctx context.Context, userID, deviceID string) {
	n.notices <- userID + ":" + deviceID
}

func (n *recordingNotifier) wait(t *testing.T) string {
	t.Helper()
	select {
	case notice := <-n.notices:
		return notice
	case <-time.After(time.Second):
		t.Fatal("expected a migration notice")
		return ""
	}
}

func (n *recordingNotifier) assertSilent(t *testing.T) {
	t.Helper()
	select {
	case notice := <-n.notices:
		t.Fatalf("unexpected migration notice %q", notice)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDecideFirstLogin(t *testing.T) {
	ctx := context.Background()
	store := loginhistory.NewInMemRepository()
	notifier := newRecordingNotifier()
	service := NewService(store, WithNotifier(notifier))

	decision, err := service.Decide(ctx, "u1", "d1", false)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)

	rec, err := store.FindActiveByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "d1", rec.DeviceID)

	device, ok := service.Cache().LookupByUser("u1")
	require.True(t, ok)
	assert.Equal(t, "d1", device)

	// a first binding is not a device change, no alert
	notifier.assertSilent(t)
}

func TestDecideSameDeviceRepeats(t *testing.T) {
	ctx := context.Background()
	store := loginhistory.NewInMemRepository()
	service := NewService(store)

	_, err := service.Decide(ctx, "u1", "d1", false)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		decision, err := service.Decide(ctx, "u1", "d1", false)
		require.NoError(t, err)
		assert.Equal(t, DecisionAllow, decision)
	}

	history, err := service.History(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, history, 1, "repeat logins must not open new records")
}

func TestDecideNewDeviceRequiresApproval(t *testing.T) {
	ctx := context.Background()
	store := loginhistory.NewInMemRepository()
	service := NewService(store)

	_, err := service.Decide(ctx, "u1", "d1", false)
	require.NoError(t, err)

	decision, err := service.Decide(ctx, "u1", "d2", false)
	require.NoError(t, err)
	assert.Equal(t, DecisionRequireApproval, decision)

	// nothing changed
	rec, err := store.FindActiveByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "d1", rec.DeviceID)
	device, _ := service.Cache().LookupByUser("u1")
	assert.Equal(t, "d1", device)
}

func TestDecideApprovedMigration(t *testing.T) {
	ctx := context.Background()
	store := loginhistory.NewInMemRepository()
	notifier := newRecordingNotifier()
	service := NewService(store, WithNotifier(notifier))

	_, err := service.Decide(ctx, "u1", "d1", false)
	require.NoError(t, err)

	decision, err := service.Decide(ctx, "u1", "d2", true)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)

	rec, err := store.FindActiveByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "d2", rec.DeviceID)

	// the old record is closed, not deleted
	history, err := service.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	_, ok := service.Cache().LookupByDevice("d1")
	assert.False(t, ok, "old device entry must be gone")

	assert.Equal(t, "u1:d2", notifier.wait(t))
}

func TestDecideDeviceClaimedByOtherUser(t *testing.T) {
	ctx := context.Background()
	store := loginhistory.NewInMemRepository()
	service := NewService(store)

	_, err := service.Decide(ctx, "u1", "d1", false)
	require.NoError(t, err)

	decision, err := service.Decide(ctx, "u2", "d1", false)
	require.NoError(t, err)
	assert.Equal(t, DecisionDeny, decision)

	// approval cannot override a device conflict
	decision, err = service.Decide(ctx, "u2", "d1", true)
	require.NoError(t, err)
	assert.Equal(t, DecisionDeny, decision)

	rec, err := store.FindActiveByDevice(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.UserID)
}

func TestDecideStaleCacheStoreWins(t *testing.T) {
	ctx := context.Background()
	store := loginhistory.NewInMemRepository()
	notifier := newRecordingNotifier()
	service := NewService(store, WithNotifier(notifier))
	require.NoError(t, service.EnsureWarm(ctx))

	// poison the cache with a binding the store knows nothing about
	service.Cache().Bind("u1", "ghost")

	decision, err := service.Decide(ctx, "u1", "d1", false)
	require.NoError(t, err)
	assert.Equal(t, DecisionRequireApproval, decision, "fast path trusts the cache")

	// the migration path re-reads the store, which has no binding: this is
	// a first binding, not a device change
	decision, err = service.Decide(ctx, "u1", "d1", true)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
	notifier.assertSilent(t)

	device, ok := service.Cache().LookupByUser("u1")
	require.True(t, ok)
	assert.Equal(t, "d1", device, "cache corrected from the store")
}

func TestDecideConcurrentMigrationsSameUser(t *testing.T) {
	ctx := context.Background()
	store := loginhistory.NewInMemRepository()
	service := NewService(store)

	_, err := service.Decide(ctx, "u1", "d1", false)
	require.NoError(t, err)

	var wg sync.WaitGroup
	decisions := make([]Decision, 2)
	errs := make([]error, 2)
	for i, device := range []string{"d2", "d3"} {
		wg.Add(1)
		go func(i int, device string) {
			defer wg.Done()
			decisions[i], errs[i] = service.Decide(ctx, "u1", device, true)
		}(i, device)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// both migrations are serialized; each one is approved against the
	// state it re-reads, so both are allowed and the last one wins
	assert.Equal(t, []Decision{DecisionAllow, DecisionAllow}, decisions)
	rec, err := store.FindActiveByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Contains(t, []string{"d2", "d3"}, rec.DeviceID)

	active, err := store.FindAllActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1, "exactly one active record per user")

	device, ok := service.Cache().LookupByUser("u1")
	require.True(t, ok)
	assert.Equal(t, rec.DeviceID, device, "cache agrees with the store")
}

func TestDecideConcurrentClaimsSameDevice(t *testing.T) {
	ctx := context.Background()
	store := loginhistory.NewInMemRepository()
	service := NewService(store)

	var wg sync.WaitGroup
	decisions := make([]Decision, 2)
	errs := make([]error, 2)
	for i, user := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			decisions[i], errs[i] = service.Decide(ctx, user, "d1", true)
		}(i, user)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// the store arbitrates: one claim wins, the other resolves to Deny
	assert.ElementsMatch(t, []Decision{DecisionAllow, DecisionDeny}, decisions)

	active, err := store.FindAllActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestDecideStoreFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	store := newCountingStore()
	service := NewService(store)

	store.failScan.Store(true)
	_, err := service.Decide(ctx, "u1", "d1", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStoreUnavailable))

	// the cache stayed cold; a later request retries the warm-up
	store.failScan.Store(false)
	decision, err := service.Decide(ctx, "u1", "d1", false)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}

func TestReleaseFreesBinding(t *testing.T) {
	ctx := context.Background()
	store := loginhistory.NewInMemRepository()
	service := NewService(store)

	_, err := service.Decide(ctx, "u1", "d1", false)
	require.NoError(t, err)

	require.NoError(t, service.Release(ctx, "u1"))

	_, err = store.FindActiveByUser(ctx, "u1")
	assert.ErrorIs(t, err, loginhistory.ErrRecordNotFound)
	_, ok := service.Cache().LookupByDevice("d1")
	assert.False(t, ok)

	// the device is free for someone else now
	decision, err := service.Decide(ctx, "u2", "d1", false)
	require.NoError(t, err)
	assert.Equal(t, DecisionAllow, decision)
}
