package loginhistory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemMigrateOpensRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemRepository()

	rec, err := repo.Migrate(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "d1", rec.DeviceID)
	assert.True(t, rec.IsActive())

	found, err := repo.FindActiveByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, found.ID)

	found, err = repo.FindActiveByDevice(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, found.ID)
}

func TestInMemMigrateClosesPreviousRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemRepository()

	first, err := repo.Migrate(ctx, "u1", "d1")
	require.NoError(t, err)
	second, err := repo.Migrate(ctx, "u1", "d2")
	require.NoError(t, err)

	active, err := repo.FindActiveByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	// d1 is free again
	_, err = repo.FindActiveByDevice(ctx, "d1")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	history, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.False(t, history[1].IsActive())
	assert.Equal(t, first.ID, history[1].ID)
}

func TestInMemMigrateRejectsBoundDevice(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemRepository()

	_, err := repo.Migrate(ctx, "u1", "d1")
	require.NoError(t, err)

	_, err = repo.Migrate(ctx, "u2", "d1")
	assert.ErrorIs(t, err, ErrDeviceBound)

	// the rejected claim must not have touched u2's state
	_, err = repo.FindActiveByUser(ctx, "u2")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestInMemMigrateSameDeviceSameUser(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemRepository()

	_, err := repo.Migrate(ctx, "u1", "d1")
	require.NoError(t, err)

	// re-claiming your own device closes the old record and opens a new one
	rec, err := repo.Migrate(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.True(t, rec.IsActive())

	active, err := repo.FindAllActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestInMemConcurrentClaimsOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemRepository()

	const claimants = 8
	var wg sync.WaitGroup
	errs := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Migrate(ctx, "u"+string(rune('a'+i)), "d1")
		}(i)
	}
	wg.Wait()

	var wins, bounds int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDeviceBound):
			bounds++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one claim must win the device")
	assert.Equal(t, claimants-1, bounds)
}

func TestInMemRelease(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemRepository()

	_, err := repo.Migrate(ctx, "u1", "d1")
	require.NoError(t, err)

	require.NoError(t, repo.Release(ctx, "u1"))
	_, err = repo.FindActiveByUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// history keeps the closed record
	history, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].IsActive())

	// releasing with nothing active is a no-op
	require.NoError(t, repo.Release(ctx, "u1"))
}

func TestInMemFindByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemRepository()

	for _, device := range []string{"d1", "d2", "d3"} {
		_, err := repo.Migrate(ctx, "u1", device)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	history, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "d3", history[0].DeviceID)
	assert.Equal(t, "d1", history[2].DeviceID)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].StartedAt.After(history[i-1].StartedAt))
	}
}

func TestInMemFindAllActive(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemRepository()

	_, err := repo.Migrate(ctx, "u1", "d1")
	require.NoError(t, err)
	_, err = repo.Migrate(ctx, "u2", "d2")
	require.NoError(t, err)
	require.NoError(t, repo.Release(ctx, "u2"))

	active, err := repo.FindAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "u1", active[0].UserID)
}
