package devicebind

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/ogrenly/platform/pkg/errors"
	"github.com/ogrenly/platform/pkg/loginhistory"
)

// Notifier is told about completed device migrations, e.g. to mail the user
// a "new device added to your account" alert. Delivery is best-effort and
// never affects the decision outcome.
type Notifier interface {
	DeviceMigrated(ctx context.Context, userID, deviceID string)
}

// Service decides whether a (user, device) pair may proceed and applies the
// side effects of Allow outcomes that require migration. The request gate
// and the verify-login endpoint both go through Decide.
type Service struct {
	cache    *SessionCache
	store    loginhistory.Repository
	notifier Notifier

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// Option configures a Service
type Option func(*Service)

// WithNotifier sets the migration notifier
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// NewService creates a device binding service backed by the given store
func NewService(store loginhistory.Repository, opts ...Option) *Service {
	s := &Service{
		cache:     NewSessionCache(store),
		store:     store,
		userLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache exposes the session cache for operational tooling and tests
func (s *Service) Cache() *SessionCache {
	return s.cache
}

// EnsureWarm warms the session cache from the store
func (s *Service) EnsureWarm(ctx context.Context) error {
	if err := s.cache.EnsureWarm(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "login history store unavailable")
	}
	return nil
}

// Decide evaluates the binding policy for a login request and applies any
// migration an Allow outcome requires. Deny and RequireApproval never mutate
// cache or store. A store failure aborts the decision with a
// STORE_UNAVAILABLE error and leaves the cache untouched.
func (s *Service) Decide(ctx context.Context, userID, deviceID string, approved bool) (Decision, error) {
	if err := s.EnsureWarm(ctx); err != nil {
		return DecisionDeny, err
	}

	state, err := s.resolveState(ctx, userID, deviceID)
	if err != nil {
		return DecisionDeny, apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "login history store unavailable")
	}

	decision := evaluate(state, userID, deviceID, approved)
	switch decision {
	case DecisionAllow:
		// Refresh the cache in case the binding was resolved from the store
		s.cache.Bind(userID, deviceID)
		return DecisionAllow, nil
	case DecisionDeny, DecisionRequireApproval:
		return decision, nil
	}
	return s.migrate(ctx, userID, deviceID, approved)
}

// Release closes the user's active binding: the cache entry is removed and
// the store record is ended. Used when a binding must be explicitly freed.
func (s *Service) Release(ctx context.Context, userID string) error {
	if err := s.store.Release(ctx, userID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "login history store unavailable")
	}
	s.cache.Unbind(userID)
	return nil
}

// History returns the user's login history, newest first
func (s *Service) History(ctx context.Context, userID string) ([]loginhistory.Record, error) {
	records, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "login history store unavailable")
	}
	return records, nil
}

// resolveState reads the current bindings for the user and the device,
// consulting the cache first and the store on cache miss. A cache miss is
// not proof of absence: the cache may be cold or corrected.
func (s *Service) resolveState(ctx context.Context, userID, deviceID string) (bindingState, error) {
	var state bindingState

	if owner, ok := s.cache.LookupByDevice(deviceID); ok {
		state.deviceUser = owner
	} else {
		rec, err := s.store.FindActiveByDevice(ctx, deviceID)
		if err == nil {
			state.deviceUser = rec.UserID
		} else if !errors.Is(err, loginhistory.ErrRecordNotFound) {
			return state, err
		}
	}

	if deviceID, ok := s.cache.LookupByUser(userID); ok {
		state.userDevice = deviceID
	} else {
		rec, err := s.store.FindActiveByUser(ctx, userID)
		if err == nil {
			state.userDevice = rec.DeviceID
		} else if !errors.Is(err, loginhistory.ErrRecordNotFound) {
			return state, err
		}
	}

	return state, nil
}

// migrate performs the store migration for a first binding or an approved
// device change. Migrations for one user are a critical section: the lock
// serializes them, and the state is re-read from the store after acquiring
// it so the request is re-evaluated against a concurrent migration's result
// rather than the pre-migration state.
func (s *Service) migrate(ctx context.Context, userID, deviceID string, approved bool) (Decision, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.storeState(ctx, userID, deviceID)
	if err != nil {
		return DecisionDeny, apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "login history store unavailable")
	}
	decision := evaluate(state, userID, deviceID, approved)
	switch decision {
	case DecisionAllow:
		s.cache.Bind(userID, deviceID)
		return DecisionAllow, nil
	case DecisionDeny, DecisionRequireApproval:
		return decision, nil
	}

	rec, err := s.store.Migrate(ctx, userID, deviceID)
	if err != nil {
		if errors.Is(err, loginhistory.ErrDeviceBound) {
			// Lost the race for the device; the store's record wins
			return DecisionDeny, nil
		}
		return DecisionDeny, apperrors.Wrap(err, apperrors.ErrCodeStoreUnavailable, "login history store unavailable")
	}

	migrated := state.userDevice != ""
	s.cache.Unbind(userID)
	s.cache.Bind(userID, deviceID)
	slog.Info("Device binding migrated",
		"userID", userID,
		"deviceID", deviceID,
		"recordID", rec.ID,
		"firstBinding", !migrated)

	if migrated && s.notifier != nil {
		go s.notifier.DeviceMigrated(context.Background(), userID, deviceID)
	}
	return DecisionAllow, nil
}

// storeState reads binding state from the store only, bypassing the cache.
// Used inside the per-user critical section where the store is authoritative.
func (s *Service) storeState(ctx context.Context, userID, deviceID string) (bindingState, error) {
	var state bindingState

	rec, err := s.store.FindActiveByDevice(ctx, deviceID)
	if err == nil {
		state.deviceUser = rec.UserID
	} else if !errors.Is(err, loginhistory.ErrRecordNotFound) {
		return state, fmt.Errorf("failed to read device binding: %w", err)
	}

	rec, err = s.store.FindActiveByUser(ctx, userID)
	if err == nil {
		state.userDevice = rec.DeviceID
	} else if !errors.Is(err, loginhistory.ErrRecordNotFound) {
		return state, fmt.Errorf("failed to read user binding: %w", err)
	}

	return state, nil
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}
