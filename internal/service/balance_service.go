package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
)

// BalanceService owns the per-year leave ledger and its read cache.
type BalanceService struct {
	store  leaveBalanceStore
	users  userStore
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewBalanceService constructs a BalanceService. cache may be nil.
func NewBalanceService(store leaveBalanceStore, users userStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *BalanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceService{store: store, users: users, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

func balanceCacheKey(userID string, year int) string {
	return fmt.Sprintf("balances:%s:%d", userID, year)
}

// ApplyUsage adds days to the user's used balance through store, which is normally bound
// to the approving transaction.
func (s *BalanceService) ApplyUsage(ctx context.Context, store leaveBalanceStore, userID, leaveTypeID string, year, days int) error {
	if days < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "leave days cannot be negative")
	}
	if store == nil {
		store = s.store
	}
	if err := store.ApplyUsage(ctx, userID, leaveTypeID, year, days); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "leave type not found")
		}
		return appErrors.Dependency(err, "failed to update leave balance")
	}
	return nil
}

// GetBalances lists every leave type with the user's usage for the year.
func (s *BalanceService) GetBalances(ctx context.Context, caller models.Caller, userID string, year int) ([]models.BalanceView, error) {
	if userID == "" {
		userID = caller.UserID
	}
	if year <= 0 {
		year = s.now().Year()
	}
	if err := s.authorize(ctx, caller, userID); err != nil {
		return nil, err
	}

	key := balanceCacheKey(userID, year)
	var cached []models.BalanceView
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	balances, err := s.store.ListForUser(ctx, userID, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave balances")
	}
	if balances == nil {
		balances = []models.BalanceView{}
	}
	_ = s.cache.Set(ctx, key, balances, s.ttl)
	return balances, nil
}

// Invalidate drops cached balances of a user after a committed change.
func (s *BalanceService) Invalidate(ctx context.Context, userID string) {
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("balances:%s:*", userID))
}

func (s *BalanceService) authorize(ctx context.Context, caller models.Caller, userID string) error {
	if userID == caller.UserID || caller.Role.IsAdministrative() {
		return nil
	}
	if caller.Role != models.RoleHOD {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot view another user's balance")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user not found", "failed to load user")
	}
	if user.DeptID != caller.DeptID {
		return appErrors.Clone(appErrors.ErrForbidden, "user belongs to another department")
	}
	return nil
}
