package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// QueryUseCase serves read-only ledger views. It never writes.
type QueryUseCase struct {
	entryRepo  EntryRepository
	walletRepo WalletRepository
	reportRepo ReportRepository
	auditRepo  AuditRepository
	cache      Cache
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	statsTTL   time.Duration
	now        func() time.Time
}

// NewQueryUseCase creates a new QueryUseCase. cache may be nil.
func NewQueryUseCase(
	entryRepo EntryRepository,
	walletRepo WalletRepository,
	reportRepo ReportRepository,
	auditRepo AuditRepository,
	cache Cache,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *QueryUseCase {
	return &QueryUseCase{
		entryRepo:  entryRepo,
		walletRepo: walletRepo,
		reportRepo: reportRepo,
		auditRepo:  auditRepo,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		statsTTL:   DefaultStatsCacheTTL,
		now:        time.Now,
	}
}

// WithStatsTTL sets how long stats stay cached.
func (uc *QueryUseCase) WithStatsTTL(ttl time.Duration) *QueryUseCase {
	if ttl > 0 {
		uc.statsTTL = ttl
	}
	return uc
}

// ListEntries returns one page of entries. The page summary covers this page only.
func (uc *QueryUseCase) ListEntries(ctx context.Context, filter domain.EntryFilter) (*domain.EntryPage, error) {
	filter = filter.Normalize()
	if err := validateRange(filter); err != nil {
		return nil, err
	}

	items, total, err := uc.reportRepo.ListEntries(ctx, filter)
	if err != nil {
		return nil, storageError(ctx, err)
	}

	return domain.NewEntryPage(items, total, filter.Page, filter.PageSize), nil
}

// GetEntry returns a single entry.
func (uc *QueryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(ctx, err)
	}
	return entry, nil
}

// Stats aggregates the whole filter in SQL. Results are cached briefly.
func (uc *QueryUseCase) Stats(ctx context.Context, filter domain.EntryFilter) (*domain.Stats, error) {
	if err := validateRange(filter); err != nil {
		return nil, err
	}
	filter.Page, filter.PageSize = 0, 0

	key := statsCacheKey(filter)
	if cached := uc.cachedStats(ctx, key); cached != nil {
		return cached, nil
	}

	rows, err := uc.reportRepo.Stats(ctx, filter)
	if err != nil {
		return nil, storageError(ctx, err)
	}

	stats := domain.NewStats(rows, uc.now().UTC())
	uc.storeStats(ctx, key, stats)

	return stats, nil
}

// BalanceAt returns the wallet balances as of at, read from the entry snapshots.
// A wallet with no entries before at had a zero balance.
func (uc *QueryUseCase) BalanceAt(ctx context.Context, userID string, at time.Time) (*domain.Snapshot, error) {
	wallet, err := uc.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storageError(ctx, err)
	}

	entry, err := uc.entryRepo.GetLatestAt(ctx, wallet.ID, at)
	if errors.Is(err, domain.ErrEntryNotFound) {
		return &domain.Snapshot{
			BalanceBefore: decimal.Zero,
			BalanceAfter:  decimal.Zero,
			LockedBefore:  decimal.Zero,
			LockedAfter:   decimal.Zero,
		}, nil
	}
	if err != nil {
		return nil, storageError(ctx, err)
	}

	return &domain.Snapshot{
		BalanceBefore: entry.BalanceBefore,
		BalanceAfter:  entry.BalanceAfter,
		LockedBefore:  entry.LockedBefore,
		LockedAfter:   entry.LockedAfter,
	}, nil
}

// ListAuditLogs returns audit records for admins.
func (uc *QueryUseCase) ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if filter.Limit <= 0 || filter.Limit > domain.MaxPageSize {
		filter.Limit = domain.DefaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	logs, err := uc.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, storageError(ctx, err)
	}
	return logs, nil
}

func (uc *QueryUseCase) cachedStats(ctx context.Context, key string) *domain.Stats {
	if uc.cache == nil {
		return nil
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("key", key).Msg("stats cache read failed")
		}
		if uc.metrics != nil {
			uc.metrics.StatsCacheMisses.Inc()
		}
		return nil
	}

	var stats domain.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt stats cache entry")
		return nil
	}

	if uc.metrics != nil {
		uc.metrics.StatsCacheHits.Inc()
	}
	return &stats
}

func (uc *QueryUseCase) storeStats(ctx context.Context, key string, stats *domain.Stats) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.statsTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("stats cache write failed")
	}
}

func statsCacheKey(filter domain.EntryFilter) string {
	data, _ := json.Marshal(filter)
	sum := sha256.Sum256(data)
	return "stats:" + hex.EncodeToString(sum[:8])
}

func validateRange(filter domain.EntryFilter) error {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return fmt.Errorf("%w: from must not be after to", domain.ErrInvalidInput)
	}
	return nil
}
