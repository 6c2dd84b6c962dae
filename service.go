package sitehost

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

type SiteService struct {
	repo             SiteRepo
	storage          SiteStorage
	locks            *slugLocks
	pool             *workerPool
	baseURL          string
	operationTimeout time.Duration
	cleanupTimeout   time.Duration
	strictAssets     bool
	maxSiteBytes     int64
}

// ServiceConfig holds configuration options for SiteService.
type ServiceConfig struct {
	BaseURL          string        // Prefix for view URLs returned by Upload (default: "")
	OperationTimeout time.Duration // Bound for upload, export, delete and restore (default: 60s)
	CleanupTimeout   time.Duration // Timeout for rollback operations (default: 30s)
	Workers          int           // Concurrent heavy filesystem jobs (default: NumCPU)
	StrictAssets     bool          // Require an active registry row for static asset reads
	MaxSiteBytes     int64         // Uncompressed size limit per site, 0 means no limit
}

func NewSiteService(repo SiteRepo, storage SiteStorage, cfg ServiceConfig) (*SiteService, error) {
	if repo == nil {
		return nil, errors.New("new site service: repo is required")
	}
	if storage == nil {
		return nil, errors.New("new site service: storage is required")
	}
	if cfg.MaxSiteBytes < 0 {
		return nil, fmt.Errorf("new site service: invalid max site bytes: %d", cfg.MaxSiteBytes)
	}

	operationTimeout := cfg.OperationTimeout
	if operationTimeout <= 0 {
		operationTimeout = 60 * time.Second
	}
	cleanupTimeout := cfg.CleanupTimeout
	if cleanupTimeout <= 0 {
		cleanupTimeout = 30 * time.Second
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &SiteService{
		repo:             repo,
		storage:          storage,
		locks:            newSlugLocks(),
		pool:             newWorkerPool(workers),
		baseURL:          strings.TrimSuffix(cfg.BaseURL, "/"),
		operationTimeout: operationTimeout,
		cleanupTimeout:   cleanupTimeout,
		strictAssets:     cfg.StrictAssets,
		maxSiteBytes:     cfg.MaxSiteBytes,
	}, nil
}

// ViewURL returns the canonical view address for slug.
func (s *SiteService) ViewURL(slug string) string {
	return s.baseURL + "/view/" + slug
}

func (s *SiteService) List(ctx context.Context) ([]Site, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list sites: %w", classify(err))
	}

	sites, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", classify(err))
	}

	return sites, nil
}

// Usage reports the number of active sites and their recorded total size.
func (s *SiteService) Usage(ctx context.Context) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, fmt.Errorf("usage: %w", classify(err))
	}

	count, err := s.repo.CountActive(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("usage: %w", classify(err))
	}

	total, err := s.repo.SumActiveBytes(ctx)
	if err != nil {
		return Usage{}, fmt.Errorf("usage: %w", classify(err))
	}

	return Usage{TotalSites: count, TotalStorage: total}, nil
}

func (s *SiteService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// cleanupContext is used for rollback and compensation so they complete even
// when the request context has already expired.
func (s *SiteService) cleanupContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cleanupTimeout)
}

// lock acquires the per-slug lock, reporting a deadline as ErrTimeout.
func (s *SiteService) lock(ctx context.Context, slug string) (func(), error) {
	unlock, err := s.locks.Lock(ctx, slug)
	if err != nil {
		return nil, classify(fmt.Errorf("lock %s: %w", slug, err))
	}
	return unlock, nil
}

// classify maps an error onto the package taxonomy. Deadlines become
// ErrTimeout and anything unrecognised becomes ErrInternal; the original error
// stays in the chain for logging.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTimeout):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, context.Canceled), isDomainError(err):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
