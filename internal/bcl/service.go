package bcl

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AuditService is the orchestration layer that reads the docbase, checks
// every content against the filestores and reports the failures.
type AuditService struct {
	database Database
	fsmgr    FilesystemManager
	reporter Reporter
	progress ProgressObserver
	logger   Logger
	clock    Clock
}

// NewAuditService creates a new AuditService with the provided dependencies.
// progress may be nil.
func NewAuditService(database Database, fsmgr FilesystemManager, reporter Reporter, progress ProgressObserver, logger Logger, clock Clock) *AuditService {
	return &AuditService{
		database: database,
		fsmgr:    fsmgr,
		reporter: reporter,
		progress: progress,
		logger:   logger,
		clock:    clock,
	}
}

// Summary holds the statistics of one audit run.
type Summary struct {
	Stores        int
	Total         int64 // contents read from the docbase
	Skipped       int64 // contents of stores left out by the selector
	Counts        map[Code]int64
	StoresElapsed time.Duration
	ScanElapsed   time.Duration
}

// Checked returns the number of contents actually verified.
func (s *Summary) Checked() int64 {
	return s.Total - s.Skipped
}

// Failures returns the number of non-OK results.
func (s *Summary) Failures() int64 {
	return s.Checked() - s.Counts[CodeOK]
}

// LoadStores reads the store registry from the docbase.
func (s *AuditService) LoadStores(ctx context.Context) (*Stores, error) {
	list, err := s.database.LoadStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stores: %w", err)
	}
	stores, err := NewStores(list...)
	if err != nil {
		return nil, fmt.Errorf("building store registry: %w", err)
	}
	return stores, nil
}

// verifyStoreReferences fails with ErrUnknownStore when a content refers to
// a store missing from the registry.
func (s *AuditService) verifyStoreReferences(ctx context.Context, stores *Stores) error {
	ids, err := s.database.ContentStoreIDs(ctx)
	if err != nil {
		return fmt.Errorf("loading content store ids: %w", err)
	}
	var errs []error
	for _, id := range ids {
		if _, ok := stores.ByID(id); !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownStore, id))
		}
	}
	return errors.Join(errs...)
}

// Run audits every content of the selected stores. A nil selector selects
// all stores. No content is checked when one refers to an unknown store.
// The run stops early when ctx is cancelled; the summary gathered so far is
// returned along with the error.
func (s *AuditService) Run(ctx context.Context, selector *StoreSelector) (*Summary, error) {
	summary := &Summary{Counts: make(map[Code]int64, len(Codes))}

	start := s.clock.Now()
	stores, err := s.LoadStores(ctx)
	if err != nil {
		return summary, err
	}
	summary.Stores = stores.Len()
	summary.StoresElapsed = s.clock.Now().Sub(start)
	s.logger.Info("stores loaded", "count", stores.Len(), "elapsed", summary.StoresElapsed)

	if err := s.verifyStoreReferences(ctx, stores); err != nil {
		return summary, err
	}

	extensions, err := s.database.FormatExtensions(ctx)
	if err != nil {
		return summary, fmt.Errorf("loading format extensions: %w", err)
	}
	resolver := NewExtensionResolver(stores.ExtensionStoreIDs(), extensions)
	checker := NewChecker(stores, s.fsmgr, s.logger)
	selected := selector.Select(stores)

	start = s.clock.Now()
	err = s.database.ScanContents(ctx, resolver, func(dc DecoratedContent) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Total++
		if ok, known := selected[dc.Content.Store]; known && !ok {
			summary.Skipped++
			return nil
		}

		result, err := checker.Check(dc)
		if err != nil {
			return err
		}
		summary.Counts[result.Code()]++
		if s.progress != nil {
			s.progress.Observe(result)
		}
		if result.Code() == CodeOK {
			return nil
		}

		s.logger.Debug("content check failed",
			"content", dc.Content.Key(), "parent", dc.Parent.ID, "code", result.Code().String(), "path", result.ResolvedPath())
		if err := s.reporter.Report(dc, result); err != nil {
			return fmt.Errorf("reporting %s: %w", dc.Content.Key(), err)
		}
		return nil
	})
	if s.progress != nil {
		s.progress.Finish()
	}
	summary.ScanElapsed = s.clock.Now().Sub(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("audit interrupted", "read", summary.Total)
		}
		return summary, fmt.Errorf("scanning contents: %w", err)
	}

	s.logger.Info("audit complete",
		"read", summary.Total, "skipped", summary.Skipped, "failures", summary.Failures(), "elapsed", summary.ScanElapsed)
	return summary, nil
}
