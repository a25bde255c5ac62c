package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"bcl-go/internal/archive"
	"bcl-go/internal/bcl"
	"bcl-go/internal/config"
	"bcl-go/internal/database"
	"bcl-go/internal/encryption"
	"bcl-go/internal/fs"
	"bcl-go/internal/progress"
	"bcl-go/internal/report"
)

// BCLApp is the application layer between the CLI and AuditService.
// It constructs all dependencies from config, exposes high-level operations
// taking raw CLI values, and releases the docbase connection on Close.
type BCLApp struct {
	cfg     *config.Config
	db      *database.DocbaseDatabase
	fsmgr   bcl.FilesystemManager
	logger  bcl.Logger
	clock   bcl.Clock
	run     *Run
	logFile *os.File
}

// NewBCLApp creates a fully wired BCLApp from the given config.
// command identifies the CLI command being run (e.g. "check", "stores").
// password is asked for the database password when the config carries
// none; it may be nil for snapshots. Log lines are copied to stderr.
// The caller must call Close when done.
func NewBCLApp(ctx context.Context, cfg *config.Config, command string, password PasswordFunc, stderr io.Writer) (*BCLApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := bcl.RealClock{}
	run := NewRun(bcl.UUIDGenerator{}, clock, command)
	slogger, logFile, err := newLogger(cfg.LogDir, run.ID, cfg.LogLevel, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	dbCfg := cfg.Database
	if dbCfg.Type != "sqlite" && dbCfg.Password == "" {
		if password == nil {
			logFile.Close()
			return nil, fmt.Errorf("no password configured for user %s", dbCfg.User)
		}
		pwd, err := password(ctx, fmt.Sprintf("enter password for user %s in database: ", dbCfg.User))
		if err != nil {
			logFile.Close()
			return nil, err
		}
		dbCfg.Password = pwd
	}

	db, err := database.NewDatabaseFromConfig(ctx, dbCfg)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening docbase: %w", err)
	}
	logger.Info("run started", "command", command, "database", dbCfg.Type, "address", describeDatabase(dbCfg))

	return &BCLApp{
		cfg:     cfg,
		db:      db,
		fsmgr:   fs.NewOSFilesystemManager(),
		logger:  logger,
		clock:   clock,
		run:     run,
		logFile: logFile,
	}, nil
}

func describeDatabase(cfg config.DatabaseConfig) string {
	if cfg.Type == "sqlite" {
		return cfg.Path
	}
	return cfg.Address() + "/" + cfg.Name
}

// RunID returns the identifier tagging the log lines of this invocation.
func (a *BCLApp) RunID() string {
	return a.run.ID
}

// CheckOptions override the config for one audit.
type CheckOptions struct {
	ReportDir string    // replaces report.dir when set
	Stores    []string  // replaces check.stores when set
	Out       io.Writer // progress and report location
}

// CheckResult describes a finished audit.
type CheckResult struct {
	Summary    *bcl.Summary
	ReportPath string // the published report, encrypted when enabled
	Failures   int64
}

// Check runs the audit and publishes the report. On failure the result
// holds what was gathered so far and the plaintext report stays in place.
func (a *BCLApp) Check(ctx context.Context, opts CheckOptions) (*CheckResult, error) {
	result, err := a.check(ctx, opts)
	a.run.Finish(a.clock, err)
	return result, err
}

func (a *BCLApp) check(ctx context.Context, opts CheckOptions) (*CheckResult, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	patterns := a.cfg.Check.Stores
	if len(opts.Stores) > 0 {
		patterns = opts.Stores
	}
	selector, err := bcl.NewStoreSelector(patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	reportDir := a.cfg.Report.Dir
	if opts.ReportDir != "" {
		reportDir = opts.ReportDir
	}

	// encryption and archive are verified before the scan starts
	enc, err := encryption.NewEncryptorFromConfig(a.cfg.Report.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if enc != nil && !enc.IsConfigured() {
		return nil, errors.New("report encryption is enabled but no key exists: run 'bcl report keygen'")
	}
	arch, err := archive.NewArchiveFromConfig(ctx, a.cfg.Report.Archive)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	if arch != nil {
		if err := arch.ValidateSetup(ctx); err != nil {
			return nil, fmt.Errorf("validating archive: %w", err)
		}
	}

	reporter, err := report.Create(reportDir, a.reportUser(), a.clock.Now(), a.cfg.Report.SeparatorRune())
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "reporting into %s\n", reporter.Path())
	a.logger.Info("report created", "path", reporter.Path())

	printer, err := progress.NewPrinter(out, a.clock, a.cfg.Progress.Increment, a.cfg.Progress.Count)
	if err != nil {
		reporter.Close()
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	svc := bcl.NewAuditService(a.db, a.fsmgr, reporter, printer, a.logger, a.clock)
	summary, runErr := svc.Run(ctx, selector)
	closeErr := reporter.Close()

	result := &CheckResult{Summary: summary, ReportPath: reporter.Path(), Failures: reporter.Count()}
	if runErr != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("%w: %w", ErrCancelled, runErr)
		}
		return result, runErr
	}
	if closeErr != nil {
		return result, closeErr
	}

	final, err := report.NewFinalizer(enc, arch, a.logger).Finalize(ctx, reporter.Path())
	result.ReportPath = final
	if err != nil {
		return result, fmt.Errorf("publishing report: %w", err)
	}
	return result, nil
}

// reportUser names the report after the database user, or the local user
// for snapshots without one.
func (a *BCLApp) reportUser() string {
	if a.cfg.Database.User != "" {
		return a.cfg.Database.User
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return strings.ReplaceAll(u.Username, string(os.PathSeparator), "_")
	}
	return "bcl"
}

// Stores loads the store registry.
func (a *BCLApp) Stores(ctx context.Context) (*bcl.Stores, error) {
	svc := bcl.NewAuditService(a.db, a.fsmgr, nil, nil, a.logger, a.clock)
	stores, err := svc.LoadStores(ctx)
	a.run.Finish(a.clock, err)
	return stores, err
}

// LocateResult is the outcome of resolving one ticket.
type LocateResult struct {
	Store     bcl.Store
	Canonical string
	Path      string
	Found     bool
	Size      int64 // size of the found file
	ListErr   error // the directory could not be listed
}

// Locate resolves ticket in the named store to its canonical path and looks
// for the file the audit would check. ext may be given with or without its
// leading dot.
func (a *BCLApp) Locate(ctx context.Context, storeName string, ticket uint32, ext string) (*LocateResult, error) {
	result, err := a.locate(ctx, storeName, ticket, ext)
	a.run.Finish(a.clock, err)
	return result, err
}

func (a *BCLApp) locate(ctx context.Context, storeName string, ticket uint32, ext string) (*LocateResult, error) {
	svc := bcl.NewAuditService(a.db, a.fsmgr, nil, nil, a.logger, a.clock)
	stores, err := svc.LoadStores(ctx)
	if err != nil {
		return nil, err
	}
	store, ok := stores.ByName(storeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", bcl.ErrUnknownStore, storeName)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	checker := bcl.NewChecker(stores, a.fsmgr, a.logger)
	canonical, err := checker.CanonicalPath(bcl.Content{Store: store.ID, Ticket: ticket, Extension: ext})
	if err != nil {
		return nil, err
	}

	result := &LocateResult{Store: store, Canonical: canonical}
	result.Path, result.Found, result.ListErr = bcl.NewLocator(a.fsmgr).Locate(canonical)
	if result.Found {
		if info, err := a.fsmgr.Stat(result.Path); err == nil {
			result.Size = info.Size()
		}
	}
	return result, nil
}

// Close finishes the run and closes all resources.
func (a *BCLApp) Close() error {
	a.run.Finish(a.clock, nil)
	a.logger.Info("run finished", "command", a.run.Command, "status", a.run.Status, "elapsed", a.run.Elapsed())

	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
