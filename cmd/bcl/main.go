package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bcl-go/internal/app"
	"bcl-go/internal/bcl"
	"bcl-go/internal/config"
	"bcl-go/internal/database"
	"bcl-go/internal/output"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(app.ExitCode(err))
}

// configPath returns the --config flag, or the default config location.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	defaults, err := app.GetDefaults()
	if err != nil {
		return "", fmt.Errorf("getting defaults: %w", err)
	}
	return defaults["config_path"], nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.ReadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp reads the config and creates a BCLApp. The caller must defer app.Close().
// command identifies the CLI command being run (e.g. "check", "stores").
func newApp(cmd *cobra.Command, command string) (*app.BCLApp, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return app.NewBCLApp(cmd.Context(), cfg, command, app.PromptPassword, os.Stderr)
}

var rootCmd = &cobra.Command{
	Use:           "bcl",
	Short:         "List Documentum contents whose file is missing or damaged",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every content of the docbase against the filestores",
	RunE: func(cmd *cobra.Command, args []string) error {
		reportDir, _ := cmd.Flags().GetString("report-dir")
		stores, _ := cmd.Flags().GetStringSlice("store")

		a, err := newApp(cmd, "check")
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		result, err := a.Check(cmd.Context(), app.CheckOptions{
			ReportDir: reportDir,
			Stores:    stores,
			Out:       out,
		})
		if result != nil && result.Summary != nil {
			s := result.Summary
			fmt.Fprintf(out, "spent %s to load %d stores\n", s.StoresElapsed.Truncate(time.Millisecond), s.Stores)
			fmt.Fprintf(out, "spent %s to read %d contents\n", s.ScanElapsed.Truncate(time.Millisecond), s.Total)
			output.PrintTable(out, output.SummaryTable(s))
		}
		if err != nil {
			return err
		}

		if result.Failures == 0 {
			fmt.Fprintln(out, "no failing content")
		} else {
			fmt.Fprintf(out, "%d failing contents reported in %s\n", result.Failures, result.ReportPath)
		}
		return nil
	},
}

// stores command
var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List the filestores of the docbase",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "stores")
		if err != nil {
			return err
		}
		defer a.Close()

		stores, err := a.Stores(cmd.Context())
		if err != nil {
			return err
		}
		if stores.Len() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stores found.")
			return nil
		}
		output.PrintTable(cmd.OutOrStdout(), output.StoresTable(stores))
		return nil
	},
}

// locate command
var locateCmd = &cobra.Command{
	Use:   "locate TICKET",
	Short: "Show where the file of a content is expected and found",
	Long: "Resolve a data ticket of a store to its file path and look for it the\n" +
		"way check does. TICKET is the signed decimal value of data_ticket or\n" +
		"its path relative to the store root, such as 00/01/7a/2b.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _ := cmd.Flags().GetString("store")
		ext, _ := cmd.Flags().GetString("ext")

		ticket, err := bcl.ParseTicket(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "locate")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Locate(cmd.Context(), store, ticket, ext)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Store:     %s (%s)\n", res.Store.Name, res.Store.ID)
		fmt.Fprintf(out, "Canonical: %s\n", res.Canonical)
		switch {
		case res.ListErr != nil:
			fmt.Fprintf(out, "Found:     no (listing failed: %v)\n", res.ListErr)
		case res.Found:
			fmt.Fprintf(out, "Found:     %s (%d bytes)\n", res.Path, res.Size)
		default:
			fmt.Fprintln(out, "Found:     no")
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		path, err := configPath(cmd)
		if err != nil {
			return err
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(path, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", path)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.ReadFromFile(path)
		if err != nil {
			return err
		}

		db := cfg.Database
		if db.Password != "" {
			db.Password = "********"
		}
		fmt.Printf("Configuration from %s:\n\n", path)
		output.PrintTable(cmd.OutOrStdout(), configTable(cfg, db))
		return cfg.Validate()
	},
}

func configTable(cfg *config.Config, db config.DatabaseConfig) *output.TableData {
	t := output.NewTableData("Setting", "Value")
	t.AddRow("base_dir", cfg.BaseDir)
	t.AddRow("log_dir", cfg.LogDir)
	t.AddRow("log_level", cfg.LogLevel)
	t.AddRow("database.type", db.Type)
	if db.Type == "sqlite" {
		t.AddRow("database.path", db.Path)
	} else {
		t.AddRow("database.address", db.Address())
		t.AddRow("database.name", db.Name)
		t.AddRow("database.user", db.User)
		t.AddRow("database.password", db.Password)
	}
	t.AddRow("database.schema", db.Schema)
	t.AddRow("report.dir", cfg.Report.Dir)
	t.AddRow("report.separator", cfg.Report.Separator)
	t.AddRow("report.encryption", cfg.Report.Encryption.Type)
	t.AddRow("report.archive", cfg.Report.Archive.Type)
	t.AddRow("check.stores", fmt.Sprint(cfg.Check.Stores))
	t.AddRow("progress", fmt.Sprintf("%d x %d", cfg.Progress.Increment, cfg.Progress.Count))
	return t
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage SQLite docbase snapshots",
}

var snapshotInitCmd = &cobra.Command{
	Use:   "init PATH",
	Short: "Create an empty snapshot with the docbase tables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitSnapshot(args[0]); err != nil {
			return err
		}
		fmt.Printf("Snapshot initialized at %s\n", args[0])
		return nil
	},
}

// report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage published reports",
}

var reportKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the key pair encrypting reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		first, err := app.PromptPassword(cmd.Context(), "passphrase for the new report key: ")
		if err != nil {
			return err
		}
		second, err := app.PromptPassword(cmd.Context(), "repeat passphrase: ")
		if err != nil {
			return err
		}
		if first != second {
			return errors.New("passphrases do not match")
		}
		if err := app.Keygen(cfg, first); err != nil {
			return err
		}
		fmt.Printf("Report key written to %s\n", cfg.Report.Encryption.RecipientPath)
		return nil
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		names, err := app.ListReports(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reports found.")
			return nil
		}
		output.PrintTable(cmd.OutOrStdout(), output.ListTable("Report", names))
		return nil
	},
}

var reportGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Write a published report to stdout, decrypted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return app.GetReport(cmd.Context(), cfg, args[0], app.PromptPassword, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "C", "", "Path to the config file (default $BCL_CONFIG_PATH or ~/.config/bcl.toml)")

	// check flags
	checkCmd.Flags().String("report-dir", "", "Directory receiving the report (overrides report.dir)")
	checkCmd.Flags().StringSlice("store", nil, "Only check stores whose name matches the pattern (repeatable)")

	// locate flags
	locateCmd.Flags().String("store", "", "Name of the store holding the content")
	locateCmd.Flags().String("ext", "", "Format extension of the content, if the store uses extensions")
	locateCmd.MarkFlagRequired("store")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// snapshot subcommands
	snapshotCmd.AddCommand(snapshotInitCmd)

	// report subcommands
	reportCmd.AddCommand(reportKeygenCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportGetCmd)

	// root commands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(storesCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(reportCmd)
}
