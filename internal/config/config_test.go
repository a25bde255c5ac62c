package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := NewConfig("/home/user/.local/share/bcl")
	original.Database = DatabaseConfig{
		Type:    "postgres",
		Host:    "db.example.com",
		Port:    5433,
		Name:    "docbase",
		User:    "dmadmin",
		Schema:  "dbo",
		SSLMode: "require",
	}
	original.Report.Archive = ArchiveConfig{Type: "s3", S3Bucket: "audits", S3Prefix: "bcl/"}
	original.Check.Stores = []string{"filestore_*", "thumbnail_store_01"}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Report.Separator != "|" {
		t.Errorf("Report.Separator = %q, want %q", got.Report.Separator, "|")
	}
	if got.Report.Archive.S3Bucket != "audits" {
		t.Errorf("Report.Archive.S3Bucket = %q, want %q", got.Report.Archive.S3Bucket, "audits")
	}
	if len(got.Check.Stores) != 2 {
		t.Fatalf("len(Check.Stores) = %d, want 2", len(got.Check.Stores))
	}
	if got.Progress != original.Progress {
		t.Errorf("Progress = %+v, want %+v", got.Progress, original.Progress)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/bcl")

	if cfg.LogDir != "/data/bcl/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/bcl/log")
	}
	if cfg.Report.Dir != "/data/bcl/reports" {
		t.Errorf("Report.Dir = %q, want %q", cfg.Report.Dir, "/data/bcl/reports")
	}
	if cfg.Progress.Increment != 1024 || cfg.Progress.Count != 64 {
		t.Errorf("Progress = %+v, want {1024 64}", cfg.Progress)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestDatabaseConfig_Address(t *testing.T) {
	tests := []struct {
		cfg  DatabaseConfig
		want string
	}{
		{DatabaseConfig{Type: "postgres", Host: "pg"}, "pg:5432"},
		{DatabaseConfig{Type: "mysql", Host: "my"}, "my:3306"},
		{DatabaseConfig{Type: "postgres", Host: "pg", Port: 6432}, "pg:6432"},
	}
	for _, tt := range tests {
		if got := tt.cfg.Address(); got != tt.want {
			t.Errorf("Address() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{"valid postgres", func(c *Config) {
			c.Database = DatabaseConfig{Type: "postgres", Host: "h", Name: "n", User: "u"}
		}, ""},
		{"valid mysql", func(c *Config) {
			c.Database = DatabaseConfig{Type: "mysql", Host: "h", Name: "n", User: "u", Schema: "docbase"}
		}, ""},
		{"unknown database type", func(c *Config) { c.Database.Type = "oracle" }, "database.type"},
		{"postgres without host", func(c *Config) {
			c.Database = DatabaseConfig{Type: "postgres", Name: "n", User: "u"}
		}, "database.host"},
		{"ssl mode on mysql", func(c *Config) {
			c.Database = DatabaseConfig{Type: "mysql", Host: "h", Name: "n", User: "u", SSLMode: "require"}
		}, "ssl_mode"},
		{"schema with dot", func(c *Config) { c.Database.Schema = "dbo.x" }, "database.schema"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"two character separator", func(c *Config) { c.Report.Separator = "||" }, "report.separator"},
		{"quote separator", func(c *Config) { c.Report.Separator = `"` }, "report.separator"},
		{"tab separator", func(c *Config) { c.Report.Separator = "\t" }, ""},
		{"age without recipient", func(c *Config) { c.Report.Encryption.Type = "age" }, "recipient_path"},
		{"s3 without bucket", func(c *Config) { c.Report.Archive.Type = "s3" }, "s3_bucket"},
		{"s3 half credentials", func(c *Config) {
			c.Report.Archive = ArchiveConfig{Type: "s3", S3Bucket: "b", S3AccessKey: "AK"}
		}, "s3_secret_key"},
		{"filesystem archive without root", func(c *Config) { c.Report.Archive.Type = "filesystem" }, "report.archive.root"},
		{"bad store pattern", func(c *Config) { c.Check.Stores = []string{"[a-"} }, "check.stores"},
		{"zero increment", func(c *Config) { c.Progress.Increment = 0 }, "progress.increment"},
		{"count above max", func(c *Config) { c.Progress.Count = 101 }, "progress.count"},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/data/bcl")
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() error = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}

	t.Run("reports every problem", func(t *testing.T) {
		cfg := NewConfig("/data/bcl")
		cfg.Report.Dir = ""
		cfg.Progress.Count = 0

		err := cfg.Validate()
		if err == nil {
			t.Fatal("Validate() expected error")
		}
		for _, want := range []string{"report.dir", "progress.count"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, want)
			}
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bcl.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config file mode = %o, want 600", perm)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bcl.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bcl.toml")
		cfg := NewConfig(dir)
		cfg.Database.Schema = "dbo"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Database.Schema != "dbo" {
			t.Errorf("Database.Schema = %q, want %q", got.Database.Schema, "dbo")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/bcl.toml")
		if !errors.Is(err, ErrMissing) {
			t.Fatalf("ReadFromFile() error = %v, want ErrMissing", err)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bcl.toml")
		if err := os.WriteFile(path, []byte("[database\ntype = "), 0600); err != nil {
			t.Fatal(err)
		}

		_, err := ReadFromFile(path)
		if !errors.Is(err, ErrUnreadable) {
			t.Fatalf("ReadFromFile() error = %v, want ErrUnreadable", err)
		}
	})
}
