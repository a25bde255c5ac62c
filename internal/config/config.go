package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

var (
	// ErrMissing is returned when the config file does not exist.
	ErrMissing = errors.New("config file not found")
	// ErrUnreadable is returned when the config file cannot be opened or decoded.
	ErrUnreadable = errors.New("config file unreadable")
	// ErrInvalid is returned by Validate.
	ErrInvalid = errors.New("invalid config")
)

// Config represents the main configuration for bcl.
type Config struct {
	BaseDir  string         `toml:"base_dir"`
	LogDir   string         `toml:"log_dir"`
	LogLevel string         `toml:"log_level"` // debug, info, warn or error
	Database DatabaseConfig `toml:"database"`
	Report   ReportConfig   `toml:"report"`
	Check    CheckConfig    `toml:"check"`
	Progress ProgressConfig `toml:"progress"`
}

// DatabaseConfig locates the docbase.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type string `toml:"type"` // "postgres", "mysql" or "sqlite"

	// Server fields (Type == "postgres" or "mysql")
	Host     string `toml:"host,omitempty"`
	Port     int    `toml:"port,omitempty"` // 0 selects the driver default
	Name     string `toml:"name,omitempty"`
	User     string `toml:"user,omitempty"`
	Password string `toml:"password,omitempty"` // prompted when empty
	SSLMode  string `toml:"ssl_mode,omitempty"` // postgres only

	// Schema qualifies every docbase table name when set, e.g. "dbo".
	Schema string `toml:"schema,omitempty"`

	// SQLite snapshot file (Type == "sqlite")
	Path string `toml:"path,omitempty"`
}

// ReportConfig controls where failed contents are written and what happens
// to the report once the audit is over.
type ReportConfig struct {
	Dir        string           `toml:"dir"`
	Separator  string           `toml:"separator"` // a single character, "|" by default
	Encryption EncryptionConfig `toml:"encryption"`
	Archive    ArchiveConfig    `toml:"archive"`
}

// EncryptionConfig selects how a closed report is encrypted.
type EncryptionConfig struct {
	Type          string `toml:"type"`                     // "none" (default), "age" or "test"
	RecipientPath string `toml:"recipient_path,omitempty"` // age public key file
	IdentityPath  string `toml:"identity_path,omitempty"`  // passphrase protected age private key
}

// ArchiveConfig selects where a closed report is copied.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ArchiveConfig struct {
	Type string `toml:"type"` // "none" (default), "filesystem" or "s3"

	// FileSystem-specific fields (only used when Type == "filesystem")
	Root string `toml:"root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"` // S3 compatible servers
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
	S3PathStyle bool   `toml:"s3_path_style,omitempty"`
}

// CheckConfig restricts the audit.
type CheckConfig struct {
	// Stores holds glob patterns on store names; empty checks every store.
	Stores []string `toml:"stores"`
}

// ProgressConfig controls the progress output of an audit: one dot every
// Increment checks and a step line every Count dots.
type ProgressConfig struct {
	Increment int `toml:"increment"`
	Count     int `toml:"count"`
}

const (
	DefaultSeparator    = "|"
	DefaultIncrement    = 1024
	DefaultCount        = 64
	MaxCount            = 100
	defaultPostgresPort = 5432
	defaultMySQLPort    = 3306
)

// NewConfig creates a new Config rooted at baseDir with default values.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: filepath.Join(baseDir, "docbase.db"),
		},
		Report: ReportConfig{
			Dir:       filepath.Join(baseDir, "reports"),
			Separator: DefaultSeparator,
			Encryption: EncryptionConfig{
				Type:          "none",
				RecipientPath: filepath.Join(baseDir, "keys", "bcl.pub"),
				IdentityPath:  filepath.Join(baseDir, "keys", "bcl.key"),
			},
			Archive: ArchiveConfig{Type: "none"},
		},
		Progress: ProgressConfig{
			Increment: DefaultIncrement,
			Count:     DefaultCount,
		},
	}
}

// Address returns host:port for server databases, the port defaulting to
// the driver's standard one.
func (c DatabaseConfig) Address() string {
	port := c.Port
	if port == 0 {
		switch c.Type {
		case "postgres":
			port = defaultPostgresPort
		case "mysql":
			port = defaultMySQLPort
		}
	}
	return c.Host + ":" + strconv.Itoa(port)
}

// SeparatorRune returns the report field separator.
func (c ReportConfig) SeparatorRune() rune {
	if c.Separator == "" {
		return '|'
	}
	r, _ := utf8.DecodeRuneInString(c.Separator)
	return r
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate reports every problem of the config at once. The returned error
// wraps ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		add("log_level: unknown level %q", c.LogLevel)
	}

	db := c.Database
	switch db.Type {
	case "postgres", "mysql":
		if db.Host == "" {
			add("database.host required for %s", db.Type)
		}
		if db.Name == "" {
			add("database.name required for %s", db.Type)
		}
		if db.User == "" {
			add("database.user required for %s", db.Type)
		}
		if db.Port < 0 || db.Port > 65535 {
			add("database.port out of range: %d", db.Port)
		}
		if db.SSLMode != "" && db.Type != "postgres" {
			add("database.ssl_mode only applies to postgres")
		}
	case "sqlite":
		if db.Path == "" {
			add("database.path required for sqlite")
		}
	default:
		add("database.type: unknown type %q", db.Type)
	}
	if db.Schema != "" && !identifier.MatchString(db.Schema) {
		add("database.schema: %q is not a plain identifier", db.Schema)
	}

	r := c.Report
	if r.Dir == "" {
		add("report.dir required")
	}
	if r.Separator != "" {
		sep, size := utf8.DecodeRuneInString(r.Separator)
		if size != len(r.Separator) || sep == '"' || sep == '\r' || sep == '\n' || sep == utf8.RuneError {
			add("report.separator: %q is not a usable single character", r.Separator)
		}
	}
	switch r.Encryption.Type {
	case "", "none", "test":
	case "age":
		if r.Encryption.RecipientPath == "" {
			add("report.encryption.recipient_path required for age")
		}
	default:
		add("report.encryption.type: unknown type %q", r.Encryption.Type)
	}
	switch r.Archive.Type {
	case "", "none":
	case "filesystem":
		if r.Archive.Root == "" {
			add("report.archive.root required for filesystem")
		}
	case "s3":
		if r.Archive.S3Bucket == "" {
			add("report.archive.s3_bucket required for s3")
		}
		if (r.Archive.S3AccessKey == "") != (r.Archive.S3SecretKey == "") {
			add("report.archive: s3_access_key and s3_secret_key go together")
		}
	default:
		add("report.archive.type: unknown type %q", r.Archive.Type)
	}

	for _, p := range c.Check.Stores {
		if _, err := path.Match(p, ""); err != nil {
			add("check.stores: pattern %q: %v", p, err)
		}
	}

	if c.Progress.Increment <= 0 {
		add("progress.increment must be positive, got %d", c.Progress.Increment)
	}
	if c.Progress.Count <= 0 || c.Progress.Count > MaxCount {
		add("progress.count must be between 1 and %d, got %d", MaxCount, c.Progress.Count)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path. The error wraps
// ErrMissing when the file does not exist and ErrUnreadable otherwise.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%w: reading config from %s: %w", ErrUnreadable, path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to path with mode 0600.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
