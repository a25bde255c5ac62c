package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bcl-go/internal/archive"
	"bcl-go/internal/bcl"
	"bcl-go/internal/config"
	"bcl-go/internal/encryption"
	"bcl-go/internal/report"
)

// Keygen creates the report key pair. The private key is protected with
// passphrase.
func Keygen(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Report.Encryption)
	if err != nil {
		return err
	}
	if enc == nil {
		return errors.New("report encryption is disabled: set report.encryption.type")
	}
	if passphrase == "" {
		return errors.New("empty passphrase")
	}
	return enc.Setup(passphrase)
}

// reportSource returns the configured archive, or the local report
// directory when no archive is configured.
func reportSource(ctx context.Context, cfg *config.Config) (bcl.Archive, error) {
	arch, err := archive.NewArchiveFromConfig(ctx, cfg.Report.Archive)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	if arch != nil {
		return arch, nil
	}
	local, err := archive.NewFileSystemArchive("local", cfg.Report.Dir)
	if err != nil {
		return nil, err
	}
	return local, nil
}

// ListReports returns the names of the published reports.
func ListReports(ctx context.Context, cfg *config.Config) ([]string, error) {
	src, err := reportSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return src.List(ctx)
}

// GetReport writes the named report to w, decrypting it when needed. The
// passphrase of the report key is only asked for encrypted reports.
func GetReport(ctx context.Context, cfg *config.Config, name string, password PasswordFunc, w io.Writer) error {
	src, err := reportSource(ctx, cfg)
	if err != nil {
		return err
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Report.Encryption)
	if err != nil {
		return err
	}

	var dc bcl.DecryptionContext
	if enc != nil && strings.HasSuffix(name, enc.Extension()) {
		if password == nil {
			return fmt.Errorf("report %s is encrypted and no passphrase can be asked", name)
		}
		passphrase, err := password(ctx, "enter passphrase of the report key: ")
		if err != nil {
			return err
		}
		dc, err = enc.Unlock(passphrase)
		if err != nil {
			return fmt.Errorf("unlocking report key: %w", err)
		}
	}
	return report.Fetch(ctx, src, name, enc, dc, w)
}
