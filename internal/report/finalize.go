package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bcl-go/internal/bcl"
)

// Finalizer publishes a closed report. The report is encrypted when an
// encryptor is set and copied to the archive when one is set. Both are
// optional.
type Finalizer struct {
	encryptor bcl.Encryptor
	archive   bcl.Archive
	logger    bcl.Logger
}

func NewFinalizer(encryptor bcl.Encryptor, archive bcl.Archive, logger bcl.Logger) *Finalizer {
	return &Finalizer{encryptor: encryptor, archive: archive, logger: logger}
}

// Finalize returns the path of the published report. The plaintext report is
// removed once its encrypted copy is written.
func (f *Finalizer) Finalize(ctx context.Context, path string) (string, error) {
	final := path
	if f.encryptor != nil {
		encrypted, err := f.encrypt(path)
		if err != nil {
			return path, err
		}
		final = encrypted
		f.logger.Info("report encrypted", "path", final)
	}

	if f.archive != nil {
		if err := f.upload(ctx, final); err != nil {
			return final, err
		}
		f.logger.Info("report archived", "archive", f.archive.Name(), "name", filepath.Base(final))
	}
	return final, nil
}

func (f *Finalizer) encrypt(path string) (string, error) {
	if !f.encryptor.IsConfigured() {
		return "", errors.New("encryption is enabled but no key is configured: run 'bcl report keygen'")
	}

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening report: %w", err)
	}
	defer in.Close()

	target := path + f.encryptor.Extension()
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating encrypted report: %w", err)
	}

	if err := f.encryptor.Encrypt(in, out); err != nil {
		out.Close()
		os.Remove(target)
		return "", fmt.Errorf("encrypting report: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("closing encrypted report: %w", err)
	}

	in.Close()
	if err := os.Remove(path); err != nil {
		return target, fmt.Errorf("removing plaintext report: %w", err)
	}
	return target, nil
}

func (f *Finalizer) upload(ctx context.Context, path string) error {
	r, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening report for upload: %w", err)
	}
	defer r.Close()

	info, err := r.Stat()
	if err != nil {
		return fmt.Errorf("stat report: %w", err)
	}

	if err := f.archive.Put(ctx, filepath.Base(path), r, info.Size()); err != nil {
		return fmt.Errorf("uploading report to archive: %w", err)
	}
	return nil
}

// Fetch copies an archived report to w. Reports carrying the encryptor
// extension are decrypted with dc, which must then be set.
func Fetch(ctx context.Context, archive bcl.Archive, name string, encryptor bcl.Encryptor, dc bcl.DecryptionContext, w io.Writer) error {
	if encryptor == nil || !strings.HasSuffix(name, encryptor.Extension()) {
		return archive.Get(ctx, name, w)
	}
	if dc == nil {
		return fmt.Errorf("report %s is encrypted but no passphrase was provided", name)
	}

	pr, pw := io.Pipe()
	errCh := make(chan error, 1)
	go func() {
		err := archive.Get(ctx, name, pw)
		pw.CloseWithError(err)
		errCh <- err
	}()

	decryptErr := dc.Decrypt(pr, w)
	pr.CloseWithError(decryptErr)
	archiveErr := <-errCh

	if archiveErr != nil && !errors.Is(archiveErr, io.ErrClosedPipe) {
		return archiveErr
	}
	if decryptErr != nil {
		return fmt.Errorf("decrypting report: %w", decryptErr)
	}
	return nil
}
