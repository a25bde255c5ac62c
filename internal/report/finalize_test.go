package report_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bcl-go/internal/archive"
	"bcl-go/internal/bcl"
	"bcl-go/internal/config"
	"bcl-go/internal/encryption"
	"bcl-go/internal/report"
	"bcl-go/internal/testutil"
)

const reportData = "0900162a80001001|contract|dm_document|true|pdf|false|0|2014-03-02T11:30:00Z|.pdf|10|5|NOT_FOUND|/data/00/00/00/05.pdf|content not found\n"

func writeReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dmadmin-20150601T080000Z.csv")
	if err := os.WriteFile(path, []byte(reportData), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFinalizer_Finalize(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing configured", func(t *testing.T) {
		path := writeReport(t)
		f := report.NewFinalizer(nil, nil, bcl.NewNopLogger())

		got, err := f.Finalize(ctx, path)
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if got != path {
			t.Errorf("Finalize() = %q, want %q", got, path)
		}
	})

	t.Run("encrypts and archives", func(t *testing.T) {
		path := writeReport(t)
		enc := testutil.NewTestEncryptor()
		arch := testutil.NewTestArchive()
		f := report.NewFinalizer(enc, arch, bcl.NewNopLogger())

		got, err := f.Finalize(ctx, path)
		if err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if got != path+".enc" {
			t.Errorf("Finalize() = %q, want %q", got, path+".enc")
		}
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("plaintext report still present: %v", err)
		}

		names, _ := arch.List(ctx)
		if len(names) != 1 || names[0] != "dmadmin-20150601T080000Z.csv.enc" {
			t.Fatalf("archive List() = %v", names)
		}

		dc, err := enc.Unlock("")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		var buf bytes.Buffer
		if err := report.Fetch(ctx, arch, names[0], enc, dc, &buf); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if buf.String() != reportData {
			t.Errorf("Fetch() = %q, want %q", buf.String(), reportData)
		}
	})

	t.Run("archives plaintext without encryptor", func(t *testing.T) {
		path := writeReport(t)
		arch := testutil.NewTestArchive()
		f := report.NewFinalizer(nil, arch, bcl.NewNopLogger())

		if _, err := f.Finalize(ctx, path); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}

		var buf bytes.Buffer
		if err := report.Fetch(ctx, arch, filepath.Base(path), nil, nil, &buf); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if buf.String() != reportData {
			t.Errorf("Fetch() = %q, want %q", buf.String(), reportData)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("local report removed: %v", err)
		}
	})

	t.Run("age key not generated", func(t *testing.T) {
		path := writeReport(t)
		dir := t.TempDir()
		enc := encryption.NewAgeEncryptor(config.EncryptionConfig{
			Type:          "age",
			RecipientPath: filepath.Join(dir, "bcl.pub"),
			IdentityPath:  filepath.Join(dir, "bcl.key"),
		})
		f := report.NewFinalizer(enc, nil, bcl.NewNopLogger())

		_, err := f.Finalize(ctx, path)
		if err == nil || !strings.Contains(err.Error(), "keygen") {
			t.Fatalf("Finalize() error = %v, want a keygen hint", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("plaintext report must be kept when encryption fails: %v", err)
		}
	})
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	enc := testutil.NewTestEncryptor()
	arch := archive.NewMemoryArchive("test")
	arch.Put(ctx, "r.csv.enc", strings.NewReader("garbage!"), 8)

	t.Run("encrypted without passphrase", func(t *testing.T) {
		err := report.Fetch(ctx, arch, "r.csv.enc", enc, nil, &bytes.Buffer{})
		if err == nil {
			t.Fatal("Fetch() expected error without decryption context")
		}
	})

	t.Run("missing report", func(t *testing.T) {
		dc, _ := enc.Unlock("")
		err := report.Fetch(ctx, arch, "absent.csv.enc", enc, dc, &bytes.Buffer{})
		if !errors.Is(err, archive.ErrNotFound) {
			t.Fatalf("Fetch() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("corrupted report", func(t *testing.T) {
		dc, _ := enc.Unlock("")
		if err := report.Fetch(ctx, arch, "r.csv.enc", enc, dc, &bytes.Buffer{}); err == nil {
			t.Fatal("Fetch() expected error for a bad header")
		}
	})
}
