package bcl

import (
	"context"
	"io"
)

// Archive keeps copies of closed reports away from the host that ran the
// audit. Reports are identified by their file name.
type Archive interface {
	// Name identifies the archive in logs.
	Name() string

	// Put stores a report. size is the number of bytes that will be read
	// from r. Storing a name twice replaces the first copy.
	Put(ctx context.Context, name string, r io.Reader, size int64) error

	// Get retrieves a report and writes it to w.
	Get(ctx context.Context, name string, w io.Writer) error

	// List returns the archived report names in lexical order.
	List(ctx context.Context) ([]string, error)

	// ValidateSetup verifies that the archive is accessible.
	ValidateSetup(ctx context.Context) error
}

// Encryptor encrypts closed reports with a public key, so that no secret is
// needed on the audit host. Reading them back requires unlocking the
// private key with a passphrase.
type Encryptor interface {
	// Setup generates a key pair, stores the public key in plaintext and
	// the private key encrypted with passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns a DecryptionContext.
	// Returns an error if the passphrase is incorrect.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if the public key exists.
	IsConfigured() bool

	// Extension is appended to the name of encrypted reports.
	Extension() string
}

// DecryptionContext holds an unlocked private key in memory.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
