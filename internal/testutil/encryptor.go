package testutil

import (
	"bcl-go/internal/bcl"
	"bcl-go/internal/encryption"
)

// NewTestEncryptor creates a reversible encryptor that needs no key files.
func NewTestEncryptor() bcl.Encryptor {
	return encryption.NewTestEncryptor()
}
