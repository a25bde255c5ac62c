package encryption

import (
	"fmt"

	"bcl-go/internal/bcl"
	"bcl-go/internal/config"
)

// NewEncryptorFromConfig creates the report Encryptor for the configuration
// type. It returns nil when reports are kept in plain text.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (bcl.Encryptor, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
