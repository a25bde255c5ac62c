package encryption

import (
	"bytes"
	"testing"
)

func TestTestEncryptor_EncryptDecrypt(t *testing.T) {
	t.Parallel()

	for _, input := range [][]byte{[]byte("a|b|c\n"), {}} {
		e := NewTestEncryptor()

		var encrypted bytes.Buffer
		if err := e.Encrypt(bytes.NewReader(input), &encrypted); err != nil {
			t.Fatalf("Encrypt() error = %v", err)
		}
		if !bytes.HasPrefix(encrypted.Bytes(), testHeader) {
			t.Error("encrypted output does not start with test header")
		}

		ctx, err := e.Unlock("any-passphrase")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		var decrypted bytes.Buffer
		if err := ctx.Decrypt(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if !bytes.Equal(decrypted.Bytes(), input) {
			t.Errorf("round-trip failed: got %q, want %q", decrypted.Bytes(), input)
		}
	}
}

func TestTestEncryptor_Setup(t *testing.T) {
	e := NewTestEncryptor()
	if err := e.Setup("any-passphrase"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.setupCalled {
		t.Error("Setup() did not record that it was called")
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false, want true")
	}
}

func TestTestDecryptionContext_BadInput(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"invalid header":   []byte("NOT_VALID_HEADER_data"),
		"truncated header": []byte("BC"),
		"empty":            nil,
	} {
		var out bytes.Buffer
		if err := (&TestDecryptionContext{}).Decrypt(bytes.NewReader(data), &out); err == nil {
			t.Errorf("%s: Decrypt() should return error", name)
		}
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		typ     string
		wantNil bool
		wantErr bool
	}{
		{"", true, false},
		{"none", true, false},
		{"age", false, false},
		{"test", false, false},
		{"rot13", true, true},
	}
	for _, tt := range tests {
		got, err := NewEncryptorFromConfig(configOfType(tt.typ))
		if (err != nil) != tt.wantErr {
			t.Errorf("NewEncryptorFromConfig(%q) error = %v, wantErr %v", tt.typ, err, tt.wantErr)
		}
		if (got == nil) != tt.wantNil {
			t.Errorf("NewEncryptorFromConfig(%q) = %v, wantNil %v", tt.typ, got, tt.wantNil)
		}
	}
}
