package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, _ := GenerateSalt()
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("pantry", salt)
	key2 := DeriveKey("pantry", salt)
	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("cellar", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	salt, _ := GenerateSalt()
	plaintext := []byte("inventory snapshot")

	sealed, err := Seal(plaintext, "pass", salt)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !bytes.Equal(sealed[:saltSize], salt) {
		t.Error("sealed data should start with salt")
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("sealed data contains plaintext")
	}

	got, err := Open(sealed, "pass")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("open = %q, want %q", got, plaintext)
	}
}

func TestSealRejectsBadSalt(t *testing.T) {
	if _, err := Seal([]byte("x"), "pass", []byte("short")); err == nil {
		t.Error("expected error for short salt")
	}
}

func TestOpenFailures(t *testing.T) {
	salt, _ := GenerateSalt()
	sealed, _ := Seal([]byte("secret data"), "right", salt)

	if _, err := Open(sealed, "wrong"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("wrong passphrase err = %v, want ErrDecrypt", err)
	}

	tampered := bytes.Clone(sealed)
	tampered[saltSize+nonceSize+1] ^= 0xFF
	if _, err := Open(tampered, "right"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("tampered err = %v, want ErrDecrypt", err)
	}

	if _, err := Open([]byte("too short"), "right"); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("short err = %v, want ErrCiphertextTooShort", err)
	}
}

func TestSealEmptyPlaintext(t *testing.T) {
	salt, _ := GenerateSalt()
	sealed, err := Seal(nil, "pass", salt)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	got, err := Open(sealed, "pass")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("open = %q, want empty", got)
	}
}
