package util

import (
	"strings"
	"testing"
)

func TestHashPIN(t *testing.T) {
	hashed, err := HashPIN("1234")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hashed == "1234" {
		t.Error("hash must not equal the plaintext")
	}

	if _, err := HashPIN(""); err == nil {
		t.Error("empty pin should be rejected")
	}

	// random salt: same pin, different hash
	hashed2, _ := HashPIN("1234")
	if hashed == hashed2 {
		t.Error("same pin should produce different hashes")
	}
}

func TestCheckPIN(t *testing.T) {
	hashed, _ := HashPIN("4321")

	if !CheckPIN("4321", hashed) {
		t.Error("correct pin rejected")
	}
	if CheckPIN("0000", hashed) {
		t.Error("wrong pin accepted")
	}
	if CheckPIN("", hashed) {
		t.Error("empty pin accepted")
	}
	if CheckPIN("4321", "") {
		t.Error("empty hash accepted")
	}
	if CheckPIN("4321", "not-a-bcrypt-hash") {
		t.Error("invalid hash format accepted")
	}
}

func TestEncryptDecryptAES(t *testing.T) {
	key := "test-encryption-key"

	testCases := []string{
		"Hello World",
		"",
		"Special!@#$%^&*()",
		strings.Repeat("A", 1000),
	}

	for _, plaintext := range testCases {
		encrypted, err := EncryptAES(key, []byte(plaintext))
		if err != nil {
			t.Fatalf("encrypt %q: %v", plaintext, err)
		}

		decrypted, err := DecryptAES(key, encrypted)
		if err != nil {
			t.Fatalf("decrypt %q: %v", plaintext, err)
		}

		if string(decrypted) != plaintext {
			t.Errorf("round trip mismatch: want %q, got %q", plaintext, string(decrypted))
		}
	}
}

func TestEncryptAES_DifferentKeys(t *testing.T) {
	plaintext := []byte("Secret Data")

	encrypted1, _ := EncryptAES("key1", plaintext)
	encrypted2, _ := EncryptAES("key2", plaintext)

	if string(encrypted1) == string(encrypted2) {
		t.Error("different keys should produce different ciphertext")
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	encrypted, _ := EncryptAES("correct-key", []byte("Data"))

	if _, err := DecryptAES("wrong-key", encrypted); err == nil {
		t.Error("wrong key should fail to decrypt")
	}
}

func TestDecryptAES_InvalidData(t *testing.T) {
	if _, err := DecryptAES("key", []byte{1, 2, 3}); err == nil {
		t.Error("truncated data should fail to decrypt")
	}
	if _, err := DecryptAES("key", nil); err == nil {
		t.Error("nil data should fail to decrypt")
	}
}
