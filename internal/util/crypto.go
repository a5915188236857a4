package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// HashPIN hashes an unlock PIN with bcrypt.
func HashPIN(pin string) (string, error) {
	if pin == "" {
		return "", fmt.Errorf("pin is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// CheckPIN verifies a plaintext PIN against its stored bcrypt hash.
func CheckPIN(pin, stored string) bool {
	if pin == "" || stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pin)) == nil
}

// ----------------- AES-256-GCM encryption (used for backups) -----------------

// deriveKey stretches a passphrase into a 32-byte key with PBKDF2-SHA256.
func deriveKey(keyStr string, salt []byte) []byte {
	return pbkdf2.Key([]byte(keyStr), salt, 100_000, 32, sha256.New)
}

// EncryptAES encrypts data with AES-256-GCM, returning salt+nonce+ciphertext.
func EncryptAES(keyStr string, plaintext []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	key := deriveKey(keyStr, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)
	// salt and nonce are prepended so decryption can split them back out
	out := append(salt, nonce...)
	return append(out, ciphertext...), nil
}

// DecryptAES decrypts data produced by EncryptAES.
func DecryptAES(keyStr string, data []byte) ([]byte, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("cipher too short")
	}
	salt, rest := data[:16], data[16:]
	key := deriveKey(keyStr, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	ns := aesgcm.NonceSize()
	if len(rest) < ns {
		return nil, fmt.Errorf("cipher too short")
	}
	nonce, ciphertext := rest[:ns], rest[ns:]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
