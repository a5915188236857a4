package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/antiXlive/Expense/internal/util"

	"github.com/google/uuid"
)

// WriteFile serializes the current tables into a backup file under dir and
// returns its path. When encryptKey is non-empty the document is sealed
// with AES-GCM and written as .bin instead of .json.
func (s *Service) WriteFile(ctx context.Context, dir, encryptKey string) (string, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return "", err
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}

	ext := "json"
	if encryptKey != "" {
		raw, err = util.EncryptAES(encryptKey, raw)
		if err != nil {
			return "", fmt.Errorf("encrypt backup: %w", err)
		}
		ext = "bin"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	fileName := fmt.Sprintf("backup-%s.%s", uuid.New().String(), ext)
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return "", fmt.Errorf("write backup file: %w", err)
	}
	return path, nil
}

// ReadFile loads and parses a backup file written by WriteFile, decrypting
// .bin files with the given key.
func ReadFile(path, encryptKey string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup file: %w", err)
	}
	if strings.HasSuffix(path, ".bin") {
		if encryptKey == "" {
			return nil, fmt.Errorf("read backup file: encrypted backup requires a key")
		}
		raw, err = util.DecryptAES(encryptKey, raw)
		if err != nil {
			return nil, fmt.Errorf("decrypt backup file: %w", err)
		}
	}
	return ParseDocument(raw)
}
