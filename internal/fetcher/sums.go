package fetcher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SumsFileName is written into the staging directory after each fetch
// pass and travels with the batch through quarantine and archive.
const SumsFileName = "sha256.txt"

// Hasher produces a hex digest of a file's contents.
type Hasher interface {
	HashFile(path string) (string, error)
}

// SHA256Hasher hashes with crypto/sha256 in streaming fashion.
type SHA256Hasher struct{}

func (SHA256Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteSums hashes every regular file directly under dir (except the sums
// file itself) and writes "<digest>  <name>" lines, sorted by name.
func WriteSums(dir string, h Hasher) error {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read staging dir: %w", err)
	}

	var names []string
	for _, de := range dirents {
		if !de.Type().IsRegular() || de.Name() == SumsFileName {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		digest, err := h.HashFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "%s  %s\n", digest, name)
	}

	if err := os.WriteFile(filepath.Join(dir, SumsFileName), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write sums file: %w", err)
	}
	return nil
}
