package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bft-labs/graphwal/internal/domain"
	"github.com/bft-labs/graphwal/internal/ports"
)

// Reader implements ports.FileReader.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader { return &Reader{} }

// List returns the full paths of dir's entries sorted by name.
func (Reader) List(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, classify("list entries", dir, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

// ReadText reads path and rejects content that is not valid UTF-8.
func (Reader) ReadText(ctx context.Context, path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", classify("read content", path, err)
	}
	if !utf8.Valid(b) {
		return "", domain.NewError(domain.KindSerialization, "read content", path, errors.New("invalid utf-8"))
	}
	return string(b), nil
}

// ModTimeMillis returns path's modification time in fractional milliseconds.
func (Reader) ModTimeMillis(ctx context.Context, path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, classify("stat", path, err)
	}
	return float64(info.ModTime().UnixNano()) / 1e6, nil
}

func classify(op, path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewError(domain.KindNotFound, op, path, err)
	}
	return domain.NewError(domain.KindIO, op, path, err)
}

var _ ports.FileReader = Reader{}
