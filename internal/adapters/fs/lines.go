package fs

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bft-labs/graphwal/internal/domain"
)

// appendLine appends v as one JSON line to path and syncs the file.
func appendLine(op, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return domain.NewError(domain.KindSerialization, op, path, err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.NewError(domain.KindIO, op, path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return domain.NewError(domain.KindIO, op, path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return domain.NewError(domain.KindIO, op, path, err)
	}
	if err := f.Close(); err != nil {
		return domain.NewError(domain.KindIO, op, path, err)
	}
	return nil
}

// entry is a log line type that can check its own required fields.
type entry interface {
	Validate() error
}

// decodeLines parses every non-blank line of path as one JSON object into a
// new T. A missing file yields no entries. The first line that is not
// exactly one complete entry, with no unknown fields, aborts the read with
// a KindSerialization error carrying its 1-based line number.
func decodeLines[T entry](op, path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, domain.NewError(domain.KindIO, op, path, err)
	}
	defer f.Close()

	out := make([]T, 0)
	r := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, readErr := r.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, domain.NewError(domain.KindIO, op, path, readErr)
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			v, err := decodeLine[T](trimmed)
			if err != nil {
				e := domain.NewError(domain.KindSerialization, op, path, err)
				e.Line = lineNo
				return nil, e
			}
			out = append(out, v)
		}
		if readErr == io.EOF {
			return out, nil
		}
	}
}

func decodeLine[T entry](line []byte) (T, error) {
	var v T
	if bytes.Equal(line, []byte("null")) {
		return v, fmt.Errorf("%w: null", domain.ErrMalformedEntry)
	}
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if dec.More() {
		return v, fmt.Errorf("%w: trailing data", domain.ErrMalformedEntry)
	}
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}

// syncDir fsyncs a directory so renames and unlinks inside it are durable.
// Platforms that cannot sync directories are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
