package ports

import "context"

// FileWriter replaces the content of a file so that readers observe either
// the old content or the new content, never a mix.
type FileWriter interface {
	// Write creates missing parent directories and replaces the file at
	// path with content. On error before the final rename the target is
	// left untouched.
	Write(ctx context.Context, path string, content []byte) error
}
