// Package iohelper provides helper functions for I/O operations,
// particularly for safely reading corpus files with size limits.
package iohelper

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
)

// Standard size limits for different use cases
const (
	// DefaultMaxSize is for example pages and fixtures (10MB)
	DefaultMaxSize int64 = 10 * 1024 * 1024

	// AssetMaxSize is for shared scripts and stylesheets (16MB)
	AssetMaxSize int64 = 16 * 1024 * 1024
)

// ErrTooLarge is returned when a file exceeds the requested limit.
var ErrTooLarge = errors.New("iohelper: file exceeds size limit")

// ReadFile reads name from fsys, failing with ErrTooLarge instead of
// truncating when the file is bigger than maxSize. Truncated markup would
// silently change what gets audited.
func ReadFile(fsys fs.FS, name string, maxSize int64) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %s (limit %d bytes)", ErrTooLarge, name, maxSize)
	}
	return data, nil
}

// CloseOrLog closes c and logs any error. For use in defer where the close
// error cannot change the outcome.
func CloseOrLog(c io.Closer, logger *slog.Logger, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil && logger != nil {
		logger.Warn("close failed", slog.String("what", what), slog.String("error", err.Error()))
	}
}
