// Package filex contains small filesystem helpers used by the client.
package filex

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// EnsureSubDir creates (if needed) and returns a subdirectory of the current
// working directory.
func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// FileInfo describes a file read from disk for attachment ingestion.
type FileInfo struct {
	Name     string
	Data     []byte
	MimeType string
	ModTime  time.Time
}

// LoadFile reads a file and sniffs its MIME type from the leading bytes.
func LoadFile(path string) (*FileInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return &FileInfo{
		Name:     filepath.Base(path),
		Data:     data,
		MimeType: http.DetectContentType(data),
		ModTime:  st.ModTime(),
	}, nil
}
