// Package filex holds small file helpers for exports and attachments.
package filex

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxAttachmentSize bounds images read from disk for inline upload.
const MaxAttachmentSize = 8 << 20

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// CreateFile creates (or truncates) path, making parent directories first.
func CreateFile(path string) (*os.File, error) {
	if _, err := EnsureParentDir(path); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
}

// ReadImage loads an image attachment and sniffs its MIME type.
func ReadImage(path string) (string, []byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxAttachmentSize {
		return "", nil, fmt.Errorf("%s is larger than %d bytes", path, MaxAttachmentSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", nil, fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return mime, data, nil
}
