// Package snapshot persists raw API documents to fixed paths.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Indent is the indentation used for every snapshot file.
const Indent = "    "

// ErrInvalidDocument is returned when the document is not valid JSON.
var ErrInvalidDocument = errors.New("invalid JSON document")

// Writer overwrites snapshot files wholesale.
// Each write lands in a temporary file first and is renamed over the target,
// so a failed write never leaves a truncated snapshot behind.
type Writer struct {
	fileMode os.FileMode
	dirMode  os.FileMode
}

// NewWriter creates a snapshot writer.
func NewWriter() *Writer {
	return &Writer{
		fileMode: 0644,
		dirMode:  0755,
	}
}

// Write pretty-prints raw and stores it at path.
// Key order and number literals are kept exactly as received.
func (w *Writer) Write(path string, raw json.RawMessage) error {
	data, err := Format(raw)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, w.dirMode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, w.fileMode); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Format returns the on-disk form of raw.
func Format(raw json.RawMessage) ([]byte, error) {
	if !json.Valid(raw) {
		return nil, ErrInvalidDocument
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", Indent); err != nil {
		return nil, fmt.Errorf("failed to indent document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
