package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const maxLineSize = 10 * 1024 * 1024

// ReadJSONL loads every non-blank line of path as an independent Record.
// A missing file yields ErrNotFound, a malformed line ErrParse.
func ReadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return DecodeJSONL(f, path)
}

// DecodeJSONL reads records from r. name is only used in error messages.
func DecodeJSONL(r io.Reader, name string) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var l recordLine
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrParse, name, lineNo, err)
		}
		records = append(records, l.record())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", ErrParse, name, err)
	}
	return records, nil
}

// CountLines returns the number of non-blank lines in path, or 0 when the
// file does not exist.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			n++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan %s: %w", path, err)
	}
	return n, nil
}

// EncodeJSONL writes one line per record without HTML escaping.
func EncodeJSONL(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, r := range records {
		if err := enc.Encode(r.line()); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return nil
}

// WriteJSONL replaces path with the given records. The previous content
// survives any failure.
func WriteJSONL(path string, records []Record) error {
	var buf bytes.Buffer
	if err := EncodeJSONL(&buf, records); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return WriteFileAtomic(path, buf.Bytes())
}

// AppendJSONL appends a single record to path, creating it if needed.
func AppendJSONL(path string, r Record) error {
	var buf bytes.Buffer
	if err := EncodeJSONL(&buf, []Record{r}); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrStorage, path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("%w: append %s: %w", ErrStorage, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrStorage, path, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir: %w", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", ErrStorage, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: write temp: %w", ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("%w: sync temp: %w", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: close temp: %w", ErrStorage, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("%w: chmod temp: %w", ErrStorage, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("%w: rename: %w", ErrStorage, err)
	}
	return nil
}
