package output

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/grammarkit/grammarc/internal/ctxlog"
	"github.com/grammarkit/grammarc/internal/diag"
)

// Writer persists documents atomically: the serialized bytes go to a
// temporary file in the destination directory first, then a rename swaps it
// into place. An interrupted or failed run therefore never leaves a
// half-written definition at the destination path.
type Writer struct {
	fs afero.Fs
}

// NewWriter creates a Writer over the given filesystem.
func NewWriter(fsys afero.Fs) *Writer {
	return &Writer{fs: fsys}
}

// Write serializes the document and installs it at path, overwriting any
// existing file. On any failure the destination keeps its pre-run content.
func (w *Writer) Write(ctx context.Context, doc *Document, path string) error {
	logger := ctxlog.FromContext(ctx)

	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding syntax definition: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(w.fs, dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return &diag.IOError{Op: "creating temporary file in", Path: dir, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		w.fs.Remove(tmpName)
		return &diag.IOError{Op: "writing", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		w.fs.Remove(tmpName)
		return &diag.IOError{Op: "closing", Path: tmpName, Err: err}
	}

	if err := w.fs.Rename(tmpName, path); err != nil {
		w.fs.Remove(tmpName)
		return &diag.IOError{Op: "replacing", Path: path, Err: err}
	}

	logger.Debug("Output written atomically.", "path", path, "bytes", len(data))
	return nil
}
