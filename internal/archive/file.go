package archive

import (
	"context"
	"os"
	"path/filepath"

	dErrors "meridian/pkg/domain-errors"
)

// FileSink writes exported audit files into a local directory. Used by the
// archive CLI when no bucket is configured.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (f *FileSink) Deliver(_ context.Context, filename string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not create archive directory")
	}
	if err := os.WriteFile(filepath.Join(f.dir, filename), data, 0o600); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not write archive file")
	}
	return nil
}
