package manifest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/inherit/internal/core/domain"
	"go.trai.ch/inherit/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestWriter = (*Writer)(nil)

// Writer implements ports.ManifestWriter.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write persists every manifest whose document differs from the bytes it was read from.
// A manifest that changed on disk since it was read is not replaced.
// All manifests are attempted. Failures are joined into the returned error.
func (w *Writer) Write(manifests []*domain.Manifest) (ports.WriteResult, error) {
	var result ports.WriteResult
	var errs []error

	for _, m := range manifests {
		data := m.Document.Bytes()
		if bytes.Equal(data, m.Source) {
			result.Unchanged = append(result.Unchanged, m.Path)
			continue
		}

		if err := checkUnmodified(m); err != nil {
			errs = append(errs, zerr.With(zerr.Wrap(err, domain.ErrWriteFailed.Error()), "path", m.Path))
			continue
		}

		if err := atomicWriteFile(m.Path, data); err != nil {
			errs = append(errs, zerr.With(zerr.Wrap(err, domain.ErrWriteFailed.Error()), "path", m.Path))
			continue
		}

		m.Source = data
		m.SourceHash = xxhash.Sum64(data)
		result.Written = append(result.Written, m.Path)
	}

	return result, errors.Join(errs...)
}

// checkUnmodified compares the file on disk with the hash taken at read time.
func checkUnmodified(m *domain.Manifest) error {
	current, err := os.ReadFile(m.Path)
	if err != nil {
		return zerr.Wrap(err, "failed to read manifest before replacing it")
	}
	if xxhash.Sum64(current) != m.SourceHash {
		return domain.ErrManifestModified
	}
	return nil
}

// atomicWriteFile replaces path through a temporary file in the same directory,
// keeping the permissions of the file it replaces.
func atomicWriteFile(path string, data []byte) error {
	perm := os.FileMode(domain.FilePerm)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to write temporary file")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to close temporary file")
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return zerr.Wrap(err, "failed to set file permissions")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return zerr.Wrap(err, "failed to replace manifest")
	}
	return nil
}
