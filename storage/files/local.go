// Package files implements guide document storage on the local filesystem.
package files

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core/guide"
)

type localStore struct {
	root string
}

var _ guide.FileStore = (*localStore)(nil) // interface compliance check

// NewLocalStore stores files under root, creating it if needed. Stored names
// are prefixed with a UUID so uploads never collide.
func NewLocalStore(root string) (*localStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating media root")
	}
	return &localStore{root: root}, nil
}

func (st *localStore) Save(ctx context.Context, name string, src io.Reader) (string, int64, error) {
	storedName := uuid.New().String() + "_" + filepath.Base(name)
	f, err := os.Create(filepath.Join(st.root, storedName))
	if err != nil {
		return "", 0, errors.Wrap(err, "creating file")
	}
	defer func() { _ = f.Close() }()

	size, err := io.Copy(f, src)
	if err != nil {
		_ = os.Remove(f.Name())
		return "", 0, errors.Wrap(err, "writing file")
	}
	return storedName, size, nil
}

func (st *localStore) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(st.root, filepath.Base(storedName)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, guide.ErrNotFound
		}
		return nil, errors.Wrap(err, "opening file")
	}
	return f, nil
}

func (st *localStore) Delete(ctx context.Context, storedName string) error {
	err := os.Remove(filepath.Join(st.root, filepath.Base(storedName)))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}
