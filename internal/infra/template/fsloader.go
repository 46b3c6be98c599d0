package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FSLoader reads template assets from a directory, one file per
// archetype named "<archetype>.html".
type FSLoader struct {
	dir string
}

func NewFSLoader(dir string) *FSLoader {
	return &FSLoader{dir: dir}
}

func (l *FSLoader) Load(name string) ([]byte, error) {
	if l.dir == "" {
		return nil, ErrAssetNotFound
	}
	raw, err := os.ReadFile(filepath.Join(l.dir, name+".html"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

var _ AssetLoader = (*FSLoader)(nil)
