package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
)

// Cache stores downloaded artifacts under fixed filenames in one directory.
type Cache struct {
	dir string
}

// NewCache creates the cache directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact cache: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Path returns the local path of a cached artifact.
func (c *Cache) Path(name string) string {
	return filepath.Join(c.dir, name)
}

// Write replaces the cached artifact. Readers never see a partial file.
func (c *Cache) Write(name string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), c.Path(name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// Read returns the cached artifact.
func (c *Cache) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(c.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read cached %s: %w", name, err)
	}
	return data, nil
}
