package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"aproz_tours/internal/domain"
	"aproz_tours/web"
)

// FS serves site resources from a filesystem: the bundled copy or ASSETS_DIR.
type FS struct{ fsys fs.FS }

var _ domain.Fetcher = (*FS)(nil)

func New(fsys fs.FS) *FS { return &FS{fsys: fsys} }

// Bundled returns the assets compiled into the binary.
func Bundled() *FS { return New(web.Static()) }

// Dir reads assets from a directory on disk.
func Dir(dir string) (*FS, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("assets dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("assets dir %s is not a directory", dir)
	}
	return New(os.DirFS(dir)), nil
}

// FSys exposes the underlying filesystem for static file serving.
func (a *FS) FSys() fs.FS { return a.fsys }

func (a *FS) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := path.Clean(strings.TrimLeft(name, "/"))
	if !fs.ValidPath(clean) {
		return nil, fmt.Errorf("invalid resource name %q", name)
	}
	b, err := fs.ReadFile(a.fsys, clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", clean, domain.ErrNotFound)
	}
	return b, err
}
