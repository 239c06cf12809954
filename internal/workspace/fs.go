package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/sassdef/internal/cache"
	"github.com/jward/sassdef/internal/symbol"
)

var _ cache.Reader = (*FSReader)(nil)

// FSReader reads files from the local filesystem, confined to a root.
type FSReader struct {
	rootPath string
}

func NewFSReader(rootPath string) *FSReader {
	return &FSReader{rootPath: filepath.Clean(rootPath)}
}

func (r *FSReader) ReadText(ctx context.Context, f symbol.FileHandle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	absPath := f.Key()
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(r.rootPath, absPath)
	}

	rel, err := filepath.Rel(r.rootPath, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside project root", f.Path)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
