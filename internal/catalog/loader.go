package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Loader fetches raw product records from an external source.
type Loader interface {
	Load(ctx context.Context) ([]RawProduct, error)
}

// Load fetches records through l and builds a catalog from them. A failing
// source yields an empty catalog so the service can still start.
func Load(ctx context.Context, l Loader, logger *slog.Logger) *Catalog {
	raws, err := l.Load(ctx)
	if err != nil {
		logger.Error("catalog load failed, starting with an empty catalog",
			slog.String("error", err.Error()),
		)
		return Empty()
	}
	c, _ := Build(raws, logger)
	return c
}

// FileLoader reads a JSON array of products from disk.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for the JSON file at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Load reads and decodes the file.
func (l *FileLoader) Load(_ context.Context) ([]RawProduct, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	raws, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", l.Path, err)
	}
	return raws, nil
}

// decode accepts either a bare JSON array or an object with a "products" array.
func decode(r io.Reader) ([]RawProduct, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var raws []RawProduct
	if err := json.Unmarshal(data, &raws); err == nil {
		return raws, nil
	}

	var wrapped struct {
		Products []RawProduct `json:"products"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if wrapped.Products == nil {
		return nil, fmt.Errorf("decode: no products array")
	}
	return wrapped.Products, nil
}
