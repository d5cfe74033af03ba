package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/fixture-feed/internal/domain/override"
)

// OverrideRepository loads the curated override table from JSON or YAML,
// chosen by file extension. A missing file is an empty table.
type OverrideRepository struct {
	path string
}

func NewOverrideRepository(path string) *OverrideRepository {
	return &OverrideRepository{path: strings.TrimSpace(path)}
}

func (r *OverrideRepository) Load(_ context.Context) (override.Table, error) {
	if r.path == "" {
		return override.Table{}, nil
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return override.Table{}, nil
	}
	if err != nil {
		return override.Table{}, fmt.Errorf("read overrides %s: %w", r.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return override.Table{}, nil
	}

	var table override.Table
	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".yaml", ".yml":
		table, err = override.DecodeYAML(data)
	default:
		table, err = override.DecodeJSON(data)
	}
	if err != nil {
		return override.Table{}, fmt.Errorf("decode overrides %s: %w", r.path, err)
	}
	return table, nil
}
