package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/kiteflow/pkg/domain"
)

// Loader implements ports.FlowLoader over a file on disk.
// Files ending in .yaml or .yml are reported as YAML, anything else as JSON.
type Loader struct {
	Path string
}

// NewLoader creates a Loader for path.
func NewLoader(path string) *Loader {
	return &Loader{Path: path}
}

// LoadFlow reads the whole file.
func (l *Loader) LoadFlow(ctx context.Context) ([]byte, string, error) {
	data, err := os.ReadFile(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrFlowNotFound, l.Path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read flow file: %w", err)
	}
	return data, l.Format(), nil
}

// Format returns the document format inferred from the file extension.
func (l *Loader) Format() string {
	switch strings.ToLower(filepath.Ext(l.Path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// Name returns the file name without extension, used as a flow label.
func (l *Loader) Name() string {
	base := filepath.Base(l.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
