package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/kiteflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a graph source document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from a file extension.
// Anything that is not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseError reports a graph source that could not be decoded.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse flow (%s): %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser is responsible for converting raw bytes into FlowData.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a JSON graph source document.
func (p *Parser) Parse(data []byte) (*domain.FlowData, error) {
	return p.ParseFormat(data, FormatJSON)
}

// ParseFormat decodes a graph source in the given format and checks the node tags.
func (p *Parser) ParseFormat(data []byte, format Format) (*domain.FlowData, error) {
	var flow domain.FlowData

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &flow); err != nil {
			return nil, &ParseError{Format: format, Err: err}
		}
	default:
		format = FormatJSON
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, &ParseError{Format: format, Err: errors.New("empty document")}
		}
		if err := json.Unmarshal(data, &flow); err != nil {
			return nil, &ParseError{Format: format, Err: err}
		}
	}

	for i, node := range flow.Nodes {
		if node.ID == "" {
			return nil, &ParseError{Format: format, Err: fmt.Errorf("node at index %d missing id", i)}
		}
		if !node.Type.Valid() {
			return nil, &ParseError{Format: format, Err: fmt.Errorf("node %q: %w %q", node.ID, domain.ErrUnknownNodeType, node.Type)}
		}
	}
	return &flow, nil
}
