package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Entry file formats accepted by LoadEntries.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatCUE  = "cue"
)

// LoadResult contains the entries read from an import file.
type LoadResult struct {
	Entries map[string]string
	Format  string
}

// LoadError represents an error that occurred while reading an import file.
type LoadError struct {
	Code    string
	Message string
	File    string
	Line    int       // YAML/JSON line, 0 if unknown
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	switch {
	case e.Pos.IsValid():
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// FormatForPath maps a file extension to an entry format.
func FormatForPath(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".cue":
		return FormatCUE, true
	default:
		return "", false
	}
}

// LoadEntries reads a flat string-to-string mapping from a YAML, JSON or
// CUE file. Keys and values must be non-empty; values must be scalars
// (YAML/JSON) or concrete strings (CUE).
func LoadEntries(path string) (*LoadResult, error) {
	format, ok := FormatForPath(path)
	if !ok {
		return nil, &LoadError{Code: ErrCodeUnsupportedFormat, Message: fmt.Sprintf("unsupported file type %q (want .yaml, .yml, .json or .cue)", filepath.Ext(path))}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	var entries map[string]string
	if format == FormatCUE {
		entries, err = decodeCUE(path, data)
	} else {
		entries, err = decodeYAML(path, data)
	}
	if err != nil {
		return nil, err
	}
	return &LoadResult{Entries: entries, Format: format}, nil
}

// decodeYAML also handles JSON, which is a subset of YAML 1.2.
func decodeYAML(path string, data []byte) (map[string]string, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: "top level must be a mapping of keys to values", File: path, Line: root.Line}
	}

	entries := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode || keyNode.Value == "" {
			return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: "keys must be non-empty strings", File: path, Line: keyNode.Line}
		}
		if valNode.Kind != yaml.ScalarNode || valNode.Tag == "!!null" || valNode.Value == "" {
			return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("value of %q must be a non-empty scalar", keyNode.Value), File: path, Line: valNode.Line}
		}
		if _, dup := entries[keyNode.Value]; dup {
			return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("duplicate key %q", keyNode.Value), File: path, Line: keyNode.Line}
		}
		entries[keyNode.Value] = valNode.Value
	}
	return entries, nil
}

func decodeCUE(path string, data []byte) (map[string]string, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	iter, err := value.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("top level must be a struct: %v", err), Pos: value.Pos()}
	}

	entries := make(map[string]string)
	for iter.Next() {
		key := iter.Label()
		s, err := iter.Value().String()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("value of %q must be a concrete string", key), Pos: iter.Value().Pos()}
		}
		if key == "" || s == "" {
			return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("empty key or value for %q", key), Pos: iter.Value().Pos()}
		}
		entries[key] = s
	}
	return entries, nil
}
