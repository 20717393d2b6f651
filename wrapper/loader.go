package wrapper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DocumentLoader parses a finished-config artifact into a nested mapping.
// The resolver only ever relies on plain mapping access, so any loader that
// produces the same mapping is interchangeable; richer loaders may expose
// extra diagnostics on the side.
type DocumentLoader interface {
	Load(path string) (map[string]any, error)
}

// PlainLoader parses the artifact with a straight yaml.Unmarshal.
type PlainLoader struct{}

func (PlainLoader) Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config artifact: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ArtifactParseError{Path: path, Err: err}
	}
	return doc, nil
}

// ProvenanceLoader parses through the yaml.v3 node tree, producing the same
// mapping as PlainLoader while recording the source line of every top-level
// section. The extra metadata is for diagnostics only; resolution results
// never depend on it.
type ProvenanceLoader struct {
	// Lines maps top-level keys of the last loaded document to their
	// 1-based source lines.
	Lines map[string]int
}

// NewProvenanceLoader returns a loader that records section provenance.
func NewProvenanceLoader() *ProvenanceLoader {
	return &ProvenanceLoader{Lines: make(map[string]int)}
}

func (l *ProvenanceLoader) Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config artifact: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ArtifactParseError{Path: path, Err: err}
	}

	var doc map[string]any
	if err := root.Decode(&doc); err != nil {
		return nil, &ArtifactParseError{Path: path, Err: err}
	}

	l.Lines = make(map[string]int)
	if len(root.Content) > 0 && root.Content[0].Kind == yaml.MappingNode {
		mapping := root.Content[0]
		// Mapping content alternates key node, value node.
		for i := 0; i+1 < len(mapping.Content); i += 2 {
			l.Lines[mapping.Content[i].Value] = mapping.Content[i].Line
		}
	}
	return doc, nil
}
