// Package manifest provides read/write access to the project manifest
// and its ordered binary-target list.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the conventional manifest name at the project root.
const FileName = "project.yaml"

var (
	// ErrNotFound indicates the manifest file does not exist.
	ErrNotFound = errors.New("manifest not found")

	// ErrParse indicates the manifest content is not valid.
	ErrParse = errors.New("manifest parse error")
)

// Bin is a single binary-target record. Path is slash-separated and
// relative to the manifest directory; it is unique within the list.
type Bin struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Document is the in-memory manifest. It wraps the raw YAML node tree
// so that comments, key order and unrelated sections survive a
// load/save round-trip; only the bins sequence is ever rewritten, and
// untouched records keep their original nodes.
type Document struct {
	root yaml.Node
}

// Find walks upward from startDir looking for the manifest file and
// returns its absolute path.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found searching upward from %s: %w", FileName, startDir, ErrNotFound)
		}
		dir = parent
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc.root); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, ErrParse)
	}

	return &doc, nil
}

// Save serializes the document back to path, overwriting it.
func (d *Document) Save(path string) error {
	// A manifest that was empty and never modified has no node tree.
	if d.root.Kind == 0 {
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return fmt.Errorf("failed to write manifest %s: %w", path, err)
		}
		return nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&d.root); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// Bins returns the binary-target records in document order.
func (d *Document) Bins() ([]Bin, error) {
	seq, err := d.binsSequence(false)
	if err != nil || seq == nil {
		return nil, err
	}

	bins := make([]Bin, 0, len(seq.Content))
	for _, item := range seq.Content {
		var b Bin
		if err := item.Decode(&b); err != nil {
			return nil, fmt.Errorf("bins entry: %v: %w", err, ErrParse)
		}
		bins = append(bins, b)
	}
	return bins, nil
}

// AddBin appends a binary-target record unless one with the same path
// is already registered (idempotent by path).
func (d *Document) AddBin(b Bin) error {
	if b.Name == "" {
		return fmt.Errorf("bin name cannot be empty")
	}
	if b.Path == "" {
		return fmt.Errorf("bin path cannot be empty")
	}

	seq, err := d.binsSequence(true)
	if err != nil {
		return err
	}

	for _, item := range seq.Content {
		var cur Bin
		if err := item.Decode(&cur); err != nil {
			return fmt.Errorf("bins entry: %v: %w", err, ErrParse)
		}
		if cur.Path == b.Path {
			return nil
		}
	}

	entry := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalar("name"), scalar(b.Name),
			scalar("path"), scalar(b.Path),
		},
	}
	seq.Content = append(seq.Content, entry)
	return nil
}

// RemoveBin removes the record whose path equals path. It reports
// whether a record was removed.
func (d *Document) RemoveBin(path string) bool {
	seq, err := d.binsSequence(false)
	if err != nil || seq == nil {
		return false
	}

	for i, item := range seq.Content {
		var cur Bin
		if err := item.Decode(&cur); err != nil {
			continue
		}
		if cur.Path == path {
			seq.Content = append(seq.Content[:i], seq.Content[i+1:]...)
			return true
		}
	}
	return false
}

// binsSequence returns the sequence node holding the bins records,
// creating it when create is set. A nil node without error means the
// manifest has no bins key yet.
func (d *Document) binsSequence(create bool) (*yaml.Node, error) {
	m := d.mapping()
	if m.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("manifest root must be a mapping: %w", ErrParse)
	}

	if v := findKey(m, "bins"); v != nil {
		// "bins:" with no items decodes as a null scalar.
		if v.Kind == yaml.ScalarNode && v.Tag == "!!null" {
			*v = yaml.Node{Kind: yaml.SequenceNode}
			return v, nil
		}
		if v.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("bins must be a sequence: %w", ErrParse)
		}
		return v, nil
	}

	if !create {
		return nil, nil
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	m.Content = append(m.Content, scalar("bins"), seq)
	return seq, nil
}

// mapping returns the root mapping node, initializing the node tree for
// a manifest that was empty on disk.
func (d *Document) mapping() *yaml.Node {
	if d.root.Kind == 0 {
		d.root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if d.root.Kind == yaml.DocumentNode && len(d.root.Content) > 0 {
		return d.root.Content[0]
	}
	return &d.root
}

func findKey(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
