package clusterconf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
)

// Document is a parsed cluster configuration tree.
//
// The root element is expected to be <cluster>. The package only reads from
// the tree; ownership stays with the caller.
type Document struct {
	root *xmlquery.Node
}

// NewDocument wraps an already-parsed xmlquery tree.
func NewDocument(root *xmlquery.Node) *Document {
	return &Document{root: root}
}

// Parse reads and parses an XML cluster configuration.
func Parse(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing cluster configuration: %w", err)
	}
	return NewDocument(root), nil
}

// ParseBytes parses an XML cluster configuration held in memory.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// Root returns the underlying document node.
func (d *Document) Root() *xmlquery.Node {
	if d == nil {
		return nil
	}
	return d.root
}
