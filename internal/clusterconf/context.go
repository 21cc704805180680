package clusterconf

import (
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Context evaluates path expressions against one Document.
//
// A Context is created per logical operation and closed before the operation
// returns. It is not safe for concurrent use.
type Context struct {
	doc    *Document
	nav    *xmlquery.NodeNavigator
	exprs  map[string]*xpath.Expr
	closed bool

	// release runs once on the first Close.
	release func()
}

// Open creates a query context over doc.
//
// It fails with ErrContextCreation if doc is nil or has no root node. The
// document content is not inspected.
func Open(doc *Document) (*Context, error) {
	if doc == nil || doc.root == nil {
		return nil, ErrContextCreation
	}

	return &Context{
		doc:   doc,
		nav:   xmlquery.CreateXPathNavigator(doc.root),
		exprs: make(map[string]*xpath.Expr),
	}, nil
}

// Close releases the context. Calling Close more than once is a no-op.
func (c *Context) Close() {
	if c == nil || c.closed {
		return
	}
	c.closed = true
	c.exprs = nil
	c.nav = nil
	if c.release != nil {
		c.release()
	}
}

// compile returns the compiled form of expr, caching it for the context lifetime.
func (c *Context) compile(expr string) (*xpath.Expr, error) {
	if compiled, ok := c.exprs[expr]; ok {
		return compiled, nil
	}
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, err
	}
	c.exprs[expr] = compiled
	return compiled, nil
}
