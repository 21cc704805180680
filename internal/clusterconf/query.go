package clusterconf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xpath"
)

// Evaluate runs query against the context's document and returns the text of
// the single attribute node it selects.
//
// Exactly one match is required; the first of several matches is never used.
// Failures are returned as *QueryError:
//   - NotFound: invalid expression, non node-set result, evaluation failure,
//     or zero matches
//   - WrongCardinality: two or more matches
//   - WrongNodeKind: the match is an element, text, comment, etc.
//   - EmptyContent: the attribute value is empty
//
// The returned string does not share memory with the document.
func (c *Context) Evaluate(query string) (string, error) {
	if c == nil || c.closed {
		return "", ErrContextClosed
	}

	expr, err := c.compile(query)
	if err != nil {
		return "", &QueryError{Kind: NotFound, Query: query, Err: err}
	}

	match, count, err := selectNodes(c.nav.Copy(), expr)
	if err != nil {
		return "", &QueryError{Kind: NotFound, Query: query, Err: err}
	}

	switch {
	case count == 0:
		return "", &QueryError{Kind: NotFound, Query: query}
	case count > 1:
		return "", &QueryError{Kind: WrongCardinality, Query: query, Matches: count}
	}

	if match.NodeType() != xpath.AttributeNode {
		return "", &QueryError{Kind: WrongNodeKind, Query: query, Matches: 1}
	}

	value := match.Value()
	if value == "" {
		return "", &QueryError{Kind: EmptyContent, Query: query, Matches: 1}
	}

	return strings.Clone(value), nil
}

// errNotNodeSet is returned by selectNodes for expressions that yield a
// number, string or boolean.
var errNotNodeSet = errors.New("result is not a node-set")

// selectNodes runs expr and returns a copy of the first selected node and the
// number of matches. The xpath package panics on some runtime errors (a
// failed number conversion in a predicate, out of range substring arguments);
// those are returned as errors.
func selectNodes(nav xpath.NodeNavigator, expr *xpath.Expr) (match xpath.NodeNavigator, count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			match, count, err = nil, 0, fmt.Errorf("evaluating: %v", r)
		}
	}()

	iter, ok := expr.Evaluate(nav).(*xpath.NodeIterator)
	if !ok {
		return nil, 0, errNotNodeSet
	}

	for iter.MoveNext() {
		count++
		if count == 1 {
			// The iterator reuses its navigator, so keep a copy.
			match = iter.Current().Copy()
		}
	}
	return match, count, nil
}
