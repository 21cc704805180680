package clusterconf

import (
	"errors"
	"fmt"
)

// Sentinel errors for cluster configuration resolution.
//
// QueryError and FormatError values match these via errors.Is:
//
//	if errors.Is(err, clusterconf.ErrWrongCardinality) {
//	    // the attribute is ambiguous
//	}
var (
	// ErrContextCreation is returned when a query context cannot be established.
	ErrContextCreation = errors.New("clusterconf: unable to create query context")

	// ErrContextClosed is returned when evaluating on a closed context.
	ErrContextClosed = errors.New("clusterconf: query context closed")

	// ErrNotFound indicates the query matched nothing.
	ErrNotFound = errors.New("clusterconf: no matching attribute")

	// ErrWrongCardinality indicates the query matched more than one node.
	ErrWrongCardinality = errors.New("clusterconf: query matched more than one node")

	// ErrWrongNodeKind indicates the matched node is not an attribute.
	ErrWrongNodeKind = errors.New("clusterconf: matched node is not an attribute")

	// ErrEmptyContent indicates the matched attribute has no value.
	ErrEmptyContent = errors.New("clusterconf: attribute has no content")

	// ErrFormat indicates a resolved value violates its format contract.
	ErrFormat = errors.New("clusterconf: invalid attribute format")
)

// QueryErrorKind classifies why a single-result query failed.
type QueryErrorKind int

// Query failure kinds.
const (
	NotFound QueryErrorKind = iota + 1
	WrongCardinality
	WrongNodeKind
	EmptyContent
)

// String returns the kind name used in logs and metric labels.
func (k QueryErrorKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case WrongCardinality:
		return "wrong_cardinality"
	case WrongNodeKind:
		return "wrong_node_kind"
	case EmptyContent:
		return "empty_content"
	default:
		return "unknown"
	}
}

func (k QueryErrorKind) sentinel() error {
	switch k {
	case NotFound:
		return ErrNotFound
	case WrongCardinality:
		return ErrWrongCardinality
	case WrongNodeKind:
		return ErrWrongNodeKind
	case EmptyContent:
		return ErrEmptyContent
	default:
		return nil
	}
}

// QueryError is returned by Context.Evaluate when a query does not resolve to
// exactly one non-empty attribute value.
type QueryError struct {
	Kind  QueryErrorKind
	Query string

	// Matches is the node-set size for cardinality failures.
	Matches int

	// Err is the underlying cause, e.g. an XPath compile error.
	Err error
}

func (e *QueryError) Error() string {
	msg := fmt.Sprintf("query %q: %s", e.Query, e.Kind.sentinel())
	if e.Kind == WrongCardinality {
		msg += fmt.Sprintf(" (%d matches)", e.Matches)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the sentinel for this error's kind.
func (e *QueryError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// FormatError is returned when a resolved attribute value fails validation.
type FormatError struct {
	Query  string
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("query %q: value %q: %s", e.Query, e.Value, e.Reason)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// IsCardinality reports whether err is a query cardinality failure: the query
// matched either no node or more than one.
func IsCardinality(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrWrongCardinality)
}

// queryKind extracts the failure kind from err, or 0 if err is not a QueryError.
func queryKind(err error) QueryErrorKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return 0
}
