package clusterconf

import (
	"errors"
	"testing"
)

// Test constants to avoid magic strings.
const (
	testClusterName = "mycluster"

	sampleConf = `<?xml version="1.0"?>
<cluster name="mycluster" config_version="7">
  <ccs log_facility="local4" log_level="debug"/>
  <clusternodes>
    <clusternode name="node-a" nodeid="1"/>
    <clusternode name="node-b" nodeid="2"/>
  </clusternodes>
  <fence_daemon post_fail_delay=""/>
  <totem>token timeout</totem>
  <!-- comment -->
</cluster>`
)

// mustParse parses an XML document or fails the test.
func mustParse(t *testing.T, data string) *Document {
	t.Helper()

	doc, err := ParseBytes([]byte(data))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	return doc
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr bool
	}{
		{"nil document", nil, true},
		{"document without root", NewDocument(nil), true},
		{"parsed document", mustParse(t, sampleConf), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := Open(tt.doc)
			if tt.wantErr {
				if !errors.Is(err, ErrContextCreation) {
					t.Fatalf("Open() error = %v, want ErrContextCreation", err)
				}
				if ctx != nil {
					t.Error("Open() returned a context on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			ctx.Close()
		})
	}
}

func TestContext_CloseIdempotent(t *testing.T) {
	ctx, err := Open(mustParse(t, sampleConf))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	released := 0
	ctx.release = func() { released++ }

	ctx.Close()
	ctx.Close()

	if released != 1 {
		t.Errorf("release called %d times, want 1", released)
	}

	if _, err := ctx.Evaluate(ClusterNameQuery); !errors.Is(err, ErrContextClosed) {
		t.Errorf("Evaluate() after Close error = %v, want ErrContextClosed", err)
	}

	var nilCtx *Context
	nilCtx.Close() // must not panic
}

func TestContext_Evaluate(t *testing.T) {
	doc := mustParse(t, sampleConf)

	tests := []struct {
		name     string
		query    string
		want     string
		wantKind QueryErrorKind
		wantErr  error
	}{
		{
			name:  "single attribute",
			query: "/cluster/@name",
			want:  testClusterName,
		},
		{
			name:  "nested attribute",
			query: "/cluster/ccs/@log_facility",
			want:  "local4",
		},
		{
			name:  "predicate selects one node",
			query: "/cluster/clusternodes/clusternode[@nodeid='2']/@name",
			want:  "node-b",
		},
		{
			name:     "missing attribute",
			query:    "/cluster/@missing",
			wantKind: NotFound,
			wantErr:  ErrNotFound,
		},
		{
			name:     "missing element",
			query:    "/cluster/cman/@expected_votes",
			wantKind: NotFound,
			wantErr:  ErrNotFound,
		},
		{
			name:     "multiple matches",
			query:    "/cluster/clusternodes/clusternode/@name",
			wantKind: WrongCardinality,
			wantErr:  ErrWrongCardinality,
		},
		{
			name:     "element node",
			query:    "/cluster/ccs",
			wantKind: WrongNodeKind,
			wantErr:  ErrWrongNodeKind,
		},
		{
			name:     "text node",
			query:    "/cluster/totem/text()",
			wantKind: WrongNodeKind,
			wantErr:  ErrWrongNodeKind,
		},
		{
			name:     "empty attribute",
			query:    "/cluster/fence_daemon/@post_fail_delay",
			wantKind: EmptyContent,
			wantErr:  ErrEmptyContent,
		},
		{
			name:     "invalid expression",
			query:    "/cluster/@[",
			wantKind: NotFound,
			wantErr:  ErrNotFound,
		},
		{
			name:     "non node-set result",
			query:    "count(/cluster)",
			wantKind: NotFound,
			wantErr:  ErrNotFound,
		},
		{
			name:     "number conversion fails during evaluation",
			query:    "/cluster[@name=1]/@name",
			wantKind: NotFound,
			wantErr:  ErrNotFound,
		},
		{
			name:     "function argument out of range",
			query:    "substring(1,2,3)",
			wantKind: NotFound,
			wantErr:  ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := Open(doc)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer ctx.Close()

			got, err := ctx.Evaluate(tt.query)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Evaluate(%q) error = %v", tt.query, err)
				}
				if got != tt.want {
					t.Errorf("Evaluate(%q) = %q, want %q", tt.query, got, tt.want)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Evaluate(%q) error = %v, want %v", tt.query, err, tt.wantErr)
			}
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("Evaluate(%q) error type = %T, want *QueryError", tt.query, err)
			}
			if qe.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", qe.Kind, tt.wantKind)
			}
			if got != "" {
				t.Errorf("Evaluate(%q) returned %q alongside error", tt.query, got)
			}
		})
	}
}

func TestContext_EvaluateReusesCompiledExpression(t *testing.T) {
	ctx, err := Open(mustParse(t, sampleConf))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer ctx.Close()

	for i := 0; i < 3; i++ {
		got, err := ctx.Evaluate(ClusterNameQuery)
		if err != nil {
			t.Fatalf("Evaluate() #%d error = %v", i, err)
		}
		if got != testClusterName {
			t.Errorf("Evaluate() #%d = %q, want %q", i, got, testClusterName)
		}
	}

	if len(ctx.exprs) != 1 {
		t.Errorf("compiled expressions = %d, want 1", len(ctx.exprs))
	}
}

func TestQueryError_KindsAreDistinct(t *testing.T) {
	kinds := []QueryErrorKind{NotFound, WrongCardinality, WrongNodeKind, EmptyContent}
	sentinels := []error{ErrNotFound, ErrWrongCardinality, ErrWrongNodeKind, ErrEmptyContent}

	for i, kind := range kinds {
		err := &QueryError{Kind: kind, Query: "/x"}
		for j, sentinel := range sentinels {
			if got := errors.Is(err, sentinel); got != (i == j) {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", kind, sentinel, got, i == j)
			}
		}
		if errors.Is(err, ErrFormat) {
			t.Errorf("%v matched ErrFormat", kind)
		}
	}
}

func TestIsCardinality(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&QueryError{Kind: NotFound}, true},
		{&QueryError{Kind: WrongCardinality, Matches: 2}, true},
		{&QueryError{Kind: WrongNodeKind}, false},
		{&QueryError{Kind: EmptyContent}, false},
		{ErrFormat, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsCardinality(tt.err); got != tt.want {
			t.Errorf("IsCardinality(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
