package clusterconf

import (
	"errors"
	"strconv"
)

// Attribute paths within cluster.conf.
const (
	// ConfigVersionQuery selects the configuration version attribute.
	ConfigVersionQuery = "/cluster/@config_version"

	// ClusterNameQuery selects the cluster name attribute.
	ClusterNameQuery = "/cluster/@name"
)

// Observer outcomes reported for each evaluation.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid_format"
)

// Logger receives diagnostics emitted at failure sites.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// Observer is notified of every query outcome (e.g. for metrics).
type Observer interface {
	ObserveQuery(query, outcome string)
}

// ResolverOptions configures a Resolver. All fields are optional.
type ResolverOptions struct {
	Logger   Logger
	Observer Observer
}

// Resolver resolves typed attributes from cluster configuration documents.
//
// A Resolver holds no per-document state; each call opens and closes its own
// Context. It is safe for concurrent use.
type Resolver struct {
	log      Logger
	observer Observer

	// open creates the per-call context. Replaced in tests.
	open func(*Document) (*Context, error)
}

// NewResolver creates a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}
	return &Resolver{
		log:      log,
		observer: opts.Observer,
		open:     Open,
	}
}

// withContext runs fn with a context over doc, closing it on every return path.
func (r *Resolver) withContext(doc *Document, fn func(*Context) error) error {
	ctx, err := r.open(doc)
	if err != nil {
		r.log.Error("unable to create query context", "error", err)
		return err
	}
	defer ctx.Close()

	return fn(ctx)
}

// query evaluates a single attribute, logging and observing the outcome.
// Missing attributes are logged at debug level when optional is set.
func (r *Resolver) query(ctx *Context, query string, optional bool) (string, error) {
	value, err := ctx.Evaluate(query)
	if err != nil {
		kind := queryKind(err)
		r.observe(query, kind.String())
		if optional || kind == EmptyContent {
			r.log.Debug("attribute query failed", "query", query, "reason", kind.String())
		} else {
			r.log.Error("attribute query failed", "query", query, "reason", kind.String(), "error", err)
		}
		return "", err
	}
	r.observe(query, OutcomeOK)
	return value, nil
}

func (r *Resolver) observe(query, outcome string) {
	if r.observer != nil {
		r.observer.ObserveQuery(query, outcome)
	}
}

// ConfigVersion returns the value of /cluster/@config_version.
//
// The attribute must consist solely of ASCII decimal digits: signs, whitespace
// and any other character fail with ErrFormat. Values that overflow int also
// fail with ErrFormat rather than wrapping.
func (r *Resolver) ConfigVersion(doc *Document) (int, error) {
	var version int
	err := r.withContext(doc, func(ctx *Context) error {
		raw, err := r.query(ctx, ConfigVersionQuery, false)
		if err != nil {
			return err
		}

		n, err := parseVersion(raw)
		if err != nil {
			r.observe(ConfigVersionQuery, OutcomeInvalid)
			r.log.Error("config_version is not a valid integer", "value", raw)
			return err
		}
		version = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// ClusterName returns the value of /cluster/@name exactly as written.
// There is no default cluster name.
func (r *Resolver) ClusterName(doc *Document) (string, error) {
	var name string
	err := r.withContext(doc, func(ctx *Context) error {
		value, err := r.query(ctx, ClusterNameQuery, false)
		if err != nil {
			return err
		}
		name = value
		return nil
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// parseVersion converts a digits-only string to an int.
func parseVersion(raw string) (int, error) {
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, &FormatError{Query: ConfigVersionQuery, Value: raw, Reason: "not a decimal integer"}
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &FormatError{Query: ConfigVersionQuery, Value: raw, Reason: "out of range"}
		}
		return 0, &FormatError{Query: ConfigVersionQuery, Value: raw, Reason: err.Error()}
	}
	return n, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}
