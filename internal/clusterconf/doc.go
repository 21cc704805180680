// Package clusterconf resolves validated attributes from a parsed cluster
// configuration document (cluster.conf).
//
// This package manages:
//   - Query contexts bound to one parsed document, released on every exit path
//   - Single-result XPath evaluation with typed failure classification
//   - The config_version and cluster name validators
//   - Mapping log_facility / log_level onto the logging subsystem with fallbacks
//
// # Failure Classification
//
// A query either yields exactly one non-empty attribute value or fails with a
// *QueryError whose Kind is one of NotFound, WrongCardinality, WrongNodeKind or
// EmptyContent. Callers check with errors.Is against the matching sentinel:
//
//	version, err := resolver.ConfigVersion(doc)
//	switch {
//	case errors.Is(err, clusterconf.ErrNotFound):
//	    // attribute missing
//	case errors.Is(err, clusterconf.ErrFormat):
//	    // not a plain decimal number
//	}
//
// An expression that fails to compile, yields a number, string or boolean
// instead of a node-set, or fails while being evaluated selects no attribute
// and is reported as NotFound.
//
// Only ApplyLogging substitutes defaults for failed lookups. Logging must always
// end up in a defined state, so absence there is never an error.
//
// # Thread Safety
//
// Documents are treated as read-only. Concurrent resolver calls over the same
// document are safe as long as nobody mutates the tree. A Context belongs to the
// call that opened it and must not be shared.
//
// # Usage
//
//	doc, err := clusterconf.ParseBytes(data)
//	if err != nil {
//	    return err
//	}
//	resolver := clusterconf.NewResolver(clusterconf.ResolverOptions{Logger: log})
//	name, err := resolver.ClusterName(doc)
package clusterconf
