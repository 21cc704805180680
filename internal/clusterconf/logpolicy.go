package clusterconf

// Logging attribute paths within cluster.conf.
const (
	LogFacilityQuery = "/cluster/ccs/@log_facility"
	LogLevelQuery    = "/cluster/ccs/@log_level"
)

// LogSystem is the logging subsystem a LoggingPolicy is applied to.
//
// Lookups return an error for unrecognised names; they never panic. The
// setters are fire-and-forget.
type LogSystem interface {
	FacilityID(name string) (int, error)
	PriorityID(name string) (int, error)
	SetFacility(subsystem string, facility int)
	SetPriority(priority int)
}

// LoggingPolicy holds the compiled-in defaults and the external debug override.
type LoggingPolicy struct {
	// Subsystem is the logging subsystem whose facility is configured (e.g. "CCS").
	Subsystem string

	// DefaultFacility is used when log_facility is absent or unrecognised.
	DefaultFacility int

	// DefaultPriority is used when log_level is absent or unrecognised.
	DefaultPriority int

	// Debug is set when debug mode was forced externally. The priority is
	// still resolved but not applied.
	Debug bool
}

// LoggingResult describes what ApplyLogging resolved and applied.
type LoggingResult struct {
	Facility        int
	FacilityName    string // attribute value, empty if absent
	FacilityDefault bool   // true when the default facility was used

	Priority        int
	PriorityName    string // attribute value, empty if absent
	PriorityDefault bool   // true when the default priority was used
	PriorityApplied bool   // false when Debug suppressed SetPriority
}

// ApplyLogging configures sys from the log_facility and log_level attributes.
//
// Missing, malformed or unrecognised attributes fall back to the policy
// defaults. The facility is always applied; the priority is applied unless
// policy.Debug is set. The only failure is ErrContextCreation.
func (r *Resolver) ApplyLogging(doc *Document, sys LogSystem, policy LoggingPolicy) (LoggingResult, error) {
	var result LoggingResult

	err := r.withContext(doc, func(ctx *Context) error {
		result.Facility, result.FacilityName, result.FacilityDefault =
			r.resolveLogID(ctx, LogFacilityQuery, sys.FacilityID, policy.DefaultFacility)
		sys.SetFacility(policy.Subsystem, result.Facility)
		r.log.Debug("log_facility applied",
			"subsystem", policy.Subsystem,
			"name", result.FacilityName,
			"facility", result.Facility,
			"default", result.FacilityDefault,
		)

		result.Priority, result.PriorityName, result.PriorityDefault =
			r.resolveLogID(ctx, LogLevelQuery, sys.PriorityID, policy.DefaultPriority)
		if !policy.Debug {
			sys.SetPriority(result.Priority)
			result.PriorityApplied = true
		}
		r.log.Debug("log_level resolved",
			"name", result.PriorityName,
			"priority", result.Priority,
			"default", result.PriorityDefault,
			"applied", result.PriorityApplied,
		)
		return nil
	})
	if err != nil {
		return LoggingResult{}, err
	}
	return result, nil
}

// resolveLogID evaluates an optional name attribute and translates it with
// lookup, returning fallback when either step fails.
func (r *Resolver) resolveLogID(ctx *Context, query string, lookup func(string) (int, error), fallback int) (id int, name string, defaulted bool) {
	name, err := r.query(ctx, query, true)
	if err != nil {
		return fallback, "", true
	}

	id, err = lookup(name)
	if err != nil || id < 0 {
		r.log.Debug("unrecognised logging name, using default", "query", query, "name", name, "default", fallback)
		return fallback, name, true
	}
	return id, name, false
}
