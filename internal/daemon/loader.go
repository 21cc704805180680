package daemon

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/nerrad567/ccsd/internal/clusterconf"
	"github.com/nerrad567/ccsd/internal/history"
	"github.com/nerrad567/ccsd/internal/infrastructure/logging"
	"github.com/nerrad567/ccsd/internal/infrastructure/metrics"
	"github.com/nerrad567/ccsd/internal/infrastructure/mqtt"
)

// DefaultMaxFileSize bounds cluster.conf when LoaderOptions leaves it unset.
const DefaultMaxFileSize = 4 << 20

// sideEffectTimeout bounds the history write after an install.
const sideEffectTimeout = 5 * time.Second

// Logger is the logging surface the daemon needs. *logging.Logger and
// *slog.Logger satisfy it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// HistoryRecorder persists installed versions.
type HistoryRecorder interface {
	Record(ctx context.Context, entry *history.Entry) error
}

// Publisher sends retained MQTT messages.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// Telemetry writes time-series points.
type Telemetry interface {
	WriteConfigLoad(cluster, node string, version int, checksum string)
	WriteQueryFailure(query, kind string)
}

// Metrics receives load and state gauges.
type Metrics interface {
	ObserveQuery(query, outcome string)
	ObserveLoad(result string, version int, d time.Duration)
	SetUpdateRequired(required bool, announced int)
	SetQuorate(quorate bool)
}

// LoaderOptions configures a Loader. NodeName is required. A nil State or
// LogSystem is replaced with a private one; nil outputs are skipped.
type LoaderOptions struct {
	State    *State
	NodeName string

	// MaxFileSize bounds cluster.conf (bytes). Defaults to DefaultMaxFileSize.
	MaxFileSize int64

	LogSystem clusterconf.LogSystem
	Policy    clusterconf.LoggingPolicy

	Logger    Logger
	History   HistoryRecorder
	Publisher Publisher
	Telemetry Telemetry
	Metrics   Metrics
}

// LoadResult describes a successful load.
type LoadResult struct {
	Snapshot Snapshot
	Logging  clusterconf.LoggingResult

	// Reloaded is true when the version equals the previous master's.
	Reloaded bool

	// PreviousCluster is the cluster name of the replaced master, empty on
	// the first load.
	PreviousCluster string
}

// Loader reads, validates and installs cluster.conf. Loads are serialised.
type Loader struct {
	opts     LoaderOptions
	log      Logger
	resolver *clusterconf.Resolver
	now      func() time.Time

	mu sync.Mutex
}

// NewLoader creates a Loader.
func NewLoader(opts LoaderOptions) *Loader {
	if opts.State == nil {
		opts.State = NewState()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.LogSystem == nil {
		opts.LogSystem = logging.NewSystem(logging.DefaultPriority)
	}

	l := &Loader{
		opts: opts,
		log:  opts.Logger,
		now:  time.Now,
	}
	if l.log == nil {
		l.log = nopLogger{}
	}
	l.resolver = clusterconf.NewResolver(clusterconf.ResolverOptions{
		Logger:   l.log,
		Observer: queryObserver{l},
	})
	return l
}

// State returns the state the loader installs into.
func (l *Loader) State() *State {
	return l.opts.State
}

// Load installs the document at path as the master.
//
// A document whose version equals the master's is reloaded in place so
// that logging changes take effect; a lower version fails with
// ErrStaleVersion and leaves the master untouched.
func (l *Loader) Load(ctx context.Context, path string) (*LoadResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := l.now()

	result, err := l.load(path)
	if err != nil {
		outcome := metrics.LoadError
		if errors.Is(err, ErrStaleVersion) {
			outcome = metrics.LoadStale
		}
		if l.opts.Metrics != nil {
			l.opts.Metrics.ObserveLoad(outcome, 0, l.now().Sub(start))
		}
		l.log.Error("cluster.conf load failed", "path", path, "error", err)
		return nil, err
	}

	l.afterInstall(ctx, result)

	if l.opts.Metrics != nil {
		l.opts.Metrics.ObserveLoad(metrics.LoadOK, result.Snapshot.Version, l.now().Sub(start))
	}
	l.log.Info("cluster.conf installed",
		"path", path,
		"cluster", result.Snapshot.ClusterName,
		"config_version", result.Snapshot.Version,
		"checksum", result.Snapshot.Checksum,
		"reloaded", result.Reloaded,
	)
	return result, nil
}

// load runs the steps that can fail a load, ending with the install.
func (l *Loader) load(path string) (*LoadResult, error) {
	data, err := readFile(path, l.opts.MaxFileSize)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)

	doc, err := clusterconf.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	version, err := l.resolver.ConfigVersion(doc)
	if err != nil {
		return nil, fmt.Errorf("reading config_version: %w", err)
	}
	name, err := l.resolver.ClusterName(doc)
	if err != nil {
		return nil, fmt.Errorf("reading cluster name: %w", err)
	}

	current, prev := l.opts.State.Master()
	if current != nil && version < prev.Version {
		return nil, fmt.Errorf("%w: %d < %d", ErrStaleVersion, version, prev.Version)
	}

	logResult, err := l.resolver.ApplyLogging(doc, l.opts.LogSystem, l.opts.Policy)
	if err != nil {
		// The document has already answered two queries; keep the current
		// logging configuration rather than refusing it.
		l.log.Warn("logging policy not applied", "error", err)
	}

	snapshot := Snapshot{
		Version:     version,
		ClusterName: name,
		Checksum:    hex.EncodeToString(sum[:]),
		SourcePath:  path,
		LoadedAt:    l.now().UTC(),
	}
	l.opts.State.Install(doc, snapshot)

	result := &LoadResult{
		Snapshot: snapshot,
		Logging:  logResult,
	}
	if current != nil {
		result.Reloaded = version == prev.Version
		result.PreviousCluster = prev.ClusterName
		if prev.ClusterName != name {
			l.log.Warn("cluster name changed", "previous", prev.ClusterName, "current", name)
		}
	}
	return result, nil
}

// afterInstall runs the side effects of a successful load. Failures are
// logged only.
func (l *Loader) afterInstall(ctx context.Context, result *LoadResult) {
	snap := result.Snapshot

	required, announced := l.opts.State.clearIfReached(snap.Version)
	if l.opts.Metrics != nil {
		l.opts.Metrics.SetUpdateRequired(required, announced)
	}

	if l.opts.History != nil {
		hctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		err := l.opts.History.Record(hctx, &history.Entry{
			NodeName:      l.opts.NodeName,
			ClusterName:   snap.ClusterName,
			ConfigVersion: snap.Version,
			SourcePath:    snap.SourcePath,
			Checksum:      snap.Checksum,
			LogFacility:   logName(result.Logging.FacilityName, result.Logging.FacilityDefault),
			LogPriority:   logName(result.Logging.PriorityName, result.Logging.PriorityDefault),
			LoadedAt:      snap.LoadedAt,
		})
		cancel()
		if err != nil {
			l.log.Warn("recording config history failed", "error", err)
		}
	}

	if err := l.announce(snap); err != nil {
		l.log.Warn("publishing config announcement failed", "error", err)
	}

	if l.opts.Telemetry != nil {
		l.opts.Telemetry.WriteConfigLoad(snap.ClusterName, l.opts.NodeName, snap.Version, snap.Checksum)
	}
}

// logName returns the attribute value that took effect, or empty when the
// default was used.
func logName(name string, defaulted bool) string {
	if defaulted {
		return ""
	}
	return name
}

// readFile reads at most limit bytes of path.
func readFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, limit)
	}
	return data, nil
}

// queryObserver fans query outcomes out to metrics, and failures of the
// required attributes out to telemetry. The logging attributes are optional
// and their absence is routine.
type queryObserver struct {
	l *Loader
}

func (o queryObserver) ObserveQuery(query, outcome string) {
	if o.l.opts.Metrics != nil {
		o.l.opts.Metrics.ObserveQuery(query, outcome)
	}
	if outcome == clusterconf.OutcomeOK || o.l.opts.Telemetry == nil {
		return
	}
	switch query {
	case clusterconf.ConfigVersionQuery, clusterconf.ClusterNameQuery:
		o.l.opts.Telemetry.WriteQueryFailure(query, outcome)
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// topicFor returns the announcement topic for this node, or false when the
// names cannot form a topic.
func (l *Loader) topicFor(cluster string) (string, bool) {
	if !mqtt.ValidSegment(cluster) || !mqtt.ValidSegment(l.opts.NodeName) {
		return "", false
	}
	return mqttTopics.NodeConfig(cluster, l.opts.NodeName), true
}

var mqttTopics mqtt.Topics
