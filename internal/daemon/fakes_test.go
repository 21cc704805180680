package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/ccsd/internal/clusterconf"
	"github.com/nerrad567/ccsd/internal/history"
)

const (
	testNode    = "node-a"
	testCluster = "alpha"
)

var errSideEffect = errors.New("side effect failed")

// conf renders a cluster.conf with the given version and logging attributes.
func conf(cluster string, version int, ccsAttrs string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<cluster name=%q config_version="%d">
  <ccs %s/>
  <clusternodes>
    <clusternode name="node-a" nodeid="1"/>
    <clusternode name="node-b" nodeid="2"/>
  </clusternodes>
</cluster>`, cluster, version, ccsAttrs)
}

// writeConf writes content to a cluster.conf in a temp dir and returns its path.
func writeConf(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "cluster.conf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing cluster.conf: %v", err)
	}
	return path
}

func parseDoc(t *testing.T, data string) *clusterconf.Document {
	t.Helper()
	doc, err := clusterconf.ParseBytes([]byte(data))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	return doc
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []history.Entry
	err     error
}

func (f *fakeHistory) Record(_ context.Context, e *history.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *e)
	return nil
}

type publishedMessage struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (f *fakePublisher) PublishRetained(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, publishedMessage{topic, payload})
	return nil
}

type configLoadPoint struct {
	cluster, node string
	version       int
	checksum      string
}

type fakeTelemetry struct {
	mu       sync.Mutex
	loads    []configLoadPoint
	failures []string
}

func (f *fakeTelemetry) WriteConfigLoad(cluster, node string, version int, checksum string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, configLoadPoint{cluster, node, version, checksum})
}

func (f *fakeTelemetry) WriteQueryFailure(query, kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, query+"="+kind)
}

type fakeMetrics struct {
	mu             sync.Mutex
	queries        []string
	loads          []string
	loadVersion    int
	updateRequired bool
	announced      int
	updateCalls    int
	quorate        bool
}

func (f *fakeMetrics) ObserveQuery(query, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query+"="+outcome)
}

func (f *fakeMetrics) ObserveLoad(result string, version int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, result)
	f.loadVersion = version
}

func (f *fakeMetrics) SetUpdateRequired(required bool, announced int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateRequired = required
	f.announced = announced
	f.updateCalls++
}

func (f *fakeMetrics) SetQuorate(quorate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quorate = quorate
}

// lastLoad returns the most recent ObserveLoad result.
func (f *fakeMetrics) lastLoad() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.loads) == 0 {
		return ""
	}
	return f.loads[len(f.loads)-1]
}

// recordingLogger captures messages by level.
type recordingLogger struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{messages: make(map[string][]string)}
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages[level] = append(l.messages[level], msg)
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.record("error", msg) }

func (l *recordingLogger) has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.messages[level] {
		if m == msg {
			return true
		}
	}
	return false
}
