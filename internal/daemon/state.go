package daemon

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/ccsd/internal/clusterconf"
)

// Snapshot describes the installed master document.
type Snapshot struct {
	Version     int
	ClusterName string
	Checksum    string
	SourcePath  string
	LoadedAt    time.Time
}

// State is the daemon's shared state.
//
// The zero value is ready to use: not quorate, no update required and no
// master installed.
type State struct {
	quorate atomic.Bool

	updateMu       sync.Mutex
	updateRequired bool
	announced      int

	masterMu sync.RWMutex
	master   *clusterconf.Document
	snapshot Snapshot
}

// NewState returns an empty State.
func NewState() *State {
	return &State{}
}

// SetQuorate records whether the node is part of a quorate partition.
func (s *State) SetQuorate(quorate bool) {
	s.quorate.Store(quorate)
}

// Quorate reports the last value passed to SetQuorate.
func (s *State) Quorate() bool {
	return s.quorate.Load()
}

// MarkUpdateRequired records that version was announced by a peer. The
// announced version only ever rises; it returns false when version is not
// higher than one already recorded.
func (s *State) MarkUpdateRequired(version int) bool {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	if s.updateRequired && version <= s.announced {
		return false
	}
	s.updateRequired = true
	s.announced = max(s.announced, version)
	return true
}

// UpdateRequired returns the flag and the highest announced version.
func (s *State) UpdateRequired() (bool, int) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()
	return s.updateRequired, s.announced
}

// ClearUpdateRequired resets the flag once the node caught up. The
// announced version is kept for reporting.
func (s *State) ClearUpdateRequired() {
	s.updateMu.Lock()
	s.updateRequired = false
	s.updateMu.Unlock()
}

// clearIfReached clears the flag when version reaches the announced one and
// reports the resulting flag.
func (s *State) clearIfReached(version int) (bool, int) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	if s.updateRequired && version >= s.announced {
		s.updateRequired = false
	}
	return s.updateRequired, s.announced
}

// Master returns the installed document and its snapshot. The document is
// nil before the first install.
func (s *State) Master() (*clusterconf.Document, Snapshot) {
	s.masterMu.RLock()
	defer s.masterMu.RUnlock()
	return s.master, s.snapshot
}

// Install replaces the master document.
func (s *State) Install(doc *clusterconf.Document, snapshot Snapshot) {
	s.masterMu.Lock()
	s.master = doc
	s.snapshot = snapshot
	s.masterMu.Unlock()
}
