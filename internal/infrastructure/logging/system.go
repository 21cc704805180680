package logging

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// Syslog defaults for subsystems that have not been configured.
const (
	DefaultSubsystem = "CCS"
	DefaultFacility  = 3 // daemon
	DefaultPriority  = 6 // info
)

// Syslog priority codes.
const (
	PriorityEmerg   = 0
	PriorityAlert   = 1
	PriorityCrit    = 2
	PriorityErr     = 3
	PriorityWarning = 4
	PriorityNotice  = 5
	PriorityInfo    = 6
	PriorityDebug   = 7
)

var (
	// ErrUnknownFacility is returned for a facility name outside the syslog set.
	ErrUnknownFacility = errors.New("logging: unknown facility")

	// ErrUnknownPriority is returned for a priority name outside the syslog set.
	ErrUnknownPriority = errors.New("logging: unknown priority")
)

// facilityCodes maps syslog facility names to their numeric codes.
var facilityCodes = map[string]int{
	"kern":     0,
	"user":     1,
	"mail":     2,
	"daemon":   3,
	"auth":     4,
	"syslog":   5,
	"lpr":      6,
	"news":     7,
	"uucp":     8,
	"cron":     9,
	"authpriv": 10,
	"ftp":      11,
	"local0":   16,
	"local1":   17,
	"local2":   18,
	"local3":   19,
	"local4":   20,
	"local5":   21,
	"local6":   22,
	"local7":   23,
}

// priorityCodes maps syslog priority names, including the common aliases,
// to their numeric codes.
var priorityCodes = map[string]int{
	"emerg":   PriorityEmerg,
	"panic":   PriorityEmerg,
	"alert":   PriorityAlert,
	"crit":    PriorityCrit,
	"err":     PriorityErr,
	"error":   PriorityErr,
	"warning": PriorityWarning,
	"warn":    PriorityWarning,
	"notice":  PriorityNotice,
	"info":    PriorityInfo,
	"debug":   PriorityDebug,
}

// System holds the syslog-style facility per subsystem and the global
// priority threshold. The priority drives the level of every Logger created
// from the same System.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type System struct {
	mu         sync.RWMutex
	facilities map[string]int
	priority   int
	level      *slog.LevelVar
}

// NewSystem creates a System whose threshold starts at priority.
func NewSystem(priority int) *System {
	s := &System{
		facilities: make(map[string]int),
		level:      new(slog.LevelVar),
	}
	s.SetPriority(priority)
	return s
}

// FacilityID translates a facility name (case-insensitive) to its code.
func (s *System) FacilityID(name string) (int, error) {
	if id, ok := facilityCodes[strings.ToLower(name)]; ok {
		return id, nil
	}
	return -1, ErrUnknownFacility
}

// PriorityID translates a priority name (case-insensitive) to its code.
func (s *System) PriorityID(name string) (int, error) {
	if id, ok := priorityCodes[strings.ToLower(name)]; ok {
		return id, nil
	}
	return -1, ErrUnknownPriority
}

// SetFacility sets the facility stamped on records from subsystem.
func (s *System) SetFacility(subsystem string, facility int) {
	s.mu.Lock()
	s.facilities[subsystem] = facility
	s.mu.Unlock()
}

// Facility returns the facility for subsystem, or DefaultFacility.
func (s *System) Facility(subsystem string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.facilities[subsystem]; ok {
		return id
	}
	return DefaultFacility
}

// SetPriority sets the global threshold. Out-of-range values are clamped.
func (s *System) SetPriority(priority int) {
	priority = min(max(priority, PriorityEmerg), PriorityDebug)

	s.mu.Lock()
	s.priority = priority
	s.mu.Unlock()

	s.level.Set(priorityLevel(priority))
}

// Priority returns the current threshold.
func (s *System) Priority() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.priority
}

// Leveler exposes the threshold as a slog level for handler options.
func (s *System) Leveler() slog.Leveler {
	return s.level
}

// FacilityName returns the canonical name of a facility code.
func FacilityName(id int) string {
	for name, code := range facilityCodes {
		if code == id {
			return name
		}
	}
	return ""
}

// PriorityName returns the canonical name of a priority code.
func PriorityName(id int) string {
	switch id {
	case PriorityEmerg:
		return "emerg"
	case PriorityAlert:
		return "alert"
	case PriorityCrit:
		return "crit"
	case PriorityErr:
		return "err"
	case PriorityWarning:
		return "warning"
	case PriorityNotice:
		return "notice"
	case PriorityInfo:
		return "info"
	case PriorityDebug:
		return "debug"
	default:
		return ""
	}
}

// priorityLevel maps a syslog priority onto the nearest slog level.
func priorityLevel(priority int) slog.Level {
	switch {
	case priority <= PriorityErr:
		return slog.LevelError
	case priority == PriorityWarning:
		return slog.LevelWarn
	case priority == PriorityDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// levelPriority maps a slog level onto a syslog priority.
func levelPriority(level slog.Level) int {
	switch {
	case level >= slog.LevelError:
		return PriorityErr
	case level >= slog.LevelWarn:
		return PriorityWarning
	case level >= slog.LevelInfo:
		return PriorityInfo
	default:
		return PriorityDebug
	}
}
