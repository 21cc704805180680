package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestSystem_FacilityID(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"daemon", 3, false},
		{"DAEMON", 3, false},
		{"local0", 16, false},
		{"Local4", 20, false},
		{"local7", 23, false},
		{"kern", 0, false},
		{"local8", -1, true},
		{"", -1, true},
	}

	sys := NewSystem(PriorityInfo)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sys.FacilityID(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFacility) {
					t.Errorf("FacilityID(%q) error = %v, want ErrUnknownFacility", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FacilityID(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("FacilityID(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestSystem_PriorityID(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"emerg", PriorityEmerg, false},
		{"panic", PriorityEmerg, false},
		{"err", PriorityErr, false},
		{"ERROR", PriorityErr, false},
		{"warn", PriorityWarning, false},
		{"notice", PriorityNotice, false},
		{"Info", PriorityInfo, false},
		{"debug", PriorityDebug, false},
		{"verbose", -1, true},
	}

	sys := NewSystem(PriorityInfo)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sys.PriorityID(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPriority) {
					t.Errorf("PriorityID(%q) error = %v, want ErrUnknownPriority", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("PriorityID(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("PriorityID(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestSystem_Facility(t *testing.T) {
	sys := NewSystem(PriorityInfo)

	if got := sys.Facility("CCS"); got != DefaultFacility {
		t.Errorf("Facility(unset) = %d, want %d", got, DefaultFacility)
	}

	sys.SetFacility("CCS", 20)
	if got := sys.Facility("CCS"); got != 20 {
		t.Errorf("Facility(CCS) = %d, want 20", got)
	}
	if got := sys.Facility("OTHER"); got != DefaultFacility {
		t.Errorf("Facility(OTHER) = %d, want %d", got, DefaultFacility)
	}
}

func TestSystem_SetPriority(t *testing.T) {
	tests := []struct {
		priority  int
		want      int
		wantLevel slog.Level
	}{
		{PriorityEmerg, PriorityEmerg, slog.LevelError},
		{PriorityErr, PriorityErr, slog.LevelError},
		{PriorityWarning, PriorityWarning, slog.LevelWarn},
		{PriorityNotice, PriorityNotice, slog.LevelInfo},
		{PriorityInfo, PriorityInfo, slog.LevelInfo},
		{PriorityDebug, PriorityDebug, slog.LevelDebug},
		{-4, PriorityEmerg, slog.LevelError},
		{42, PriorityDebug, slog.LevelDebug},
	}

	for _, tt := range tests {
		sys := NewSystem(PriorityInfo)
		sys.SetPriority(tt.priority)

		if got := sys.Priority(); got != tt.want {
			t.Errorf("SetPriority(%d): Priority() = %d, want %d", tt.priority, got, tt.want)
		}
		if got := sys.Leveler().Level(); got != tt.wantLevel {
			t.Errorf("SetPriority(%d): level = %v, want %v", tt.priority, got, tt.wantLevel)
		}
	}
}

func TestNames(t *testing.T) {
	if got := FacilityName(20); got != "local4" {
		t.Errorf("FacilityName(20) = %q, want local4", got)
	}
	if got := FacilityName(99); got != "" {
		t.Errorf("FacilityName(99) = %q, want empty", got)
	}
	if got := PriorityName(PriorityErr); got != "err" {
		t.Errorf("PriorityName(err) = %q, want err", got)
	}
	if got := PriorityName(-1); got != "" {
		t.Errorf("PriorityName(-1) = %q, want empty", got)
	}
}
