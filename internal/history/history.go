package history

import (
	"context"
	"fmt"
	"time"
)

// Entry is one installed cluster.conf version.
type Entry struct {
	// ID is assigned by Record when empty.
	ID string `json:"id"`

	NodeName      string `json:"node_name"`
	ClusterName   string `json:"cluster_name"`
	ConfigVersion int    `json:"config_version"`

	// SourcePath is the file the document was read from.
	SourcePath string `json:"source_path"`

	// Checksum is the hex sha256 of the file contents.
	Checksum string `json:"checksum"`

	// LogFacility and LogPriority are the names in effect after the load.
	LogFacility string `json:"log_facility,omitempty"`
	LogPriority string `json:"log_priority,omitempty"`

	// LoadedAt is set to the current UTC time by Record when zero.
	LoadedAt time.Time `json:"loaded_at"`
}

// Validate checks the fields Record requires.
func (e *Entry) Validate() error {
	switch {
	case e.NodeName == "":
		return fmt.Errorf("%w: node name is required", ErrInvalidEntry)
	case e.ClusterName == "":
		return fmt.Errorf("%w: cluster name is required", ErrInvalidEntry)
	case e.ConfigVersion < 0:
		return fmt.Errorf("%w: negative config version %d", ErrInvalidEntry, e.ConfigVersion)
	case e.Checksum == "":
		return fmt.Errorf("%w: checksum is required", ErrInvalidEntry)
	}
	return nil
}

// Repository stores and retrieves load history.
//
// Implementations must be safe for concurrent use and store UTC timestamps.
type Repository interface {
	// Record validates and appends entry, filling ID and LoadedAt when empty.
	Record(ctx context.Context, entry *Entry) error

	// GetByID returns ErrEntryNotFound if id does not exist.
	GetByID(ctx context.Context, id string) (*Entry, error)

	// Latest returns the most recent entry, or ErrEntryNotFound when empty.
	Latest(ctx context.Context) (*Entry, error)

	// List returns up to limit entries, newest first.
	List(ctx context.Context, limit int) ([]Entry, error)
}
