package daemon

import "errors"

var (
	// ErrStaleVersion is returned when a document's config_version is lower
	// than the installed master's.
	ErrStaleVersion = errors.New("daemon: config_version older than installed")

	// ErrFileTooLarge is returned when cluster.conf exceeds the size limit.
	ErrFileTooLarge = errors.New("daemon: config file too large")

	// ErrInvalidAnnouncement is returned for an announcement that cannot be
	// decoded or does not match its topic.
	ErrInvalidAnnouncement = errors.New("daemon: invalid announcement")
)
