package daemon

import (
	"encoding/json"
	"fmt"
	"time"
)

// Announcement is the retained message a node publishes after installing a
// document.
type Announcement struct {
	Node          string    `json:"node"`
	Cluster       string    `json:"cluster"`
	ConfigVersion int       `json:"config_version"`
	Checksum      string    `json:"checksum,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// announce publishes snap on this node's config topic.
func (l *Loader) announce(snap Snapshot) error {
	if l.opts.Publisher == nil {
		return nil
	}
	topic, ok := l.topicFor(snap.ClusterName)
	if !ok {
		l.log.Debug("announcement skipped, names not usable in a topic",
			"cluster", snap.ClusterName, "node", l.opts.NodeName)
		return nil
	}

	payload, err := json.Marshal(Announcement{
		Node:          l.opts.NodeName,
		Cluster:       snap.ClusterName,
		ConfigVersion: snap.Version,
		Checksum:      snap.Checksum,
		Timestamp:     snap.LoadedAt,
	})
	if err != nil {
		return fmt.Errorf("marshalling announcement: %w", err)
	}
	return l.opts.Publisher.PublishRetained(topic, payload)
}

// HandleAnnouncement processes a peer's announcement. When the peer runs a
// newer config_version than the installed master, the update_required flag
// is raised. Its signature matches mqtt.MessageHandler.
//
// Announcements from this node, from other clusters, or received before the
// first install are ignored.
func (l *Loader) HandleAnnouncement(topic string, payload []byte) error {
	cluster, node, ok := mqttTopics.ParseNodeConfig(topic)
	if !ok {
		return fmt.Errorf("%w: unexpected topic %q", ErrInvalidAnnouncement, topic)
	}
	if node == l.opts.NodeName {
		return nil
	}
	// An empty retained payload clears a topic.
	if len(payload) == 0 {
		return nil
	}

	var ann Announcement
	if err := json.Unmarshal(payload, &ann); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnnouncement, err)
	}
	if ann.Node != node || ann.Cluster != cluster {
		return fmt.Errorf("%w: payload names %s/%s on topic for %s/%s",
			ErrInvalidAnnouncement, ann.Cluster, ann.Node, cluster, node)
	}
	if ann.ConfigVersion < 0 {
		return fmt.Errorf("%w: negative config_version %d", ErrInvalidAnnouncement, ann.ConfigVersion)
	}

	doc, snap := l.opts.State.Master()
	if doc == nil || cluster != snap.ClusterName {
		return nil
	}
	if ann.ConfigVersion <= snap.Version {
		return nil
	}

	if l.opts.State.MarkUpdateRequired(ann.ConfigVersion) {
		l.log.Warn("peer announced newer cluster.conf",
			"peer", node,
			"peer_version", ann.ConfigVersion,
			"installed_version", snap.Version,
		)
	}
	if l.opts.Metrics != nil {
		required, announced := l.opts.State.UpdateRequired()
		l.opts.Metrics.SetUpdateRequired(required, announced)
	}
	return nil
}
