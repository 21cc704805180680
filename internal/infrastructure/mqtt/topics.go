package mqtt

import (
	"fmt"
	"strings"
)

// TopicPrefix is the root of every ccsd topic.
const TopicPrefix = "ccs"

// Topics provides builders for ccsd MQTT topics.
//
//	ccs/node/<node>/status                     per-node online/offline, LWT
//	ccs/cluster/<cluster>/node/<node>/config   retained config announcement
type Topics struct{}

// NodeStatus returns the retained online/offline topic for a node.
//
// Example: ccs/node/node-a/status
func (Topics) NodeStatus(node string) string {
	return fmt.Sprintf("%s/node/%s/status", TopicPrefix, node)
}

// NodeConfig returns the retained announcement topic for a node.
//
// Example: ccs/cluster/alpha/node/node-a/config
func (Topics) NodeConfig(cluster, node string) string {
	return fmt.Sprintf("%s/cluster/%s/node/%s/config", TopicPrefix, cluster, node)
}

// AllNodeConfigs returns a wildcard subscription for every node's
// announcement within a cluster.
//
// Example: ccs/cluster/alpha/node/+/config
func (Topics) AllNodeConfigs(cluster string) string {
	return fmt.Sprintf("%s/cluster/%s/node/+/config", TopicPrefix, cluster)
}

// ParseNodeConfig extracts cluster and node from a NodeConfig topic.
func (Topics) ParseNodeConfig(topic string) (cluster, node string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 6 || parts[0] != TopicPrefix || parts[1] != "cluster" ||
		parts[3] != "node" || parts[5] != "config" || parts[2] == "" || parts[4] == "" {
		return "", "", false
	}
	return parts[2], parts[4], true
}

// ValidSegment reports whether s can be used as one level of a topic:
// non-empty and free of separators and wildcards.
func ValidSegment(s string) bool {
	return s != "" && !strings.ContainsAny(s, "/+#\x00")
}
