package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"node status", topics.NodeStatus("node-a"), "ccs/node/node-a/status"},
		{"node config", topics.NodeConfig("alpha", "node-a"), "ccs/cluster/alpha/node/node-a/config"},
		{"all node configs", topics.AllNodeConfigs("alpha"), "ccs/cluster/alpha/node/+/config"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestTopics_ParseNodeConfig(t *testing.T) {
	tests := []struct {
		topic       string
		wantCluster string
		wantNode    string
		wantOK      bool
	}{
		{"ccs/cluster/alpha/node/node-b/config", "alpha", "node-b", true},
		{"ccs/cluster/alpha/node/node-b/status", "", "", false},
		{"ccs/cluster//node/node-b/config", "", "", false},
		{"ccs/cluster/alpha/node//config", "", "", false},
		{"other/cluster/alpha/node/node-b/config", "", "", false},
		{"ccs/cluster/alpha/node/node-b/config/extra", "", "", false},
		{"ccs/node/node-a/status", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			cluster, node, ok := Topics{}.ParseNodeConfig(tt.topic)
			if ok != tt.wantOK || cluster != tt.wantCluster || node != tt.wantNode {
				t.Errorf("ParseNodeConfig() = (%q, %q, %v), want (%q, %q, %v)",
					cluster, node, ok, tt.wantCluster, tt.wantNode, tt.wantOK)
			}
		})
	}
}

func TestValidSegment(t *testing.T) {
	tests := map[string]bool{
		"node-a":   true,
		"alpha.01": true,
		"":         false,
		"a/b":      false,
		"a+":       false,
		"#":        false,
	}

	for s, want := range tests {
		if got := ValidSegment(s); got != want {
			t.Errorf("ValidSegment(%q) = %v, want %v", s, got, want)
		}
	}
}
