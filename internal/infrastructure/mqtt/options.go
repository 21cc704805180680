package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/ccsd/internal/infrastructure/config"
)

// Connection constants.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect (ms).
	defaultDisconnectQuiesce = 1000

	defaultKeepAlive = 60 * time.Second

	maxQoS = 2

	tlsMinVersion = tls.VersionTLS12
)

// Status values published on the node status topic.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// StatusMessage is the retained payload on ccs/node/<node>/status.
type StatusMessage struct {
	Status    string    `json:"status"`
	Node      string    `json:"node"`
	ClientID  string    `json:"client_id"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// statusPayload encodes a StatusMessage stamped with the current time.
func statusPayload(status, node, clientID, reason string) []byte {
	data, err := json.Marshal(StatusMessage{
		Status:    status,
		Node:      node,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		// Marshalling a struct of strings and a time cannot fail.
		panic(fmt.Sprintf("mqtt: encoding status: %v", err))
	}
	return data
}

// buildClientOptions creates paho options from the ccsd config.
//
// The client ID is suffixed with the node name so that every node in a
// cluster can share one ccsd.yaml without the broker kicking duplicates.
func buildClientOptions(cfg config.MQTTConfig, node string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(clientID(cfg, node))

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	// The broker publishes this if the node vanishes without Close.
	opts.SetBinaryWill(
		Topics{}.NodeStatus(node),
		statusPayload(StatusOffline, node, clientID(cfg, node), "unexpected_disconnect"),
		1, true,
	)

	return opts
}

func clientID(cfg config.MQTTConfig, node string) string {
	if cfg.Broker.ClientID == "" {
		return "ccsd-" + node
	}
	return cfg.Broker.ClientID + "-" + node
}
