// Package mqtt provides MQTT connectivity for ccsd.
//
// Nodes use the broker to tell each other which cluster.conf version they
// run. Each node publishes a retained announcement after every successful
// load and subscribes to its peers' announcements; a peer running a newer
// version marks the local node as needing an update.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained online/offline node status with a Last Will
//   - Topic subscriptions restored after reconnect
//   - Topic builders for the ccs/ hierarchy
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS=true) outside a trusted cluster network
//   - Credentials are validated against the broker ACL
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT, "node-a")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllNodeConfigs("alpha"), 1,
//	    func(topic string, payload []byte) error {
//	        return loader.HandleAnnouncement(topic, payload)
//	    })
package mqtt
