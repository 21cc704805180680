// Package config handles loading and validating ccsd configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with CCSD_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (MQTT password, InfluxDB token) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// The daemon configuration is distinct from cluster.conf: it only says where
// cluster.conf lives and how the daemon's own infrastructure is wired.
//
// Usage:
//
//	cfg, err := config.Load("configs/ccsd.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Cluster.ConfigFile)
package config
