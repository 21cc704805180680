// Package influxdb records ccsd events as InfluxDB time series.
//
// It wraps the official influxdb-client-go v2 library. Every successful
// cluster.conf load writes a ccsd_config_load point and every failed
// mandatory query writes a ccsd_query_failure point, so version rollouts can
// be followed across nodes on a dashboard.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteConfigLoad("alpha", "node-a", 7, checksum)
//
// # Error Handling
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Batch errors are delivered to the SetOnError callback;
// connection and health check errors are returned directly.
package influxdb
