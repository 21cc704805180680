package influxdb

import (
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementConfigLoad   = "ccsd_config_load"
	MeasurementQueryFailure = "ccsd_query_failure"
)

// WriteConfigLoad records that node installed version of cluster's config.
func (c *Client) WriteConfigLoad(cluster, node string, version int, checksum string) {
	c.WritePoint(MeasurementConfigLoad,
		map[string]string{
			"cluster": cluster,
			"node":    node,
		},
		map[string]interface{}{
			"config_version": version,
			"checksum":       checksum,
		},
	)
}

// WriteQueryFailure records a failed mandatory query and its failure kind.
func (c *Client) WriteQueryFailure(query, kind string) {
	c.WritePoint(MeasurementQueryFailure,
		map[string]string{
			"query": query,
			"kind":  kind,
		},
		map[string]interface{}{
			"count": 1,
		},
	)
}

// WritePoint writes a point stamped with the current time. Dropped silently
// when the client is not connected.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, c.now()))
}
