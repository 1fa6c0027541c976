package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoint writes one point under the output's configured measurement.
//
// The write is non-blocking; points are batched and sent
// asynchronously, with failures reported through the SetOnError
// callback. Writes on a closed or disconnected client are dropped.
//
// Parameters:
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs holding the actual data
//   - timestamp: The exact time of the data point
//
// Example:
//
//	client.WritePoint(
//	    map[string]string{"room": "kitchen"},
//	    map[string]interface{}{"temp_kitchen": 21.5},
//	    time.Now())
func (c *Client) WritePoint(tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(c.cfg.Measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
