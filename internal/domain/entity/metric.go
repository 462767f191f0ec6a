package entity

import "time"

// MetricUnit mirrors the CloudWatch standard units used by the monitor.
type MetricUnit string

const (
	UnitBytes MetricUnit = "Bytes"
	UnitCount MetricUnit = "Count"
)

// Dimension is a name/value pair attached to a data point.
type Dimension struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MetricDatum is one data point handed to a metrics sink.
type MetricDatum struct {
	Name       string      `json:"name"`
	Value      float64     `json:"value"`
	Unit       MetricUnit  `json:"unit"`
	Dimensions []Dimension `json:"dimensions"`
	Timestamp  time.Time   `json:"timestamp"`
}
