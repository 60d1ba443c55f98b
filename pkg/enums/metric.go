package enums

import "fmt"

// Metric is the unit a stuff quantity is expressed in. "nominal" means the
// quantity is a plain money amount rather than a measured unit.
type Metric string

const (
	MetricNominal   Metric = "nominal"
	MetricKilogram  Metric = "kg"
	MetricHectogram Metric = "hg"
	MetricGram      Metric = "g"
	MetricMilligram Metric = "mg"
	MetricLiter     Metric = "liter"
	MetricPack      Metric = "pack"
	MetricPouch     Metric = "pouch"
	MetricBottle    Metric = "bottle"
	MetricCup       Metric = "cup"
	MetricPiece     Metric = "piece"
	MetricBunch     Metric = "bunch"
	MetricSack      Metric = "sack"
	MetricBox       Metric = "box"
	MetricCans      Metric = "cans"
	MetricJointly   Metric = "jointly"
	MetricUnit      Metric = "unit"
)

var validMetrics = []Metric{
	MetricNominal,
	MetricKilogram,
	MetricHectogram,
	MetricGram,
	MetricMilligram,
	MetricLiter,
	MetricPack,
	MetricPouch,
	MetricBottle,
	MetricCup,
	MetricPiece,
	MetricBunch,
	MetricSack,
	MetricBox,
	MetricCans,
	MetricJointly,
	MetricUnit,
}

// String implements fmt.Stringer.
func (m Metric) String() string {
	return string(m)
}

// IsValid reports whether the value is a known Metric.
func (m Metric) IsValid() bool {
	for _, candidate := range validMetrics {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMetric converts raw input into a Metric.
func ParseMetric(value string) (Metric, error) {
	for _, candidate := range validMetrics {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid metric %q", value)
}
