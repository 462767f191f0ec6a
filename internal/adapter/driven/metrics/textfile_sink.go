package metrics

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

// TextfileSink keeps the latest data points as gauges and rewrites a
// node_exporter textfile after every publish.
type TextfileSink struct {
	path     string
	mu       sync.Mutex
	registry *prometheus.Registry
	gauges   map[string]*gaugeFamily
}

type gaugeFamily struct {
	vec    *prometheus.GaugeVec
	labels []string
}

// NewTextfileSink creates a sink writing to path.
func NewTextfileSink(path string) *TextfileSink {
	return &TextfileSink{
		path:     path,
		registry: prometheus.NewRegistry(),
		gauges:   make(map[string]*gaugeFamily),
	}
}

// PublishMetric sets the gauge of datum and flushes the textfile.
func (s *TextfileSink) PublishMetric(_ context.Context, namespace string, datum entity.MetricDatum) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := MetricName(namespace, datum.Name, datum.Unit)
	labels := make(prometheus.Labels, len(datum.Dimensions))
	names := make([]string, 0, len(datum.Dimensions))
	for _, d := range datum.Dimensions {
		l := snakeCase(d.Name)
		labels[l] = d.Value
		names = append(names, l)
	}
	slices.Sort(names)

	family, ok := s.gauges[name]
	if !ok {
		family = &gaugeFamily{
			vec: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: name,
				Help: fmt.Sprintf("%s reported by aurora-logmon (%s).", datum.Name, datum.Unit),
			}, names),
			labels: names,
		}
		if err := s.registry.Register(family.vec); err != nil {
			return fmt.Errorf("registering %s: %w", name, err)
		}
		s.gauges[name] = family
	} else if !slices.Equal(family.labels, names) {
		return fmt.Errorf("metric %s published with labels %v, previously %v", name, names, family.labels)
	}

	family.vec.With(labels).Set(datum.Value)

	if err := prometheus.WriteToTextfile(s.path, s.registry); err != nil {
		return fmt.Errorf("writing textfile %s: %w", s.path, err)
	}
	return nil
}

// MetricName maps a CloudWatch namespace and metric name onto a Prometheus
// name, e.g. Custom/Aurora + TotalLogFileSize -> custom_aurora_total_log_file_size_bytes.
func MetricName(namespace, name string, unit entity.MetricUnit) string {
	full := snakeCase(namespace) + "_" + snakeCase(name)
	if namespace == "" {
		full = snakeCase(name)
	}
	if unit == entity.UnitBytes && !strings.HasSuffix(full, "_bytes") {
		full += "_bytes"
	}
	return full
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
