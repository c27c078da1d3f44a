package models

import "time"

// ValueKind discriminates the typed value carried by a MetricSample
type ValueKind string

const (
	KindNumber   ValueKind = "number"
	KindText     ValueKind = "text"
	KindDuration ValueKind = "duration"
)

// MetricSample is one captured metric value. Samples are immutable once
// produced; the dotted Name ("innodb.buffer_pool.hit_ratio") is the key
// thresholds reference.
type MetricSample struct {
	Name       string        `json:"name"`
	Kind       ValueKind     `json:"kind"`
	Number     float64       `json:"number,omitempty"`
	Text       string        `json:"text,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Collector  CheckType     `json:"collector"`
	CapturedAt time.Time     `json:"captured_at"`
}

// NumberSample creates a numeric sample attributed to a collector.
func NumberSample(collector CheckType, name string, value float64, at time.Time) MetricSample {
	return MetricSample{
		Name:       name,
		Kind:       KindNumber,
		Number:     value,
		Collector:  collector,
		CapturedAt: at,
	}
}

// TextSample creates a string-valued sample attributed to a collector.
func TextSample(collector CheckType, name, value string, at time.Time) MetricSample {
	return MetricSample{
		Name:       name,
		Kind:       KindText,
		Text:       value,
		Collector:  collector,
		CapturedAt: at,
	}
}

// DurationSample creates a duration-valued sample attributed to a collector.
func DurationSample(collector CheckType, name string, value time.Duration, at time.Time) MetricSample {
	return MetricSample{
		Name:       name,
		Kind:       KindDuration,
		Duration:   value,
		Collector:  collector,
		CapturedAt: at,
	}
}

// FindNumber returns the numeric value of the named metric, or false if the
// metric is absent or not numeric. Absence is expected under degraded runs.
func FindNumber(samples []MetricSample, name string) (float64, bool) {
	for _, s := range samples {
		if s.Name == name && s.Kind == KindNumber {
			return s.Number, true
		}
	}
	return 0, false
}

// FindText returns the string value of the named metric, or false if absent.
func FindText(samples []MetricSample, name string) (string, bool) {
	for _, s := range samples {
		if s.Name == name && s.Kind == KindText {
			return s.Text, true
		}
	}
	return "", false
}
