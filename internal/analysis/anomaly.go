package analysis

import (
	"log/slog"
	"math"

	"github.com/codecrdt/modeval/internal/models"
	"gonum.org/v1/gonum/stat"
)

// AnomalyFlag is one metric on which a record is extreme.
type AnomalyFlag struct {
	Metric string  `json:"metric" yaml:"metric"`
	Value  float64 `json:"value" yaml:"value"`
	ZScore float64 `json:"z_score" yaml:"z_score"`
}

// Anomaly is a record flagged on one or more metrics.
type Anomaly struct {
	TaskID    string        `json:"task_id" yaml:"task_id"`
	Mode      models.Mode   `json:"mode" yaml:"mode"`
	RunNumber int           `json:"run_number" yaml:"run_number"`
	Flags     []AnomalyFlag `json:"flags" yaml:"flags"`
}

// Key identifies the flagged record.
func (an Anomaly) Key() models.RecordKey {
	return models.RecordKey{TaskID: an.TaskID, Mode: an.Mode, RunNumber: an.RunNumber}
}

// DetectAnomalies flags records whose population z-score on latency or
// overall score exceeds the configured threshold. A metric with fewer than
// two values or no spread is skipped. Each record appears once, in the
// order it was first flagged.
func (a *Analyzer) DetectAnomalies() []Anomaly {
	out := []Anomaly{}
	index := make(map[models.RecordKey]int)

	for _, metric := range models.AnomalyMetrics {
		var values []float64
		var owners []int
		for i := range a.records {
			if v, ok := a.records[i].Value(metric); ok {
				values = append(values, v)
				owners = append(owners, i)
			}
		}
		if len(values) < 2 {
			slog.Debug("Skipping anomaly detection", "metric", metric, "reason", "fewer than two values")
			continue
		}
		mean, variance := stat.PopMeanVariance(values, nil)
		sd := math.Sqrt(variance)
		if sd == 0 || math.IsNaN(sd) {
			slog.Warn("Skipping anomaly detection", "metric", metric, "reason", "zero variance")
			continue
		}

		for j, v := range values {
			z := (v - mean) / sd
			if math.Abs(z) <= a.cfg.AnomalyThreshold {
				continue
			}
			r := &a.records[owners[j]]
			flag := AnomalyFlag{Metric: metric.Label(), Value: v, ZScore: z}
			if at, seen := index[r.Key()]; seen {
				out[at].Flags = append(out[at].Flags, flag)
				continue
			}
			index[r.Key()] = len(out)
			out = append(out, Anomaly{
				TaskID:    r.TaskID,
				Mode:      r.Mode,
				RunNumber: r.RunNumber,
				Flags:     []AnomalyFlag{flag},
			})
		}
	}
	return out
}
