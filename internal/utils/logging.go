package utils

import (
	"context"
	"log/slog"

	"github.com/codecrdt/modeval/internal/models"
)

// RecordToSlog logs a collected record at debug level.
func RecordToSlog(r *models.MeasurementRecord) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	slog.Debug("Record collected", RecordAttrs(r)...)
}

// RecordAttrs returns slog key/value pairs for the fields present on r.
func RecordAttrs(r *models.MeasurementRecord) []any {
	attrs := []any{
		"task", r.TaskID,
		"mode", r.Mode,
		"run", r.RunNumber,
		"success", r.Success,
	}

	attrs = addIf(attrs, "responseTime", r.ResponseTime)
	attrs = addIf(attrs, "overallScore", r.OverallScore)
	attrs = addIf(attrs, "totalTokens", r.TotalTokens)
	attrs = addIf(attrs, "error", r.Error)

	return attrs
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name)
		attrs = append(attrs, *v)
	}

	return attrs
}
