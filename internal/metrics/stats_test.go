package metrics

import (
	"testing"

	"github.com/codecrdt/modeval/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errPtr(s string) *string { return &s }

func fixture() models.Records {
	return models.Records{
		{TaskID: "todo", Mode: models.ModeParallel, RunNumber: 2, OverallScore: models.Float(82), ResponseTime: models.Float(11), Success: true},
		{TaskID: "todo", Mode: models.ModeSequential, RunNumber: 1, OverallScore: models.Float(70), ResponseTime: models.Float(20), Success: true},
		{TaskID: "todo", Mode: models.ModeParallel, RunNumber: 1, OverallScore: models.Float(80), ResponseTime: models.Float(10), Success: true},
		{TaskID: "todo", Mode: models.ModeSequential, RunNumber: 2, Error: errPtr("timeout"), ResponseTime: models.Float(300)},
		{TaskID: "chat", Mode: models.ModeSequential, RunNumber: 1, OverallScore: models.Float(60), Success: true},
	}
}

func TestGroup_Values(t *testing.T) {
	rs := fixture()

	values, missing := ForTask("todo", models.ModeParallel).Values(rs, models.MetricOverallScore)
	assert.Equal(t, []float64{80, 82}, values, "ordered by run number")
	assert.Equal(t, 0, missing)

	values, missing = ForTask("todo", models.ModeSequential).Values(rs, models.MetricOverallScore)
	assert.Equal(t, []float64{70}, values)
	assert.Equal(t, 1, missing, "failed run counts as missing")

	values, missing = ForMode(models.ModeSequential).Values(rs, models.MetricLatency)
	assert.Equal(t, []float64{20, 300}, values[:2])
	assert.Equal(t, 1, missing)
}

func TestGroup_EmptyGroup(t *testing.T) {
	g := ForTask("missing", models.ModeParallel)
	values, missing := g.Values(fixture(), models.MetricOverallScore)
	assert.NotNil(t, values)
	assert.Empty(t, values)
	assert.Equal(t, 0, missing)
	assert.Equal(t, 0.0, g.SuccessRate(fixture()))
	assert.Equal(t, 0.0, g.ErrorRate(fixture()))
}

func TestGroup_Rates(t *testing.T) {
	rs := fixture()
	g := ForTask("todo", models.ModeSequential)
	assert.Equal(t, 2, g.Total(rs))
	assert.InDelta(t, 0.5, g.SuccessRate(rs), 1e-12)
	assert.InDelta(t, 0.5, g.ErrorRate(rs), 1e-12)

	all := Group{}
	assert.Equal(t, 5, all.Total(rs))
	assert.InDelta(t, 0.2, all.ErrorRate(rs), 1e-12)
}

func TestGroup_DoesNotMutate(t *testing.T) {
	rs := fixture()
	before := make(models.Records, len(rs))
	copy(before, rs)
	_ = ForMode(models.ModeParallel).Records(rs)
	require.Equal(t, before, rs)
}

func TestGroup_Name(t *testing.T) {
	assert.Equal(t, "all", Group{}.Name())
	assert.Equal(t, "parallel", ForMode(models.ModeParallel).Name())
	assert.Equal(t, "todo/sequential", ForTask("todo", models.ModeSequential).Name())
	assert.Equal(t, "todo", Group{Task: "todo"}.Name())
}
