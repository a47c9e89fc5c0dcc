package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedEffects_IdenticalEffects(t *testing.T) {
	r := FixedEffects([]TaskEffect{
		{Task: "a", Effect: ptr(0.5), N: 5},
		{Task: "b", Effect: ptr(0.5), N: 10},
		{Task: "c", Effect: ptr(0.5), N: 20},
	})
	assert.InDelta(t, 0.5, r.PooledEffect, 1e-12)
	assert.InDelta(t, 0.0, r.Q, 1e-12)
	assert.Equal(t, 0.0, r.I2)
	assert.Equal(t, 2, r.DF)
	assert.True(t, r.PoolingValid)
	assert.Equal(t, HeterogeneityLow, r.Heterogeneity)

	headline, ok := r.Headline()
	assert.True(t, ok)
	assert.InDelta(t, 0.5, headline, 1e-12)
}

func TestFixedEffects_WeightsUseTrueN(t *testing.T) {
	r := FixedEffects([]TaskEffect{
		{Task: "a", Effect: ptr(1.0), N: 30},
		{Task: "b", Effect: ptr(0.0), N: 10},
	})
	// weights are n_i: (30*1 + 10*0) / 40
	assert.InDelta(t, 0.75, r.PooledEffect, 1e-12)
	assert.InDelta(t, math.Sqrt(1.0/40.0), r.PooledSE, 1e-12)
	assert.InDelta(t, r.PooledEffect/r.PooledSE, r.Z, 1e-12)
}

func TestFixedEffects_OppositeEffects(t *testing.T) {
	d := 10 / math.Sqrt(0.5)
	r := FixedEffects([]TaskEffect{
		{Task: "a", Effect: ptr(d), N: 5},
		{Task: "b", Effect: ptr(-d), N: 5},
	})
	assert.InDelta(t, 0.0, r.PooledEffect, 1e-9)
	assert.InDelta(t, 2000.0, r.Q, 1e-6)
	assert.InDelta(t, 99.95, r.I2, 1e-6)
	assert.GreaterOrEqual(t, r.I2, HeterogeneityExtreme)
	assert.False(t, r.PoolingValid)
	assert.Equal(t, HeterogeneityHigh, r.Heterogeneity)
	assert.InDelta(t, 1.0, r.PValue, 1e-9)
	require.NotNil(t, r.QPValue)
	assert.Less(t, *r.QPValue, 1e-6)

	_, ok := r.Headline()
	assert.False(t, ok, "pooled estimate must not be a headline")
}

func TestFixedEffects_I2RisesWithBetweenTaskSpread(t *testing.T) {
	var last float64 = -1
	for _, spread := range []float64{0.1, 0.5, 1, 2, 5} {
		r := FixedEffects([]TaskEffect{
			{Task: "a", Effect: ptr(0), N: 10},
			{Task: "b", Effect: ptr(spread), N: 10},
		})
		assert.GreaterOrEqual(t, r.I2, last)
		last = r.I2
	}
	assert.Greater(t, last, 95.0)
}

func TestFixedEffects_SubstantialIsCaution(t *testing.T) {
	r := FixedEffects([]TaskEffect{
		{Task: "a", Effect: ptr(0), N: 10},
		{Task: "b", Effect: ptr(math.Sqrt(0.6)), N: 10},
	})
	assert.InDelta(t, 3.0, r.Q, 1e-9)
	assert.InDelta(t, 200.0/3.0, r.I2, 1e-9)
	assert.Equal(t, HeterogeneitySubstantial, r.Heterogeneity)
	assert.True(t, r.PoolingValid)
}

func TestFixedEffects_SkipsUnmeasurableTasks(t *testing.T) {
	r := FixedEffects([]TaskEffect{
		{Task: "a", Effect: ptr(0.4), N: 8},
		{Task: "constant", Effect: nil, N: 5},
		{Task: "tiny", Effect: ptr(1.2), N: 1},
	})
	assert.Equal(t, []string{"a"}, r.Tasks)
	assert.Equal(t, []string{"constant", "tiny"}, r.SkippedTasks)
	assert.Equal(t, 0, r.DF)
	assert.Nil(t, r.QPValue)
	assert.Equal(t, 0.0, r.I2)
	assert.True(t, r.PoolingValid)
}

func TestFixedEffects_NothingToPool(t *testing.T) {
	r := FixedEffects([]TaskEffect{{Task: "a", Effect: nil, N: 5}})
	assert.False(t, r.PoolingValid)
	assert.Equal(t, HeterogeneityNone, r.Heterogeneity)
	assert.Empty(t, r.Tasks)
	assert.Equal(t, 1.0, r.PValue)
}
