package mock

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeevanteja1304/VitalValue/internal/client"
)

// sine builds a green-channel trace at bpm with a slow drift, sampled at
// SampleRate for the given number of seconds.
func sine(bpm float64, seconds int) []float64 {
	n := int(SampleRate) * seconds
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / SampleRate
		out[i] = 120 + 0.5*t + 2*math.Sin(2*math.Pi*bpm/60*t)
	}
	return out
}

func TestEstimateHeartRate(t *testing.T) {
	tests := []struct {
		name string
		bpm  float64
	}{
		{"resting", 60},
		{"typical", 72},
		{"elevated", 110},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hr, ok := EstimateHeartRate(sine(tt.bpm, 20), SampleRate)
			require.True(t, ok)
			assert.InDelta(t, tt.bpm, hr, 3)
		})
	}
}

func TestEstimateHeartRateRejects(t *testing.T) {
	_, ok := EstimateHeartRate(nil, SampleRate)
	assert.False(t, ok, "empty")

	_, ok = EstimateHeartRate(sine(72, 1), SampleRate)
	assert.False(t, ok, "shorter than two seconds")

	flat := make([]float64, 300)
	_, ok = EstimateHeartRate(flat, SampleRate)
	assert.False(t, ok, "flat signal has no peaks")
}

func TestEstimateFallsBackToRandom(t *testing.T) {
	e := NewEstimator(1)
	for i := 0; i < 50; i++ {
		v := e.Estimate(nil)
		assert.GreaterOrEqual(t, v.HeartRate, 60.0)
		assert.LessOrEqual(t, v.HeartRate, 100.0)
		assert.Equal(t, math.Round(v.HeartRate), v.HeartRate)
	}
}

func TestStressLevel(t *testing.T) {
	assert.Equal(t, "Low", StressLevel(62))
	assert.Equal(t, "Moderate", StressLevel(75))
	assert.Equal(t, "High", StressLevel(90))
}

func TestUsers(t *testing.T) {
	u := NewUsers(bcrypt.MinCost)
	require.NoError(t, u.Register(alice))
	assert.ErrorIs(t, u.Register(alice), ErrEmailTaken)
	assert.ErrorIs(t, u.Register(client.SignupRequest{Email: "x@y.z"}), ErrMissingFields)
	assert.Equal(t, 1, u.Count())

	assert.True(t, u.Authenticate(" Alice@Example.com", "hunter22"))
	assert.False(t, u.Authenticate("alice@example.com", "hunter2"))
	assert.False(t, u.Authenticate("nobody@example.com", "hunter22"))
}
