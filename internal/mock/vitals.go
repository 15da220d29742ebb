package mock

import (
	"math"
	"math/rand"
	"sync"

	"github.com/jeevanteja1304/VitalValue/internal/client"
)

// SampleRate is the assumed frame rate of a raw signal, in Hz.
const SampleRate = 30.0

const (
	minHeartRate = 40.0
	maxHeartRate = 180.0
)

// Estimator produces simulated vitals. With a usable raw signal the heart
// rate comes from peak spacing; otherwise it is drawn from 60-100 bpm.
type Estimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewEstimator(seed int64) *Estimator {
	return &Estimator{rng: rand.New(rand.NewSource(seed))}
}

func (e *Estimator) randomHeartRate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return 60 + e.rng.Float64()*40
}

// Estimate returns vitals for a recording. signal may be nil.
func (e *Estimator) Estimate(signal []float64) client.Vitals {
	hr, ok := EstimateHeartRate(signal, SampleRate)
	if !ok {
		hr = e.randomHeartRate()
	}
	hr = math.Round(hr)
	return client.Vitals{
		HeartRate: hr,
		Systolic:  math.Round(95 + 0.35*hr),
		Diastolic: math.Round(60 + 0.2*hr),
		Stress:    StressLevel(hr),
	}
}

// StressLevel buckets a heart rate.
func StressLevel(hr float64) string {
	switch {
	case hr < 75:
		return "Low"
	case hr < 90:
		return "Moderate"
	default:
		return "High"
	}
}

// EstimateHeartRate detrends signal, finds peaks at least half a second
// apart and converts their mean spacing to bpm. It reports false when the
// signal is too short or the result is implausible.
func EstimateHeartRate(signal []float64, fs float64) (float64, bool) {
	if len(signal) < int(2*fs) {
		return 0, false
	}

	smooth := movingAverage(signal, 3)
	trend := movingAverage(smooth, int(1.5*fs))
	x := make([]float64, len(smooth))
	for i := range smooth {
		x[i] = smooth[i] - trend[i]
	}

	peaks := findPeaks(x, int(0.5*fs))
	if len(peaks) < 2 {
		return 0, false
	}
	interval := float64(peaks[len(peaks)-1]-peaks[0]) / float64(len(peaks)-1) / fs
	hr := 60 / interval
	if hr < minHeartRate || hr > maxHeartRate {
		return 0, false
	}
	return hr, true
}

// movingAverage is a centered mean, truncated at the edges.
func movingAverage(x []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	half := window / 2
	prefix := make([]float64, len(x)+1)
	for i, v := range x {
		prefix[i+1] = prefix[i] + v
	}
	out := make([]float64, len(x))
	for i := range x {
		lo := max(0, i-half)
		hi := min(len(x), i+half+1)
		out[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
	}
	return out
}

// findPeaks returns positive local maxima separated by at least minDist
// samples, keeping the higher of two peaks that are too close.
func findPeaks(x []float64, minDist int) []int {
	var peaks []int
	for i := 1; i < len(x)-1; i++ {
		if x[i] <= 0 || x[i] <= x[i-1] || x[i] < x[i+1] {
			continue
		}
		if n := len(peaks); n > 0 && i-peaks[n-1] < minDist {
			if x[i] > x[peaks[n-1]] {
				peaks[n-1] = i
			}
			continue
		}
		peaks = append(peaks, i)
	}
	return peaks
}
