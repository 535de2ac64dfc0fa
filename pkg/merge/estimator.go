package merge

import "time"

const (
	// DefaultInterval is how long the estimate takes to reach its cap.
	DefaultInterval = 3 * time.Second
	// EstimateCap is the highest value an estimate reaches without a response.
	EstimateCap = 0.95

	defaultTickRate = 100 * time.Millisecond
)

// Estimate is the cosmetic progress for a request that has been in flight for
// elapsed. It grows linearly and stops at EstimateCap; only a response moves a
// job to 1.
func Estimate(elapsed, interval time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	if interval <= 0 {
		return EstimateCap
	}
	p := float64(elapsed) / float64(interval)
	if p > EstimateCap {
		return EstimateCap
	}
	return p
}

// Estimator tracks one job's estimate. The zero value is not usable.
type Estimator struct {
	interval time.Duration
	start    time.Time
	done     bool
}

// NewEstimator starts an estimate at start.
func NewEstimator(start time.Time, interval time.Duration) *Estimator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Estimator{interval: interval, start: start}
}

// At returns the progress at now.
func (e *Estimator) At(now time.Time) float64 {
	if e.done {
		return 1
	}
	return Estimate(now.Sub(e.start), e.interval)
}

// Exhausted reports whether the timer side has reached the cap.
func (e *Estimator) Exhausted(now time.Time) bool {
	return e.done || now.Sub(e.start) >= time.Duration(float64(e.interval)*EstimateCap)
}

// Complete jumps the estimate to 1.
func (e *Estimator) Complete() { e.done = true }
