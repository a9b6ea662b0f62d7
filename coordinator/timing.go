package coordinator

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summarize returns the mean and the sample standard deviation, in seconds,
// of the elapsed times of repeated runs. The deviation of a single run is 0.
func Summarize(elapsed []time.Duration) (mean, std float64) {
	switch len(elapsed) {
	case 0:
		return 0, 0
	case 1:
		return elapsed[0].Seconds(), 0
	}
	seconds := make([]float64, len(elapsed))
	for i, e := range elapsed {
		seconds[i] = e.Seconds()
	}
	return stat.MeanStdDev(seconds, nil)
}
