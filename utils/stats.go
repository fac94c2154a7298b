package utils

import "math"

// Statistics computes descriptive statistics over a fixed data set.
type Statistics struct {
	data []Amount
}

func NewStatistics(data []Amount) *Statistics {
	d := make([]Amount, len(data))
	copy(d, data)
	return &Statistics{data: d}
}

// Mean returns the arithmetic mean of the data.
func (s *Statistics) Mean() float64 {
	sum := float64(0)
	for _, v := range s.data {
		sum += float64(v)
	}
	return sum / float64(len(s.data))
}

// Variance returns the population variance of the data.
func (s *Statistics) Variance() float64 {
	mean := s.Mean()
	variance := float64(0)
	for _, v := range s.data {
		diff := float64(v) - mean
		variance += diff * diff
	}
	return variance / float64(len(s.data))
}

// StdDev returns the population standard deviation of the data.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}
