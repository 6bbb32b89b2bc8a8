package easel

import "time"

// Clock is the monotonic time source handed to the scheduler. Now returns
// milliseconds since an arbitrary fixed origin.
type Clock interface {
	Now() float64
}

// SystemClock returns a Clock backed by the process monotonic clock, with its
// origin at the moment of the call.
func SystemClock() Clock {
	return systemClock{start: time.Now()}
}

type systemClock struct {
	start time.Time
}

func (c systemClock) Now() float64 {
	return float64(time.Since(c.start)) / float64(time.Millisecond)
}
