package pipeline

import "time"

// Clock ізолює читання wall-clock часу, щоб adapter
// залишався детерміновано тестованим
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock повертає clock на основі time.Now
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock повертає clock який завжди віддає t (для тестів)
func FixedClock(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time {
	return f.t
}
