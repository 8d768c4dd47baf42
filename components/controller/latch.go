package controller

// Latch detects rising edges: Run returns true only when the value changes from
// false to true.
type Latch struct {
	val bool
}

func (l *Latch) Run(v bool) bool {
	r := v && !l.val
	l.val = v
	return r
}
