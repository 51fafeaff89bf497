package acwr

// Window is a fixed-capacity trailing window over daily values with a
// running sum. Until it fills up, the mean is taken over the values pushed
// so far.
type Window struct {
	buf     []float64
	head    int // next slot to overwrite
	n       int
	sum     float64
	nonZero int
}

// NewWindow creates a window holding at most size values
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{buf: make([]float64, size)}
}

// Push appends a value, evicting the oldest once the window is full
func (w *Window) Push(v float64) {
	if w.n == len(w.buf) {
		old := w.buf[w.head]
		w.sum -= old
		if old != 0 {
			w.nonZero--
		}
	} else {
		w.n++
	}

	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
	w.sum += v
	if v != 0 {
		w.nonZero++
	}

	// Float subtraction leaves residue; an all-zero window must sum to zero.
	if w.nonZero == 0 || w.sum < 0 {
		w.sum = 0
	}
}

// Sum returns the sum of the values currently in the window
func (w *Window) Sum() float64 {
	return w.sum
}

// Len returns the number of values currently in the window
func (w *Window) Len() int {
	return w.n
}

// Mean returns the average of the values in the window, or 0 when empty
func (w *Window) Mean() float64 {
	if w.n == 0 {
		return 0
	}
	return w.sum / float64(w.n)
}

// Values returns the window contents, oldest first
func (w *Window) Values() []float64 {
	out := make([]float64, 0, w.n)
	start := w.head - w.n
	if start < 0 {
		start += len(w.buf)
	}
	for i := 0; i < w.n; i++ {
		out = append(out, w.buf[(start+i)%len(w.buf)])
	}
	return out
}
