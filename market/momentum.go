package market

// PriceHistory keeps the most recent mid prices in a fixed-size ring buffer
// and derives short-vs-long moving-average momentum from them.
type PriceHistory struct {
	buf   []float64
	next  int
	count int
}

// DefaultHistorySize matches the longest moving average anyone asks for
// with room to spare.
const DefaultHistorySize = 32

// NewPriceHistory creates a ring buffer holding up to size prices.
func NewPriceHistory(size int) *PriceHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &PriceHistory{buf: make([]float64, size)}
}

// Push records a new price, evicting the oldest once full.
func (h *PriceHistory) Push(p float64) {
	h.buf[h.next] = p
	h.next = (h.next + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// MA returns the mean of the last n prices. ok is false until n prices
// have been recorded or when n exceeds the buffer size.
func (h *PriceHistory) MA(n int) (float64, bool) {
	if n <= 0 || n > h.count || n > len(h.buf) {
		return 0, false
	}
	sum := 0.0
	idx := h.next
	for i := 0; i < n; i++ {
		idx--
		if idx < 0 {
			idx = len(h.buf) - 1
		}
		sum += h.buf[idx]
	}
	return sum / float64(n), true
}

// Momentum returns (MA(short) - MA(long)) / MA(long). ok is false until the
// long average is warm or when it is zero.
func (h *PriceHistory) Momentum(short, long int) (float64, bool) {
	if short <= 0 || long <= short {
		return 0, false
	}
	maShort, okS := h.MA(short)
	maLong, okL := h.MA(long)
	if !okS || !okL || maLong == 0 {
		return 0, false
	}
	return (maShort - maLong) / maLong, true
}
