package market

// Side identifies the order/trade direction.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}
