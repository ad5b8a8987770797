package market

import "time"

// Trade represents a normalized trade print.
type Trade struct {
	Side  Side
	Price float64
	Qty   float64
	Ts    time.Time
}
