package risk

import "errors"

var (
	ErrPositionCap         = errors.New("position cap exceeded")
	ErrInsufficientCapital = errors.New("insufficient capital")
	ErrCircuitOpen         = errors.New("venue circuit open")
	ErrDrawdownLimit       = errors.New("drawdown limit reached")
	ErrStaleMarket         = errors.New("market data stale")
)
