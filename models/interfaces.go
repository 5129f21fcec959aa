package models

import "context"

// MarketDataProvider supplies candle series and live quotes for a
// symbol and accepts order-placement requests. A nil candle slice or
// nil tick with a nil error never happens; callers treat any error as
// "skip this symbol for the cycle".
type MarketDataProvider interface {
	GetCandles(ctx context.Context, symbol, timeframe string, count int) ([]Candle, error)
	GetTick(ctx context.Context, symbol string) (*Tick, error)
	GetSymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error)
	PlaceOrder(ctx context.Context, symbol string, direction Direction, orderType OrderType, volume, price, sl, tp float64) (string, error)
}

// ConfidenceScorer rates a candidate setup in [0,100]. Implementations
// must be safe for concurrent calls; a retrained scorer is swapped in
// as a whole instance, never mutated in place.
type ConfidenceScorer interface {
	Score(state *MarketState) float64
}

// Notifier consumes emitted signal events. The delivery mechanism is
// outside the core pipeline.
type Notifier interface {
	BroadcastSignal(ctx context.Context, signal *Signal) error
	BroadcastClosure(ctx context.Context, n *ClosureNotification) error
	BroadcastMessage(ctx context.Context, text string) error
}

// SignalStore persists the signal ledger: append on creation, one
// in-place update on closure.
type SignalStore interface {
	InsertSignal(ctx context.Context, signal *Signal) error
	CloseSignal(ctx context.Context, signal *Signal) error
	GetWinRate(ctx context.Context) (WinRateStats, error)
}
