package models

import (
	"time"
)

// Trend classifies a directional read of the market. The string values
// are part of the serialized/event surface and must not change.
type Trend string

const (
	TrendStrongBullish Trend = "STRONG_BULLISH"
	TrendBullish       Trend = "BULLISH"
	TrendNeutral       Trend = "NEUTRAL"
	TrendBearish       Trend = "BEARISH"
	TrendStrongBearish Trend = "STRONG_BEARISH"
)

// IsBullish reports whether the trend is in the bullish family.
func (t Trend) IsBullish() bool {
	return t == TrendBullish || t == TrendStrongBullish
}

// IsBearish reports whether the trend is in the bearish family.
func (t Trend) IsBearish() bool {
	return t == TrendBearish || t == TrendStrongBearish
}

// Direction is the trade side of a signal.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// OrderType determines how the entry should be placed.
type OrderType string

const (
	OrderMarket    OrderType = "MARKET"
	OrderBuyLimit  OrderType = "BUY_LIMIT"
	OrderSellLimit OrderType = "SELL_LIMIT"
	OrderBuyStop   OrderType = "BUY_STOP"
	OrderSellStop  OrderType = "SELL_STOP"
)

// Outcome of a closed trade.
type Outcome string

const (
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

// SignalStatus tracks the lifecycle of a signal.
type SignalStatus string

const (
	StatusActive SignalStatus = "ACTIVE"
	StatusClosed SignalStatus = "CLOSED"
)

// Candle represents a single price candle, oldest first in a series.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume,omitempty"`
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Body returns the absolute body size of the candle.
func (c Candle) Body() float64 {
	if c.Close > c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Tick is a live bid/ask quote.
type Tick struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

// SymbolInfo describes instrument metadata needed for pip math.
type SymbolInfo struct {
	Point      float64 `json:"point"`
	Spread     float64 `json:"spread"`
	VolumeMin  float64 `json:"volume_min"`
	VolumeMax  float64 `json:"volume_max"`
	VolumeStep float64 `json:"volume_step"`
}

// SwingKind marks a swing point as a high or a low.
type SwingKind string

const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// SwingPoint is a local extreme confirmed by two candles on each side.
type SwingPoint struct {
	Price float64   `json:"price"`
	Index int       `json:"index"`
	Kind  SwingKind `json:"kind"`
}

// StructureState holds the swing map and break-of-structure read for
// one candle series. Most recent swings last, capped at 5 per side.
type StructureState struct {
	SwingHighs   []SwingPoint `json:"swing_highs"`
	SwingLows    []SwingPoint `json:"swing_lows"`
	BOSDetected  bool         `json:"bos_detected"`
	BOSDirection Trend        `json:"bos_direction,omitempty"`
}

// ZoneType classifies a liquidity zone.
type ZoneType string

const (
	ZonePDH       ZoneType = "PDH"
	ZonePDL       ZoneType = "PDL"
	ZoneSwingHigh ZoneType = "SWING_HIGH"
	ZoneSwingLow  ZoneType = "SWING_LOW"
)

// LiquidityZone is a price level where resting orders are assumed.
type LiquidityZone struct {
	Type     ZoneType `json:"type"`
	Price    float64  `json:"price"`
	Strength string   `json:"strength"` // HIGH or MEDIUM
}

// FVG is a three-candle Fair Value Gap. Once Mitigated is set the gap
// is permanently excluded from active consideration.
type FVG struct {
	Type      Trend   `json:"type"`
	Upper     float64 `json:"upper"`
	Lower     float64 `json:"lower"`
	Size      float64 `json:"size"`
	Index     int     `json:"index"`
	Mitigated bool    `json:"mitigated"`
}

// OrderBlock is the last opposing candle before a displacement move.
type OrderBlock struct {
	Type     Trend   `json:"type"`
	Upper    float64 `json:"upper"`
	Lower    float64 `json:"lower"`
	Index    int     `json:"index"`
	Strength float64 `json:"strength"`
}

// Displacement describes an abnormally large-bodied latest candle.
type Displacement struct {
	Detected  bool    `json:"detected"`
	Direction Trend   `json:"direction,omitempty"`
	Size      float64 `json:"size,omitempty"`
	Strength  float64 `json:"strength,omitempty"`
}

// LiquiditySweep records price piercing a liquidity level and closing
// back across it.
type LiquiditySweep struct {
	Detected  bool     `json:"detected"`
	Type      Trend    `json:"type,omitempty"`
	Level     float64  `json:"level,omitempty"`
	LevelType ZoneType `json:"level_type,omitempty"`
}

// TrendVote is a single method's read of the trend.
type TrendVote struct {
	Direction Trend   `json:"direction"`
	Strength  float64 `json:"strength"`
	Method    string  `json:"method"`
}

// TrendAnalysis is the aggregated verdict of all trend methods.
type TrendAnalysis struct {
	Trend         Trend         `json:"trend"`
	Strength      float64       `json:"trend_strength"`
	Quality       string        `json:"trend_quality"` // excellent, good, fair, poor
	Confirmations int           `json:"confirmations"`
	Votes         map[Trend]int `json:"direction_votes,omitempty"`
	Methods       []TrendVote   `json:"methods,omitempty"`
}

// FundamentalAnalysis carries the non-technical read for a symbol.
type FundamentalAnalysis struct {
	Sentiment        string  `json:"sentiment"`
	BaseCurrency     string  `json:"base_currency"`
	QuoteCurrency    string  `json:"quote_currency"`
	RelativeStrength float64 `json:"relative_strength"`
	Session          string  `json:"session"`
	Liquidity        string  `json:"liquidity"`
	NewsImpact       string  `json:"news_impact"`
	AvoidTrading     bool    `json:"avoid_trading"`
	Bias             string  `json:"fundamental_bias"` // BUY, SELL, NEUTRAL
	Confidence       float64 `json:"confidence"`
}

// MarketState is a composite snapshot for one symbol per analysis
// cycle. Built fresh each cycle and read-only downstream.
type MarketState struct {
	Symbol       string    `json:"symbol"`
	Timestamp    time.Time `json:"timestamp"`
	CurrentPrice float64   `json:"current_price"`
	Spread       float64   `json:"spread"`

	HTFTrend        Trend           `json:"htf_trend"`
	HTFStructure    StructureState  `json:"htf_structure"`
	LiquidityLevels []LiquidityZone `json:"liquidity_levels"`
	TrendQuality    string          `json:"trend_quality"`
	TrendStrength   float64         `json:"trend_strength"`

	MTFStructure StructureState `json:"mtf_structure"`
	LTFStructure StructureState `json:"ltf_structure"`

	FVGs        []FVG        `json:"fvgs"`
	OrderBlocks []OrderBlock `json:"order_blocks"`

	M1Displacement Displacement   `json:"m1_displacement"`
	LiquiditySweep LiquiditySweep `json:"liquidity_sweep"`

	Volatility  string  `json:"volatility"` // LOW, MEDIUM, HIGH
	ATR         float64 `json:"atr"`
	RSI         float64 `json:"rsi"`
	VolumeRatio float64 `json:"volume_ratio"`

	Bias        Trend               `json:"bias"`
	InKillZone  bool                `json:"in_kill_zone"`
	Fundamental FundamentalAnalysis `json:"fundamental"`
}

// SetupType classifies a validated setup, in confluence priority order.
type SetupType string

const (
	SetupFVGOBConfluence SetupType = "FVG_OB_CONFLUENCE"
	SetupOrderBlock      SetupType = "ORDER_BLOCK"
	SetupFVGOnly         SetupType = "FVG_ONLY"
	SetupStructureBreak  SetupType = "STRUCTURE_BREAK"
)

// EntryLevels holds the computed entry, stop and target for a setup.
type EntryLevels struct {
	EntryType  OrderType `json:"entry_type"`
	Entry      float64   `json:"entry"`
	StopLoss   float64   `json:"sl"`
	TakeProfit float64   `json:"tp"`
	SLPips     float64   `json:"sl_pips"`
	TPPips     float64   `json:"tp_pips"`
	RiskReward float64   `json:"rr"`
}

// Signal is an emitted trade recommendation. Immutable after creation
// except for status, outcome and close metadata, which only the
// lifecycle manager touches.
type Signal struct {
	SignalID       string       `json:"signal_id"`
	Symbol         string       `json:"symbol"`
	Direction      Direction    `json:"direction"`
	EntryType      OrderType    `json:"entry_type"`
	EntryPrice     float64      `json:"entry_price"`
	StopLoss       float64      `json:"stop_loss"`
	TakeProfit     float64      `json:"take_profit"`
	SLPips         float64      `json:"sl_pips"`
	TPPips         float64      `json:"tp_pips"`
	RiskReward     float64      `json:"risk_reward"`
	SetupType      SetupType    `json:"setup_type"`
	SignalStrength string       `json:"signal_strength"` // LOW, MEDIUM, HIGH, VERY_HIGH
	MLConfidence   float64      `json:"ml_confidence"`
	Timestamp      time.Time    `json:"timestamp"`
	CurrentPrice   float64      `json:"current_price"`
	Volatility     string       `json:"volatility"`
	Trend          Trend        `json:"trend"`
	ATR            float64      `json:"atr"`
	RSI            float64      `json:"rsi"`
	MarketBias     Trend        `json:"market_bias"`
	Features       []float64    `json:"features,omitempty"`
	Status         SignalStatus `json:"status"`
	Outcome        Outcome      `json:"outcome,omitempty"`
	PipsResult     float64      `json:"pips_result,omitempty"`
	CloseTime      time.Time    `json:"close_time,omitempty"`
	CloseReason    string       `json:"close_reason,omitempty"`
	OrderID        string       `json:"order_id,omitempty"`
}

// ClosureNotification is emitted when an active signal hits TP or SL.
type ClosureNotification struct {
	SignalID   string    `json:"signal_id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Outcome    Outcome   `json:"outcome"`
	Pips       float64   `json:"pips"`
	Duration   string    `json:"duration"`
	Reason     string    `json:"reason"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	SetupType  SetupType `json:"setup_type"`
}

// WinRateStats summarizes the closed-trade ledger.
type WinRateStats struct {
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Total        int     `json:"total"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
}
