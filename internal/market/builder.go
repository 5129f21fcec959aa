package market

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixiestone/smcbot/config"
	"github.com/Nixiestone/smcbot/internal/indicators"
	"github.com/Nixiestone/smcbot/internal/patterns"
	"github.com/Nixiestone/smcbot/internal/structure"
	"github.com/Nixiestone/smcbot/internal/trend"
	"github.com/Nixiestone/smcbot/models"
)

// Builder assembles a MarketState snapshot for one symbol per cycle.
// Each Build fetches fresh data across four timeframes; any provider
// failure aborts the snapshot and the caller skips the symbol.
type Builder struct {
	provider models.MarketDataProvider
	cfg      *config.Config
	log      zerolog.Logger
}

// NewBuilder creates a market state builder on top of a data provider.
func NewBuilder(provider models.MarketDataProvider, cfg *config.Config) *Builder {
	return &Builder{
		provider: provider,
		cfg:      cfg,
		log:      log.With().Str("component", "market").Logger(),
	}
}

// Build fetches candles on all configured timeframes plus a live tick
// and derives the full analysis snapshot. Returns an error when any
// required series is missing, never a partial state.
func (b *Builder) Build(ctx context.Context, symbol string) (*models.MarketState, error) {
	htf, err := b.provider.GetCandles(ctx, symbol, b.cfg.HTFCode, b.cfg.HTFCandleCount)
	if err != nil {
		return nil, fmt.Errorf("htf candles for %s: %w", symbol, err)
	}
	mtf, err := b.provider.GetCandles(ctx, symbol, b.cfg.MTFCode, b.cfg.MTFCandleCount)
	if err != nil {
		return nil, fmt.Errorf("mtf candles for %s: %w", symbol, err)
	}
	ltf, err := b.provider.GetCandles(ctx, symbol, b.cfg.LTFCode, b.cfg.LTFCandleCount)
	if err != nil {
		return nil, fmt.Errorf("ltf candles for %s: %w", symbol, err)
	}
	precision, err := b.provider.GetCandles(ctx, symbol, b.cfg.PrecisionCode, b.cfg.PrecisionCandles)
	if err != nil {
		return nil, fmt.Errorf("precision candles for %s: %w", symbol, err)
	}
	if len(htf) == 0 || len(mtf) == 0 || len(ltf) == 0 || len(precision) == 0 {
		return nil, fmt.Errorf("empty candle series for %s", symbol)
	}

	tick, err := b.provider.GetTick(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("tick for %s: %w", symbol, err)
	}

	now := time.Now().UTC()
	trendAnalysis := trend.Identify(htf)
	htfStructure := structure.Analyze(htf)
	liquidity := structure.IdentifyLiquidityZones(htf)
	mtfStructure := structure.Analyze(mtf)
	ltfStructure := structure.Analyze(ltf)
	fundamental := AnalyzeFundamentals(symbol, now)

	state := &models.MarketState{
		Symbol:       symbol,
		Timestamp:    now,
		CurrentPrice: tick.Bid,
		Spread:       tick.Ask - tick.Bid,

		HTFTrend:        trendAnalysis.Trend,
		HTFStructure:    htfStructure,
		LiquidityLevels: liquidity,
		TrendQuality:    trendAnalysis.Quality,
		TrendStrength:   trendAnalysis.Strength,

		MTFStructure: mtfStructure,
		LTFStructure: ltfStructure,

		FVGs:        patterns.DetectFVGs(ltf, b.cfg.FVGMinSize),
		OrderBlocks: patterns.DetectOrderBlocks(ltf, b.cfg.OBLookback, b.cfg.OBBodyMultiplier),

		M1Displacement: patterns.CheckDisplacement(precision, b.cfg.DisplacementFactor),
		LiquiditySweep: patterns.CheckLiquiditySweep(precision, liquidity),

		Volatility:  indicators.CalculateVolatility(ltf),
		ATR:         indicators.CalculateATR(ltf, 14),
		RSI:         indicators.CalculateRSI(ltf, 14),
		VolumeRatio: indicators.CalculateVolumeRatio(ltf),

		InKillZone:  b.cfg.InKillZone(now),
		Fundamental: fundamental,
	}
	state.Bias = weightedBias(trendAnalysis.Trend, htfStructure, fundamental)

	b.log.Debug().
		Str("symbol", symbol).
		Str("trend", string(state.HTFTrend)).
		Str("bias", string(state.Bias)).
		Int("fvgs", len(state.FVGs)).
		Int("order_blocks", len(state.OrderBlocks)).
		Msg("market state built")

	return state, nil
}

// weightedBias combines the higher-timeframe trend (weight 2), the
// higher-timeframe break of structure (weight 1) and the fundamental
// read (weight 2). The winning side must lead by more than one point
// or the bias stays NEUTRAL.
func weightedBias(htfTrend models.Trend, htf models.StructureState, fundamental models.FundamentalAnalysis) models.Trend {
	var bullish, bearish float64

	switch {
	case htfTrend.IsBullish():
		bullish += 2
	case htfTrend.IsBearish():
		bearish += 2
	}

	if htf.BOSDetected {
		switch htf.BOSDirection {
		case models.TrendBullish:
			bullish++
		case models.TrendBearish:
			bearish++
		}
	}

	switch fundamental.Bias {
	case "BUY":
		bullish += 2
	case "SELL":
		bearish += 2
	}

	switch {
	case bullish > bearish+1:
		return models.TrendBullish
	case bearish > bullish+1:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}
