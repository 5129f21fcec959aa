package signal

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixiestone/smcbot/config"
	"github.com/Nixiestone/smcbot/internal/ml"
	"github.com/Nixiestone/smcbot/models"
)

// Manager owns the signal lifecycle: generation gates, the active
// registry, closure monitoring and the running win/loss ledger. All
// exported methods are safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	active    map[string]*models.Signal
	recentIDs map[string]time.Time
	cooldowns map[string]time.Time

	wins      int
	losses    int
	grossWin  float64
	grossLoss float64

	cfg      *config.Config
	provider models.MarketDataProvider
	scorer   models.ConfidenceScorer
	store    models.SignalStore
	calc     Calculator
	log      zerolog.Logger

	now func() time.Time
}

// NewManager wires the lifecycle manager. store may be nil when
// persistence is disabled.
func NewManager(cfg *config.Config, provider models.MarketDataProvider, scorer models.ConfidenceScorer, store models.SignalStore) *Manager {
	return &Manager{
		active:    make(map[string]*models.Signal),
		recentIDs: make(map[string]time.Time),
		cooldowns: make(map[string]time.Time),
		cfg:       cfg,
		provider:  provider,
		scorer:    scorer,
		store:     store,
		calc: Calculator{
			MinRiskReward:      cfg.MinRiskReward,
			SLBufferPoints:     cfg.SLBufferPoints,
			StrongDisplacement: cfg.StrongDisplacement,
		},
		log: log.With().Str("component", "signal").Logger(),
		now: time.Now,
	}
}

// Generate runs the full gate chain against a market snapshot and, if
// everything passes, emits and registers a new signal. The returned
// string is the skip reason when no signal is produced.
func (m *Manager) Generate(ctx context.Context, state *models.MarketState) (*models.Signal, string) {
	now := m.now().UTC()

	m.mu.Lock()
	if until, ok := m.cooldowns[state.Symbol]; ok && now.Before(until) {
		m.mu.Unlock()
		return nil, "symbol in cooldown"
	}
	m.mu.Unlock()

	if !state.InKillZone {
		return nil, "outside kill zone"
	}
	if state.Fundamental.AvoidTrading {
		return nil, "fundamental avoid flag set"
	}

	setup := ValidateSetup(state)
	if !setup.Valid {
		return nil, "no validated setup"
	}

	confidence := m.scorer.Score(state)
	if confidence < m.cfg.MinConfidence {
		return nil, fmt.Sprintf("confidence %.1f below threshold %.1f", confidence, m.cfg.MinConfidence)
	}

	info := m.symbolInfo(ctx, state.Symbol)
	levels, err := m.calc.Compute(state, setup, info)
	if err != nil {
		return nil, err.Error()
	}

	id := signalID(state.Symbol, setup.Direction, levels.Entry, now)

	m.mu.Lock()
	if _, seen := m.recentIDs[id]; seen {
		m.mu.Unlock()
		return nil, "duplicate signal suppressed"
	}
	m.recentIDs[id] = now
	m.pruneHistoryLocked(now)
	m.cooldowns[state.Symbol] = now.Add(time.Duration(m.cfg.SignalCooldownSec) * time.Second)
	m.mu.Unlock()

	sig := &models.Signal{
		SignalID:       id,
		Symbol:         state.Symbol,
		Direction:      setup.Direction,
		EntryType:      levels.EntryType,
		EntryPrice:     levels.Entry,
		StopLoss:       levels.StopLoss,
		TakeProfit:     levels.TakeProfit,
		SLPips:         levels.SLPips,
		TPPips:         levels.TPPips,
		RiskReward:     levels.RiskReward,
		SetupType:      setup.Type,
		SignalStrength: signalStrength(state, confidence),
		MLConfidence:   confidence,
		Timestamp:      now,
		CurrentPrice:   state.CurrentPrice,
		Volatility:     state.Volatility,
		Trend:          state.HTFTrend,
		ATR:            state.ATR,
		RSI:            state.RSI,
		MarketBias:     state.Bias,
		Features:       ml.FeatureVector(state),
		Status:         models.StatusActive,
	}

	if m.cfg.AutoExecute {
		orderID, err := m.provider.PlaceOrder(ctx, sig.Symbol, sig.Direction, sig.EntryType,
			m.cfg.OrderVolume, sig.EntryPrice, sig.StopLoss, sig.TakeProfit)
		if err != nil {
			m.log.Error().Err(err).Str("signal_id", id).Msg("order placement failed")
		} else {
			sig.OrderID = orderID
		}
	}

	if m.store != nil {
		if err := m.store.InsertSignal(ctx, sig); err != nil {
			m.log.Error().Err(err).Str("signal_id", id).Msg("persisting signal failed")
		}
	}

	m.mu.Lock()
	m.active[id] = sig
	m.mu.Unlock()

	m.log.Info().
		Str("signal_id", id).
		Str("symbol", sig.Symbol).
		Str("direction", string(sig.Direction)).
		Str("setup", string(sig.SetupType)).
		Float64("confidence", confidence).
		Msg("signal generated")

	return sig, ""
}

// CheckActive polls live quotes for every active signal and closes the
// ones that reached their target or stop. The take profit is tested
// before the stop loss; when one tick satisfies both the trade counts
// as a win. A closed signal never returns to the active registry.
func (m *Manager) CheckActive(ctx context.Context) []models.ClosureNotification {
	m.mu.Lock()
	snapshot := make([]*models.Signal, 0, len(m.active))
	for _, sig := range m.active {
		snapshot = append(snapshot, sig)
	}
	m.mu.Unlock()

	var closures []models.ClosureNotification
	for _, sig := range snapshot {
		tick, err := m.provider.GetTick(ctx, sig.Symbol)
		if err != nil {
			m.log.Warn().Err(err).Str("symbol", sig.Symbol).Msg("tick unavailable, skipping monitor pass")
			continue
		}

		// A BUY exits on the ask, a SELL on the bid.
		price := tick.Ask
		if sig.Direction == models.DirectionSell {
			price = tick.Bid
		}

		outcome, hit := evaluateExit(sig, price)
		if !hit {
			continue
		}

		closures = append(closures, m.close(ctx, sig, outcome, price))
	}
	return closures
}

func evaluateExit(sig *models.Signal, price float64) (models.Outcome, bool) {
	if sig.Direction == models.DirectionBuy {
		switch {
		case price >= sig.TakeProfit:
			return models.OutcomeWin, true
		case price <= sig.StopLoss:
			return models.OutcomeLoss, true
		}
		return "", false
	}
	switch {
	case price <= sig.TakeProfit:
		return models.OutcomeWin, true
	case price >= sig.StopLoss:
		return models.OutcomeLoss, true
	}
	return "", false
}

func (m *Manager) close(ctx context.Context, sig *models.Signal, outcome models.Outcome, exitPrice float64) models.ClosureNotification {
	now := m.now().UTC()
	info := m.cfg.SymbolInfoFor(sig.Symbol)

	pips := (exitPrice - sig.EntryPrice) / info.Point
	if sig.Direction == models.DirectionSell {
		pips = -pips
	}

	reason := closeReason(sig, outcome)

	m.mu.Lock()
	sig.Status = models.StatusClosed
	sig.Outcome = outcome
	sig.PipsResult = pips
	sig.CloseTime = now
	sig.CloseReason = reason
	delete(m.active, sig.SignalID)

	if outcome == models.OutcomeWin {
		m.wins++
		m.grossWin += pips
	} else {
		m.losses++
		m.grossLoss += -pips
	}
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.CloseSignal(ctx, sig); err != nil {
			m.log.Error().Err(err).Str("signal_id", sig.SignalID).Msg("persisting closure failed")
		}
	}

	m.log.Info().
		Str("signal_id", sig.SignalID).
		Str("outcome", string(outcome)).
		Float64("pips", pips).
		Msg("signal closed")

	return models.ClosureNotification{
		SignalID:   sig.SignalID,
		Symbol:     sig.Symbol,
		Direction:  sig.Direction,
		Outcome:    outcome,
		Pips:       pips,
		Duration:   formatDuration(now.Sub(sig.Timestamp)),
		Reason:     reason,
		EntryPrice: sig.EntryPrice,
		ExitPrice:  exitPrice,
		SetupType:  sig.SetupType,
	}
}

// WinRate reports the in-memory closed-trade ledger.
func (m *Manager) WinRate() models.WinRateStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := models.WinRateStats{
		Wins:   m.wins,
		Losses: m.losses,
		Total:  m.wins + m.losses,
	}
	if stats.Total > 0 {
		stats.WinRate = float64(m.wins) / float64(stats.Total) * 100
	}
	if m.grossLoss > 0 {
		stats.ProfitFactor = m.grossWin / m.grossLoss
	}
	return stats
}

// Active returns a snapshot of the active signals.
func (m *Manager) Active() []*models.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Signal, 0, len(m.active))
	for _, sig := range m.active {
		out = append(out, sig)
	}
	return out
}

// ActiveCount returns the number of signals currently monitored.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *Manager) symbolInfo(ctx context.Context, symbol string) models.SymbolInfo {
	if info, err := m.provider.GetSymbolInfo(ctx, symbol); err == nil && info != nil && info.Point > 0 {
		return *info
	}
	return m.cfg.SymbolInfoFor(symbol)
}

func (m *Manager) pruneHistoryLocked(now time.Time) {
	window := time.Duration(m.cfg.DedupWindowHours) * time.Hour
	for id, seen := range m.recentIDs {
		if now.Sub(seen) > window {
			delete(m.recentIDs, id)
		}
	}
}

// signalID derives the dedup identity of a signal: symbol, direction,
// entry rounded to 2 decimals and the hour bucket, hashed and
// truncated to 12 hex characters.
func signalID(symbol string, direction models.Direction, entry float64, t time.Time) string {
	raw := fmt.Sprintf("%s_%s_%.2f_%s", symbol, direction, entry, t.UTC().Format("2006010215"))
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])[:12]
}

// signalStrength scores the setup as a whole: trend conviction, a
// higher-timeframe break of structure, zone confluence, the model
// confidence and kill zone timing all contribute.
func signalStrength(state *models.MarketState, confidence float64) string {
	score := 0.0

	switch {
	case state.HTFTrend == models.TrendStrongBullish || state.HTFTrend == models.TrendStrongBearish:
		score += 25
	case state.HTFTrend.IsBullish() || state.HTFTrend.IsBearish():
		score += 15
	}

	if state.HTFStructure.BOSDetected {
		score += 15
	}

	switch {
	case len(state.FVGs) > 0 && len(state.OrderBlocks) > 0:
		score += 20
	case len(state.FVGs) > 0 || len(state.OrderBlocks) > 0:
		score += 10
	}

	score += confidence / 100 * 30

	if state.InKillZone {
		score += 10
	}

	switch {
	case score >= 80:
		return "VERY_HIGH"
	case score >= 65:
		return "HIGH"
	case score >= 50:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// closeReason builds the human-readable rationale attached to a
// closure event.
func closeReason(sig *models.Signal, outcome models.Outcome) string {
	if outcome == models.OutcomeWin {
		return targetReason(sig)
	}
	return stopReason(sig)
}

func targetReason(sig *models.Signal) string {
	var reasons []string

	trendText := strings.ToLower(strings.ReplaceAll(string(sig.Trend), "_", " "))
	switch {
	case sig.Trend == models.TrendStrongBullish || sig.Trend == models.TrendStrongBearish:
		reasons = append(reasons, fmt.Sprintf("strong %s trend continuation", trendText))
	case sig.Trend.IsBullish() || sig.Trend.IsBearish():
		reasons = append(reasons, fmt.Sprintf("%s trend followed through", trendText))
	}

	switch sig.SetupType {
	case models.SetupFVGOBConfluence:
		reasons = append(reasons, "high-quality FVG + Order Block confluence provided strong support/resistance")
	case models.SetupOrderBlock:
		reasons = append(reasons, "Order Block held as expected")
	case models.SetupFVGOnly:
		reasons = append(reasons, "Fair Value Gap reacted perfectly")
	}

	if sig.MLConfidence > 75 {
		reasons = append(reasons, fmt.Sprintf("high ML confidence (%.1f%%) predicted accurate direction", sig.MLConfidence))
	}

	reasons = append(reasons,
		"market structure confirmed the move as analyzed",
		fmt.Sprintf("achieved %.1f:1 risk-reward as planned", sig.RiskReward))

	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return fmt.Sprintf("TP hit because %s. The %s setup followed institutional order flow perfectly.",
		strings.Join(reasons, ", "), sig.Direction)
}

func stopReason(sig *models.Signal) string {
	reasons := []string{"market structure invalidated the setup"}

	if sig.Direction == models.DirectionBuy {
		reasons = append(reasons, "unexpected bearish pressure appeared")
	} else {
		reasons = append(reasons, "unexpected bullish pressure appeared")
	}

	if sig.Volatility == "HIGH" {
		reasons = append(reasons, "high volatility caused wider-than-expected swings")
	}
	reasons = append(reasons,
		"potential fundamental catalyst shifted sentiment",
		"possible liquidity grab/stop hunt before reversal")

	return fmt.Sprintf("SL hit because %s. This is normal - risk was properly managed at %.1f pips.",
		strings.Join(reasons[:2], ", "), sig.SLPips)
}

// formatDuration renders a trade duration as "3h 27m" or "45m".
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
