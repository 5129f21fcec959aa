package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/Nixiestone/smcbot/models"
)

func TestFormatSignal(t *testing.T) {
	sig := &models.Signal{
		SignalID:       "abc123def456",
		Symbol:         "EURUSD",
		Direction:      models.DirectionBuy,
		EntryType:      models.OrderMarket,
		EntryPrice:     1.1000,
		StopLoss:       1.0990,
		TakeProfit:     1.1030,
		SLPips:         10,
		TPPips:         30,
		RiskReward:     3.0,
		SetupType:      models.SetupFVGOBConfluence,
		SignalStrength: "HIGH",
		MLConfidence:   78,
		Trend:          models.TrendBullish,
		MarketBias:     models.TrendBullish,
		Timestamp:      time.Now(),
	}

	text := formatSignal(sig)
	for _, want := range []string{"BUY EURUSD", "MARKET", "1.10000", "1.09900", "1.10300", "1:3.0", "78%", "HIGH", "abc123def456"} {
		if !strings.Contains(text, want) {
			t.Errorf("formatSignal() missing %q in:\n%s", want, text)
		}
	}
}

func TestFormatClosure(t *testing.T) {
	c := &models.ClosureNotification{
		SignalID:   "abc123def456",
		Symbol:     "EURUSD",
		Direction:  models.DirectionBuy,
		Outcome:    models.OutcomeWin,
		Pips:       30,
		Duration:   "2h 15m",
		Reason:     "TP hit because Order Block held as expected",
		EntryPrice: 1.1000,
		ExitPrice:  1.1030,
	}

	text := formatClosure(c)
	for _, want := range []string{"WIN BUY EURUSD", "+30.0 pips", "2h 15m", "Order Block held as expected"} {
		if !strings.Contains(text, want) {
			t.Errorf("formatClosure() missing %q in:\n%s", want, text)
		}
	}
}

func TestFormatStats(t *testing.T) {
	stats := models.WinRateStats{Wins: 6, Losses: 4, Total: 10, WinRate: 60, ProfitFactor: 1.8}
	text := formatStats(stats, 3)

	for _, want := range []string{"10 (W 6 / L 4)", "60.0%", "1.80", "Active signals: 3"} {
		if !strings.Contains(text, want) {
			t.Errorf("formatStats() missing %q in:\n%s", want, text)
		}
	}
}
