package market

import (
	"testing"
	"time"

	"github.com/Nixiestone/smcbot/models"
)

func TestAnalyzeFundamentals(t *testing.T) {
	london := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		symbol       string
		at           time.Time
		wantBias     string
		wantSession  string
		wantAvoid    bool
		wantBaseCcy  string
		wantQuoteCcy string
	}{
		{
			name:         "Strong base currency leans long",
			symbol:       "USDJPY",
			at:           london,
			wantBias:     "BUY",
			wantSession:  "LONDON",
			wantBaseCcy:  "USD",
			wantQuoteCcy: "JPY",
		},
		{
			name:         "Weak base currency leans short",
			symbol:       "AUDUSD",
			at:           london,
			wantBias:     "SELL",
			wantSession:  "LONDON",
			wantBaseCcy:  "AUD",
			wantQuoteCcy: "USD",
		},
		{
			name:        "Gap at the threshold stays neutral",
			symbol:      "EURUSD",
			at:          london,
			wantBias:    "NEUTRAL",
			wantSession: "LONDON",
		},
		{
			name:        "Rollover hours set the avoid flag",
			symbol:      "USDJPY",
			at:          time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC),
			wantBias:    "BUY",
			wantSession: "ROLLOVER",
			wantAvoid:   true,
		},
		{
			name:        "Unknown instrument stays neutral",
			symbol:      "BTCUSD",
			at:          london,
			wantBias:    "NEUTRAL",
			wantSession: "LONDON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := AnalyzeFundamentals(tt.symbol, tt.at)
			if fa.Bias != tt.wantBias {
				t.Errorf("bias = %v, want %v", fa.Bias, tt.wantBias)
			}
			if fa.Session != tt.wantSession {
				t.Errorf("session = %v, want %v", fa.Session, tt.wantSession)
			}
			if fa.AvoidTrading != tt.wantAvoid {
				t.Errorf("avoid = %v, want %v", fa.AvoidTrading, tt.wantAvoid)
			}
			if tt.wantBaseCcy != "" && fa.BaseCurrency != tt.wantBaseCcy {
				t.Errorf("base = %v, want %v", fa.BaseCurrency, tt.wantBaseCcy)
			}
			if tt.wantQuoteCcy != "" && fa.QuoteCurrency != tt.wantQuoteCcy {
				t.Errorf("quote = %v, want %v", fa.QuoteCurrency, tt.wantQuoteCcy)
			}
		})
	}
}

func TestAnalyzeFundamentalsConfidence(t *testing.T) {
	fa := AnalyzeFundamentals("AUDUSD", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	// Strength gap of 3.5 scales to 50 + 35
	if fa.Confidence != 85 {
		t.Errorf("confidence = %v, want 85", fa.Confidence)
	}
}

func TestSessionAt(t *testing.T) {
	tests := []struct {
		hour          int
		wantSession   string
		wantLiquidity string
	}{
		{3, "ASIA", "MEDIUM"},
		{9, "LONDON", "HIGH"},
		{14, "LONDON_NY_OVERLAP", "HIGH"},
		{18, "NEW_YORK", "MEDIUM"},
		{22, "ROLLOVER", "LOW"},
	}

	for _, tt := range tests {
		session, liquidity := sessionAt(time.Date(2025, 3, 10, tt.hour, 0, 0, 0, time.UTC))
		if session != tt.wantSession || liquidity != tt.wantLiquidity {
			t.Errorf("sessionAt(%02d:00) = %s/%s, want %s/%s",
				tt.hour, session, liquidity, tt.wantSession, tt.wantLiquidity)
		}
	}
}

func TestWeightedBias(t *testing.T) {
	bosUp := models.StructureState{BOSDetected: true, BOSDirection: models.TrendBullish}
	bosDown := models.StructureState{BOSDetected: true, BOSDirection: models.TrendBearish}
	noBOS := models.StructureState{}

	tests := []struct {
		name        string
		trend       models.Trend
		htf         models.StructureState
		fundamental string
		want        models.Trend
	}{
		{"All bullish", models.TrendBullish, bosUp, "BUY", models.TrendBullish},
		{"Trend alone clears the margin", models.TrendBullish, noBOS, "NEUTRAL", models.TrendBullish},
		{"Structure alone is not enough", models.TrendNeutral, bosUp, "NEUTRAL", models.TrendNeutral},
		{"Opposing heavyweights cancel", models.TrendBullish, noBOS, "SELL", models.TrendNeutral},
		{"Bearish majority", models.TrendStrongBearish, bosDown, "NEUTRAL", models.TrendBearish},
		{"Everything flat", models.TrendNeutral, noBOS, "NEUTRAL", models.TrendNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := models.FundamentalAnalysis{Bias: tt.fundamental}
			if got := weightedBias(tt.trend, tt.htf, fa); got != tt.want {
				t.Errorf("weightedBias() = %v, want %v", got, tt.want)
			}
		})
	}
}
