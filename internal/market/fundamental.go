package market

import (
	"math"
	"strings"
	"time"

	"github.com/Nixiestone/smcbot/models"
)

// currencyStrength is a static relative-strength table used when no
// external macro feed is wired. Higher means structurally stronger.
var currencyStrength = map[string]float64{
	"USD": 7.0,
	"EUR": 6.0,
	"GBP": 5.5,
	"CHF": 5.0,
	"JPY": 4.5,
	"CAD": 4.0,
	"AUD": 3.5,
	"NZD": 3.0,
	"XAU": 6.5,
	"XAG": 4.0,
}

// biasThreshold is the minimum strength gap before the fundamental
// read leans to one side.
const biasThreshold = 1.0

// AnalyzeFundamentals produces the non-technical read for a symbol at
// time t: relative currency strength, active session and liquidity,
// and a BUY/SELL/NEUTRAL bias with a confidence score.
func AnalyzeFundamentals(symbol string, t time.Time) models.FundamentalAnalysis {
	base, quote := splitSymbol(symbol)
	session, liquidity := sessionAt(t)

	fa := models.FundamentalAnalysis{
		Sentiment:     "NEUTRAL",
		BaseCurrency:  base,
		QuoteCurrency: quote,
		Session:       session,
		Liquidity:     liquidity,
		NewsImpact:    "NONE",
		Bias:          "NEUTRAL",
		Confidence:    50,
	}

	// Thin rollover liquidity is not worth trading through.
	if liquidity == "LOW" {
		fa.AvoidTrading = true
	}

	baseStrength, okBase := currencyStrength[base]
	quoteStrength, okQuote := currencyStrength[quote]
	if !okBase || !okQuote {
		return fa
	}

	diff := baseStrength - quoteStrength
	fa.RelativeStrength = diff

	switch {
	case diff > biasThreshold:
		fa.Bias = "BUY"
		fa.Sentiment = "RISK_ON"
	case diff < -biasThreshold:
		fa.Bias = "SELL"
		fa.Sentiment = "RISK_OFF"
	}
	if fa.Bias != "NEUTRAL" {
		fa.Confidence = 50 + math.Min(40, math.Abs(diff)*10)
	}

	return fa
}

// splitSymbol breaks a 6-character pair into base and quote currency
// codes. Anything non-standard returns empty parts.
func splitSymbol(symbol string) (string, string) {
	s := strings.ToUpper(symbol)
	if len(s) != 6 {
		return "", ""
	}
	return s[:3], s[3:]
}

// sessionAt maps a UTC timestamp to the dominant trading session and
// its typical liquidity.
func sessionAt(t time.Time) (string, string) {
	hour := t.UTC().Hour()
	switch {
	case hour >= 13 && hour < 17:
		return "LONDON_NY_OVERLAP", "HIGH"
	case hour >= 8 && hour < 13:
		return "LONDON", "HIGH"
	case hour >= 17 && hour < 21:
		return "NEW_YORK", "MEDIUM"
	case hour >= 0 && hour < 8:
		return "ASIA", "MEDIUM"
	default:
		return "ROLLOVER", "LOW"
	}
}
