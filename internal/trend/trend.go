package trend

import (
	"math"

	"github.com/Nixiestone/smcbot/internal/indicators"
	"github.com/Nixiestone/smcbot/models"
)

// minCandles is the history needed before any trend verdict is
// attempted; with less, Identify returns a neutral zero-confirmation
// result instead of computing on thin data.
const minCandles = 200

// Identify runs six independent trend estimators over a candle series
// and aggregates them into one verdict: majority direction bucket
// wins, any tie resolves to NEUTRAL, strength is the mean of all
// method strengths.
func Identify(candles []models.Candle) models.TrendAnalysis {
	if len(candles) < minCandles {
		return neutralAnalysis()
	}

	ema := emaVote(candles)
	votes := []models.TrendVote{
		ema,
		structureVote(candles),
		adxVote(candles),
		maSlopeVote(candles),
		priceActionVote(candles),
		volumeVote(candles, ema.Direction),
	}

	return aggregate(votes)
}

// emaVote counts how many of price>EMA20>EMA50>EMA100>EMA200 hold.
func emaVote(candles []models.Candle) models.TrendVote {
	price := candles[len(candles)-1].Close
	ema20 := indicators.CalculateEMA(candles, 20)
	ema50 := indicators.CalculateEMA(candles, 50)
	ema100 := indicators.CalculateEMA(candles, 100)
	ema200 := indicators.CalculateEMA(candles, 200)

	score := 0
	if price > ema20 {
		score++
	}
	if ema20 > ema50 {
		score++
	}
	if ema50 > ema100 {
		score++
	}
	if ema100 > ema200 {
		score++
	}

	vote := models.TrendVote{Method: "ema", Direction: models.TrendNeutral, Strength: 50}
	switch score {
	case 4:
		vote.Direction = models.TrendStrongBullish
		vote.Strength = 90
	case 3:
		vote.Direction = models.TrendBullish
		vote.Strength = 70
	case 1:
		vote.Direction = models.TrendBearish
		vote.Strength = 70
	case 0:
		vote.Direction = models.TrendStrongBearish
		vote.Strength = 90
	}
	return vote
}

// structureVote reads the HH/HL vs LH/LL swing pattern over the last
// 50 candles.
func structureVote(candles []models.Candle) models.TrendVote {
	lookback := 50
	if len(candles) < lookback {
		lookback = len(candles)
	}
	recent := candles[len(candles)-lookback:]

	var highs, lows []float64
	for i := 2; i < len(recent)-2; i++ {
		if recent[i].High > recent[i-1].High && recent[i].High > recent[i-2].High &&
			recent[i].High > recent[i+1].High && recent[i].High > recent[i+2].High {
			highs = append(highs, recent[i].High)
		}
		if recent[i].Low < recent[i-1].Low && recent[i].Low < recent[i-2].Low &&
			recent[i].Low < recent[i+1].Low && recent[i].Low < recent[i+2].Low {
			lows = append(lows, recent[i].Low)
		}
	}

	vote := models.TrendVote{Method: "structure", Direction: models.TrendNeutral, Strength: 50}
	if len(highs) < 2 || len(lows) < 2 {
		return vote
	}

	if len(highs) > 3 {
		highs = highs[len(highs)-3:]
	}
	if len(lows) > 3 {
		lows = lows[len(lows)-3:]
	}

	hh := ascending(highs)
	hl := ascending(lows)
	lh := descending(highs)
	ll := descending(lows)

	switch {
	case hh && hl:
		vote.Direction = models.TrendStrongBullish
		vote.Strength = 85
	case hh || hl:
		vote.Direction = models.TrendBullish
		vote.Strength = 65
	case lh && ll:
		vote.Direction = models.TrendStrongBearish
		vote.Strength = 85
	case lh || ll:
		vote.Direction = models.TrendBearish
		vote.Strength = 65
	}
	return vote
}

// adxVote uses Wilder's ADX with the directional index comparison.
func adxVote(candles []models.Candle) models.TrendVote {
	adx, plusDI, minusDI := indicators.CalculateADX(candles, 14)

	vote := models.TrendVote{Method: "adx", Direction: models.TrendNeutral, Strength: math.Min(100, adx*2)}
	if adx <= 25 {
		return vote
	}

	if plusDI > minusDI {
		vote.Direction = models.TrendBullish
		if adx > 40 {
			vote.Direction = models.TrendStrongBullish
		}
	} else {
		vote.Direction = models.TrendBearish
		if adx > 40 {
			vote.Direction = models.TrendStrongBearish
		}
	}
	return vote
}

// maSlopeVote fits a least-squares line through the last 10 values of
// the 50-period moving average and normalizes the slope by the recent
// price range.
func maSlopeVote(candles []models.Candle) models.TrendVote {
	vote := models.TrendVote{Method: "ma_slope", Direction: models.TrendNeutral, Strength: 50}
	if len(candles) < 60 {
		return vote
	}

	ma := make([]float64, 0, 10)
	for k := len(candles) - 10; k < len(candles); k++ {
		ma = append(ma, indicators.CalculateSMA(candles[:k+1], 50))
	}

	slope := linearSlope(ma)

	// Normalize against the last 50 closes' range
	high, low := candles[len(candles)-50].Close, candles[len(candles)-50].Close
	for i := len(candles) - 50; i < len(candles); i++ {
		if candles[i].Close > high {
			high = candles[i].Close
		}
		if candles[i].Close < low {
			low = candles[i].Close
		}
	}
	priceRange := high - low
	if priceRange <= 0 {
		return vote
	}
	normalized := slope / priceRange * 1000

	switch {
	case normalized > 5:
		vote.Direction = models.TrendStrongBullish
		vote.Strength = math.Min(100, 50+math.Abs(normalized)*5)
	case normalized > 2:
		vote.Direction = models.TrendBullish
		vote.Strength = math.Min(80, 50+math.Abs(normalized)*5)
	case normalized < -5:
		vote.Direction = models.TrendStrongBearish
		vote.Strength = math.Min(100, 50+math.Abs(normalized)*5)
	case normalized < -2:
		vote.Direction = models.TrendBearish
		vote.Strength = math.Min(80, 50+math.Abs(normalized)*5)
	}
	return vote
}

// priceActionVote counts candle colors over the last 20 bars together
// with the net percentage move.
func priceActionVote(candles []models.Candle) models.TrendVote {
	recent := candles[len(candles)-20:]

	var bullish, bearish int
	for _, c := range recent {
		if c.Bullish() {
			bullish++
		} else if c.Close < c.Open {
			bearish++
		}
	}

	priceChange := 0.0
	if recent[0].Close != 0 {
		priceChange = (recent[len(recent)-1].Close - recent[0].Close) / recent[0].Close * 100
	}

	vote := models.TrendVote{Method: "price_action", Direction: models.TrendNeutral, Strength: 50}
	switch {
	case bullish > 14 && priceChange > 1:
		vote.Direction = models.TrendStrongBullish
		vote.Strength = 85
	case bullish > 11:
		vote.Direction = models.TrendBullish
		vote.Strength = 65
	case bearish > 14 && priceChange < -1:
		vote.Direction = models.TrendStrongBearish
		vote.Strength = 85
	case bearish > 11:
		vote.Direction = models.TrendBearish
		vote.Strength = 65
	}
	return vote
}

// volumeVote confirms the EMA-implied direction when recent volume
// runs hot against the 50-candle baseline; otherwise it votes NEUTRAL.
func volumeVote(candles []models.Candle, emaDirection models.Trend) models.TrendVote {
	vote := models.TrendVote{Method: "volume", Direction: models.TrendNeutral, Strength: 50}

	var recentVol, avgVol float64
	for i := len(candles) - 10; i < len(candles); i++ {
		recentVol += float64(candles[i].Volume)
	}
	recentVol /= 10
	for i := len(candles) - 50; i < len(candles); i++ {
		avgVol += float64(candles[i].Volume)
	}
	avgVol /= 50

	if avgVol <= 0 {
		return vote
	}

	ratio := recentVol / avgVol
	switch {
	case ratio > 1.5:
		vote.Direction = emaDirection
		vote.Strength = 80
	case ratio > 1.2:
		vote.Direction = emaDirection
		vote.Strength = 65
	}
	return vote
}

func aggregate(votes []models.TrendVote) models.TrendAnalysis {
	buckets := map[models.Trend]int{
		models.TrendStrongBullish: 0,
		models.TrendBullish:       0,
		models.TrendNeutral:       0,
		models.TrendBearish:       0,
		models.TrendStrongBearish: 0,
	}

	var totalStrength float64
	for _, vote := range votes {
		buckets[vote.Direction]++
		totalStrength += vote.Strength
	}

	maxCount := 0
	for _, count := range buckets {
		if count > maxCount {
			maxCount = count
		}
	}

	var winners []models.Trend
	for direction, count := range buckets {
		if count == maxCount {
			winners = append(winners, direction)
		}
	}

	// Any tie resolves to NEUTRAL, deliberately simple.
	final := models.TrendNeutral
	if len(winners) == 1 {
		final = winners[0]
	}

	avgStrength := totalStrength / float64(len(votes))

	// Confirmations: methods agreeing with the final direction family.
	confirmations := 0
	for _, vote := range votes {
		switch {
		case final.IsBullish() && vote.Direction.IsBullish():
			confirmations++
		case final.IsBearish() && vote.Direction.IsBearish():
			confirmations++
		case final == models.TrendNeutral && vote.Direction == models.TrendNeutral:
			confirmations++
		}
	}

	quality := "poor"
	switch {
	case confirmations >= 5 && avgStrength > 75:
		quality = "excellent"
	case confirmations >= 4 && avgStrength > 65:
		quality = "good"
	case confirmations >= 3:
		quality = "fair"
	}

	return models.TrendAnalysis{
		Trend:         final,
		Strength:      avgStrength,
		Quality:       quality,
		Confirmations: confirmations,
		Votes:         buckets,
		Methods:       votes,
	}
}

func neutralAnalysis() models.TrendAnalysis {
	return models.TrendAnalysis{
		Trend:    models.TrendNeutral,
		Strength: 50,
		Quality:  "poor",
	}
}

func ascending(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}
	return len(values) > 1
}

func descending(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			return false
		}
	}
	return len(values) > 1
}

func linearSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
