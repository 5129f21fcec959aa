package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Nixiestone/smcbot/models"
)

// Config holds all application configuration
type Config struct {
	// Market data provider (broker gateway)
	ProviderBaseURL string `env:"PROVIDER_BASE_URL" envDefault:"http://localhost:8080"`
	ProviderAPIKey  string `env:"PROVIDER_API_KEY" envDefault:"-"`
	RequestTimeout  int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds

	// Symbols and timeframes (timeframe codes in minutes, gateway notation)
	Symbols          []string `env:"SYMBOLS"`
	HTFCode          string   `env:"HTF_CODE" envDefault:"240"`
	MTFCode          string   `env:"MTF_CODE" envDefault:"60"`
	LTFCode          string   `env:"LTF_CODE" envDefault:"15"`
	PrecisionCode    string   `env:"PRECISION_CODE" envDefault:"5"`
	HTFCandleCount   int      `env:"HTF_CANDLE_COUNT" envDefault:"200"`
	MTFCandleCount   int      `env:"MTF_CANDLE_COUNT" envDefault:"200"`
	LTFCandleCount   int      `env:"LTF_CANDLE_COUNT" envDefault:"500"`
	PrecisionCandles int      `env:"PRECISION_CANDLE_COUNT" envDefault:"500"`

	// SMC thresholds
	FVGMinSize          float64 `env:"FVG_MIN_SIZE" envDefault:"5"`
	OBLookback          int     `env:"OB_LOOKBACK" envDefault:"20"`
	OBBodyMultiplier    float64 `env:"OB_BODY_MULTIPLIER" envDefault:"2.0"`
	DisplacementFactor  float64 `env:"DISPLACEMENT_FACTOR" envDefault:"2.5"`
	StrongDisplacement  float64 `env:"STRONG_DISPLACEMENT" envDefault:"3.5"`
	MinRiskReward       float64 `env:"MIN_RISK_REWARD" envDefault:"3.0"`
	MinConfidence       float64 `env:"MIN_CONFIDENCE" envDefault:"60.0"`
	SLBufferPoints      float64 `env:"SL_BUFFER_POINTS" envDefault:"10"`
	SignalCooldownSec   int     `env:"SIGNAL_COOLDOWN" envDefault:"300"`
	DedupWindowHours    int     `env:"DEDUP_WINDOW_HOURS" envDefault:"24"`
	MLTrainingThreshold int     `env:"ML_TRAINING_THRESHOLD" envDefault:"20"`

	// Kill zones (UTC, HH:MM)
	LondonStart string `env:"LONDON_START" envDefault:"08:00"`
	LondonEnd   string `env:"LONDON_END" envDefault:"12:00"`
	NYStart     string `env:"NY_START" envDefault:"13:00"`
	NYEnd       string `env:"NY_END" envDefault:"17:00"`

	// Loop cadences
	ScanIntervalSec    int  `env:"SCAN_INTERVAL" envDefault:"300"`
	MonitorIntervalSec int  `env:"MONITOR_INTERVAL" envDefault:"30"`
	HourlyUpdate       bool `env:"HOURLY_UPDATE" envDefault:"true"`
	AutoExecute        bool `env:"AUTO_EXECUTE" envDefault:"false"`
	OrderVolume        float64

	// Telegram delivery
	TelegramToken   string `env:"TELEGRAM_BOT_TOKEN" envDefault:"-"`
	TelegramAdminID int64  `env:"TELEGRAM_ADMIN_ID" envDefault:"0"`

	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"-"`
	DBName     string `env:"DB_NAME" envDefault:"smcbot"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

var defaultSymbols = []string{
	// Forex majors
	"EURUSD", "GBPUSD", "USDJPY", "USDCHF", "AUDUSD", "USDCAD", "NZDUSD",
	// Crosses
	"EURJPY", "GBPJPY", "EURGBP",
	// Metals
	"XAUUSD",
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.ProviderBaseURL = getEnvWithDefault("PROVIDER_BASE_URL", "http://localhost:8080")
	cfg.ProviderAPIKey = os.Getenv("PROVIDER_API_KEY")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)

	cfg.Symbols = getEnvListWithDefault("SYMBOLS", defaultSymbols)
	cfg.HTFCode = getEnvWithDefault("HTF_CODE", "240")
	cfg.MTFCode = getEnvWithDefault("MTF_CODE", "60")
	cfg.LTFCode = getEnvWithDefault("LTF_CODE", "15")
	cfg.PrecisionCode = getEnvWithDefault("PRECISION_CODE", "5")
	cfg.HTFCandleCount = getEnvIntWithDefault("HTF_CANDLE_COUNT", 200)
	cfg.MTFCandleCount = getEnvIntWithDefault("MTF_CANDLE_COUNT", 200)
	cfg.LTFCandleCount = getEnvIntWithDefault("LTF_CANDLE_COUNT", 500)
	cfg.PrecisionCandles = getEnvIntWithDefault("PRECISION_CANDLE_COUNT", 500)

	cfg.FVGMinSize = getEnvFloatWithDefault("FVG_MIN_SIZE", 5)
	cfg.OBLookback = getEnvIntWithDefault("OB_LOOKBACK", 20)
	cfg.OBBodyMultiplier = getEnvFloatWithDefault("OB_BODY_MULTIPLIER", 2.0)
	cfg.DisplacementFactor = getEnvFloatWithDefault("DISPLACEMENT_FACTOR", 2.5)
	cfg.StrongDisplacement = getEnvFloatWithDefault("STRONG_DISPLACEMENT", 3.5)
	cfg.MinRiskReward = getEnvFloatWithDefault("MIN_RISK_REWARD", 3.0)
	cfg.MinConfidence = getEnvFloatWithDefault("MIN_CONFIDENCE", 60.0)
	cfg.SLBufferPoints = getEnvFloatWithDefault("SL_BUFFER_POINTS", 10)
	cfg.SignalCooldownSec = getEnvIntWithDefault("SIGNAL_COOLDOWN", 300)
	cfg.DedupWindowHours = getEnvIntWithDefault("DEDUP_WINDOW_HOURS", 24)
	cfg.MLTrainingThreshold = getEnvIntWithDefault("ML_TRAINING_THRESHOLD", 20)

	cfg.LondonStart = getEnvWithDefault("LONDON_START", "08:00")
	cfg.LondonEnd = getEnvWithDefault("LONDON_END", "12:00")
	cfg.NYStart = getEnvWithDefault("NY_START", "13:00")
	cfg.NYEnd = getEnvWithDefault("NY_END", "17:00")

	cfg.ScanIntervalSec = getEnvIntWithDefault("SCAN_INTERVAL", 300)
	cfg.MonitorIntervalSec = getEnvIntWithDefault("MONITOR_INTERVAL", 30)
	cfg.HourlyUpdate = getEnvBoolWithDefault("HOURLY_UPDATE", true)
	cfg.AutoExecute = getEnvBoolWithDefault("AUTO_EXECUTE", false)
	cfg.OrderVolume = getEnvFloatWithDefault("ORDER_VOLUME", 0.01)

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramAdminID = getEnvInt64WithDefault("TELEGRAM_ADMIN_ID", 0)

	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "smcbot")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	if err := cfg.validateKillZones(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateKillZones() error {
	for _, v := range []string{c.LondonStart, c.LondonEnd, c.NYStart, c.NYEnd} {
		if _, err := parseClock(v); err != nil {
			return fmt.Errorf("invalid kill zone time %q: %w", v, err)
		}
	}
	return nil
}

// InKillZone reports whether t (UTC) falls inside the London or New
// York session window.
func (c *Config) InKillZone(t time.Time) bool {
	minute := t.UTC().Hour()*60 + t.UTC().Minute()

	londonStart, _ := parseClock(c.LondonStart)
	londonEnd, _ := parseClock(c.LondonEnd)
	nyStart, _ := parseClock(c.NYStart)
	nyEnd, _ := parseClock(c.NYEnd)

	return (minute >= londonStart && minute <= londonEnd) ||
		(minute >= nyStart && minute <= nyEnd)
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour %q", parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute %q", parts[1])
	}
	return h*60 + m, nil
}

// symbolDefaults carries pip metadata for instruments the gateway may
// not describe. Values follow common broker conventions.
var symbolDefaults = map[string]models.SymbolInfo{
	"XAUUSD": {Point: 0.01, Spread: 0.2},
	"XAGUSD": {Point: 0.001, Spread: 0.03},
	"USDJPY": {Point: 0.01, Spread: 0.8},
	"EURJPY": {Point: 0.01, Spread: 1.0},
	"GBPJPY": {Point: 0.01, Spread: 1.2},
}

// SymbolInfoFor returns static metadata for a symbol, falling back to
// standard 4-decimal forex pip conventions.
func (c *Config) SymbolInfoFor(symbol string) models.SymbolInfo {
	if info, ok := symbolDefaults[symbol]; ok {
		return info
	}
	return models.SymbolInfo{Point: 0.0001, Spread: 1.0}
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvListWithDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
