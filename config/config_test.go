package config

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"08:00", 480, false},
		{"13:30", 810, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"08:60", 0, true},
		{"0800", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseClock(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseClock(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseClock(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestInKillZone(t *testing.T) {
	cfg := &Config{
		LondonStart: "08:00", LondonEnd: "12:00",
		NYStart: "13:00", NYEnd: "17:00",
	}

	tests := []struct {
		name string
		hour int
		min  int
		want bool
	}{
		{"Before London", 7, 59, false},
		{"London open", 8, 0, true},
		{"London close boundary", 12, 0, true},
		{"Lunch gap", 12, 30, false},
		{"New York session", 15, 0, true},
		{"After New York", 17, 1, false},
		{"Midnight", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Date(2025, 3, 10, tt.hour, tt.min, 0, 0, time.UTC)
			if got := cfg.InKillZone(at); got != tt.want {
				t.Errorf("InKillZone(%02d:%02d) = %v, want %v", tt.hour, tt.min, got, tt.want)
			}
		})
	}
}

func TestValidateKillZones(t *testing.T) {
	cfg := &Config{LondonStart: "8am", LondonEnd: "12:00", NYStart: "13:00", NYEnd: "17:00"}
	if err := cfg.validateKillZones(); err == nil {
		t.Error("validateKillZones() accepted a malformed window")
	}
}

func TestSymbolInfoFor(t *testing.T) {
	cfg := &Config{}

	gold := cfg.SymbolInfoFor("XAUUSD")
	if gold.Point != 0.01 {
		t.Errorf("XAUUSD point = %v, want 0.01", gold.Point)
	}

	jpy := cfg.SymbolInfoFor("USDJPY")
	if jpy.Point != 0.01 {
		t.Errorf("USDJPY point = %v, want 0.01", jpy.Point)
	}

	fx := cfg.SymbolInfoFor("EURUSD")
	if fx.Point != 0.0001 {
		t.Errorf("EURUSD fallback point = %v, want 0.0001", fx.Point)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "hello")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_FLOAT", "2.5")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_LIST", "EURUSD, GBPUSD ,XAUUSD")
	t.Setenv("TEST_BAD_INT", "not-a-number")

	if v := getEnvWithDefault("TEST_STR", "x"); v != "hello" {
		t.Errorf("getEnvWithDefault = %v", v)
	}
	if v := getEnvWithDefault("TEST_MISSING", "fallback"); v != "fallback" {
		t.Errorf("getEnvWithDefault missing = %v", v)
	}
	if v := getEnvIntWithDefault("TEST_INT", 0); v != 42 {
		t.Errorf("getEnvIntWithDefault = %v", v)
	}
	if v := getEnvIntWithDefault("TEST_BAD_INT", 7); v != 7 {
		t.Errorf("getEnvIntWithDefault bad input = %v, want default", v)
	}
	if v := getEnvFloatWithDefault("TEST_FLOAT", 0); v != 2.5 {
		t.Errorf("getEnvFloatWithDefault = %v", v)
	}
	if v := getEnvBoolWithDefault("TEST_BOOL", false); !v {
		t.Error("getEnvBoolWithDefault = false, want true")
	}

	list := getEnvListWithDefault("TEST_LIST", nil)
	if len(list) != 3 || list[0] != "EURUSD" || list[1] != "GBPUSD" || list[2] != "XAUUSD" {
		t.Errorf("getEnvListWithDefault = %v", list)
	}
}
