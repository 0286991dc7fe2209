// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - StringWithDefault: String-Getter mit Default-Wert
// - Uint/Uint64/Float32: Zahlen-Getter mit Default-Wert
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
)

// =============================================================================
// String-Getter
// =============================================================================

// StringWithDefault gibt eine Funktion zurueck, die einen String mit Default-Wert liest
func StringWithDefault(key, defaultValue string) func() string {
	return func() string {
		if s := Var(key); s != "" {
			return s
		}
		return defaultValue
	}
}

// =============================================================================
// Zahlen-Getter
// =============================================================================

// Uint gibt eine Funktion zurueck, die einen uint mit Default-Wert liest
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Uint64 gibt eine Funktion zurueck, die einen uint64 mit Default-Wert liest
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// Float32 gibt eine Funktion zurueck, die einen endlichen, nicht-negativen
// float32 mit Default-Wert liest
func Float32(key string, defaultValue float32) func() float32 {
	return func() float32 {
		if s := Var(key); s != "" {
			f, err := strconv.ParseFloat(s, 32)
			if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return float32(f)
			}
		}
		return defaultValue
	}
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"OPEXEC_DEBUG":               {"OPEXEC_DEBUG", LogLevel(), "Show additional debug information (e.g. OPEXEC_DEBUG=1, 2 for trace)"},
		"OPEXEC_NUM_THREADS":         {"OPEXEC_NUM_THREADS", NumThreads(), "Maximum number of parallel workers for axis-restricted kernels (default: GOMAXPROCS)"},
		"OPEXEC_MAX_LOOP_ITERATIONS": {"OPEXEC_MAX_LOOP_ITERATIONS", MaxLoopIterations(), "Upper bound on replays of a conditional scope (default: 65536)"},
		"OPEXEC_BITMAP_SCHEME":       {"OPEXEC_BITMAP_SCHEME", BitmapScheme(), "Default threshold bitmap scheme, exact or quantized (default: exact)"},
		"OPEXEC_BITMAP_THRESHOLD":    {"OPEXEC_BITMAP_THRESHOLD", BitmapThreshold(), "Default threshold for bitmap compression (default: 0.001)"},
		"OPEXEC_PLANS":               {"OPEXEC_PLANS", Plans(), "Directory used to resolve relative plan paths"},
	}
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
