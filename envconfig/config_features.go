// config_features.go - Dispatch-, Executor- und Bitmap-Konfiguration
//
// Dieses Modul enthaelt:
// - Parallelitaet der TAD-Kernels
// - Iterationsgrenze fuer bedingte Scopes
// - Defaults fuer die Bitmap-Kompression
package envconfig

import "runtime"

// =============================================================================
// Kernel-Parallelitaet
// =============================================================================

// NumThreads gibt die maximale Anzahl paralleler TAD-Worker zurueck
// Konfigurierbar via OPEXEC_NUM_THREADS
// 0 = GOMAXPROCS
func NumThreads() uint {
	if n := numThreads(); n > 0 {
		return n
	}
	return uint(runtime.GOMAXPROCS(0))
}

var numThreads = Uint("OPEXEC_NUM_THREADS", 0)

// =============================================================================
// Executor
// =============================================================================

const defaultMaxLoopIterations = 1 << 16

// MaxLoopIterations begrenzt die Wiederholungen eines bedingten Scopes
// Konfigurierbar via OPEXEC_MAX_LOOP_ITERATIONS
// 0 = Default (65536)
func MaxLoopIterations() uint64 {
	if n := maxLoopIterations(); n > 0 {
		return n
	}
	return defaultMaxLoopIterations
}

var maxLoopIterations = Uint64("OPEXEC_MAX_LOOP_ITERATIONS", defaultMaxLoopIterations)

// =============================================================================
// Bitmap-Kompression
// =============================================================================

var (
	// BitmapScheme ist das Standard-Schema ("exact" oder "quantized")
	BitmapScheme = StringWithDefault("OPEXEC_BITMAP_SCHEME", "exact")

	// BitmapThreshold ist der Standard-Schwellwert fuer die Kompression
	BitmapThreshold = Float32("OPEXEC_BITMAP_THRESHOLD", 1e-3)
)
