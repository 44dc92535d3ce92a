// Package runtime owns the lifecycle of the single resident speech-synthesis
// engine instance: lazy load, concurrent-load coalescing, strict/fallback
// model resolution, idle eviction and the one-shot CPU-fallback retry on
// device-placement failures. All shared state lives in one mutex-guarded
// Runtime; the engine itself is opaque behind EngineAdapter.
package runtime
