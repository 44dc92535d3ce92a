// Package catalog holds the static set of supported model checkpoints and
// their mode capabilities. The set is fixed at build time; availability of a
// checkpoint is probed against the local HuggingFace-style cache.
package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"ttsd/internal/common/fsutil"
	"ttsd/pkg/types"
)

// Models lists every supported checkpoint in a stable order.
var Models = []types.ModelDescriptor{
	{ID: "Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign", Mode: types.ModeVoiceDesign},
	{ID: "Qwen/Qwen3-TTS-12Hz-0.6B-CustomVoice", Mode: types.ModeCustomVoice},
	{ID: "Qwen/Qwen3-TTS-12Hz-1.7B-CustomVoice", Mode: types.ModeCustomVoice},
	{ID: "Qwen/Qwen3-TTS-12Hz-0.6B-Base", Mode: types.ModeVoiceClone},
	{ID: "Qwen/Qwen3-TTS-12Hz-1.7B-Base", Mode: types.ModeVoiceClone},
}

// defaultByMode maps each mode to its preferred checkpoint.
var defaultByMode = map[types.Mode]string{
	types.ModeVoiceDesign: "Qwen/Qwen3-TTS-12Hz-1.7B-VoiceDesign",
	types.ModeCustomVoice: "Qwen/Qwen3-TTS-12Hz-1.7B-CustomVoice",
	types.ModeVoiceClone:  "Qwen/Qwen3-TTS-12Hz-1.7B-Base",
}

// Lookup returns the descriptor for id.
func Lookup(id string) (types.ModelDescriptor, bool) {
	for _, d := range Models {
		if d.ID == id {
			return d, true
		}
	}
	return types.ModelDescriptor{}, false
}

// DefaultFor returns the preferred checkpoint for a mode.
func DefaultFor(mode types.Mode) (string, bool) {
	id, ok := defaultByMode[mode]
	return id, ok
}

// CachePath returns the local cache directory a checkpoint would occupy,
// following the HuggingFace hub layout (models--org--name under $HF_HOME/hub).
func CachePath(modelID string) string {
	hfHome := os.Getenv("HF_HOME")
	if hfHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		hfHome = filepath.Join(home, ".cache", "huggingface")
	} else if expanded, err := fsutil.ExpandHome(hfHome); err == nil {
		hfHome = expanded
	}
	slug := "models--" + strings.ReplaceAll(modelID, "/", "--")
	return filepath.Join(hfHome, "hub", slug)
}

// Available reports whether a local snapshot of the checkpoint exists.
func Available(modelID string) bool {
	snapshots := filepath.Join(CachePath(modelID), "snapshots")
	if !fsutil.PathExists(snapshots) {
		return false
	}
	entries, err := os.ReadDir(snapshots)
	if err != nil {
		return false
	}
	return len(entries) > 0
}

// Inventory reports every catalog model with its local availability.
func Inventory() []types.InventoryEntry {
	out := make([]types.InventoryEntry, 0, len(Models))
	for _, d := range Models {
		out = append(out, types.InventoryEntry{
			Mode:      d.Mode,
			ModelID:   d.ID,
			Available: Available(d.ID),
			LocalPath: CachePath(d.ID),
		})
	}
	return out
}
