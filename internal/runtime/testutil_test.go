package runtime

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeAdapter is a configurable EngineAdapter for tests.
type fakeAdapter struct {
	mu sync.Mutex

	preflightErr error
	loadErr      error
	synthErrs    []error // popped one per Synthesize call; nil entry = success
	speakers     []string
	speakersErr  error
	unhealthy    map[string]bool

	// blockLoad and blockUnload, when non-nil, make the corresponding call
	// wait until the channel is closed.
	blockLoad   chan struct{}
	blockUnload chan struct{}

	loads      []fakeLoad
	unloads    int
	synthCalls int
	// resident is the model id the engine actually holds right now.
	resident string
}

type fakeLoad struct {
	modelID string
	device  DeviceConfig
}

func (f *fakeAdapter) Preflight() error { return f.preflightErr }

func (f *fakeAdapter) Load(ctx context.Context, modelID string, device DeviceConfig) error {
	f.mu.Lock()
	block := f.blockLoad
	f.loads = append(f.loads, fakeLoad{modelID: modelID, device: device})
	err := f.loadErr
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.resident = modelID
	f.mu.Unlock()
	return nil
}

func (f *fakeAdapter) Unload() error {
	f.mu.Lock()
	block := f.blockUnload
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	f.mu.Lock()
	f.unloads++
	f.resident = ""
	f.mu.Unlock()
	return nil
}

func (f *fakeAdapter) Synthesize(ctx context.Context, req SynthesisRequest) (Audio, error) {
	f.mu.Lock()
	f.synthCalls++
	var err error
	if len(f.synthErrs) > 0 {
		err = f.synthErrs[0]
		f.synthErrs = f.synthErrs[1:]
	}
	f.mu.Unlock()
	if err != nil {
		return Audio{}, err
	}
	return Audio{WAV: []byte("RIFFfake-wav-bytes"), SampleRate: 24000}, nil
}

func (f *fakeAdapter) Speakers(ctx context.Context) ([]string, error) {
	if f.speakersErr != nil {
		return nil, f.speakersErr
	}
	return f.speakers, nil
}

func (f *fakeAdapter) Health(modelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unhealthy[modelID]
}

func (f *fakeAdapter) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.loads)
}

func (f *fakeAdapter) residentModel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resident
}

func (f *fakeAdapter) unloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unloads
}

func (f *fakeAdapter) lastLoad(t *testing.T) fakeLoad {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.loads) == 0 {
		t.Fatalf("no loads recorded")
	}
	return f.loads[len(f.loads)-1]
}

// waitStatus polls until the runtime reaches want or the deadline passes.
func waitStatus(t *testing.T, r *Runtime, want Status) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := r.Snapshot()
		if snap.Status == want {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for status %s, have %s", want, snap.Status)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
