package runtime

import (
	"testing"
	"time"

	"ttsd/pkg/types"
)

func TestUnloadClearsResolvedFields(t *testing.T) {
	fa := &fakeAdapter{}
	r := New(fa, Config{})
	if _, err := r.Load(types.LoadRequest{Mode: types.ModeVoiceDesign}); err != nil {
		t.Fatalf("load: %v", err)
	}
	waitStatus(t, r, StatusLoaded)

	snap, err := r.Unload()
	if err != nil {
		t.Fatalf("unload: %v", err)
	}
	if snap.Status != StatusUnloaded {
		t.Fatalf("expected unloaded, got %s", snap.Status)
	}
	if snap.ResolvedModelID != "" || snap.ResolvedMode != "" || snap.InstanceID != "" {
		t.Fatalf("resolved fields must be cleared: %+v", snap)
	}
	if !snap.LoadedAt.IsZero() || !snap.LastUsedAt.IsZero() {
		t.Fatalf("timestamps must be cleared: %+v", snap)
	}
	if fa.unloadCount() != 1 {
		t.Fatalf("expected engine unload once, got %d", fa.unloadCount())
	}
}

func TestUnloadNoopWhenUnloaded(t *testing.T) {
	fa := &fakeAdapter{}
	r := New(fa, Config{})
	snap, err := r.Unload()
	if err != nil {
		t.Fatalf("unload: %v", err)
	}
	if snap.Status != StatusUnloaded {
		t.Fatalf("expected unloaded, got %s", snap.Status)
	}
	if fa.unloadCount() != 0 {
		t.Fatalf("engine must not be touched, got %d unloads", fa.unloadCount())
	}
}

func TestUnloadConflictsWhileLoading(t *testing.T) {
	fa := &fakeAdapter{blockLoad: make(chan struct{})}
	r := New(fa, Config{})
	if _, err := r.Load(types.LoadRequest{Mode: types.ModeVoiceDesign}); err != nil {
		t.Fatalf("load: %v", err)
	}

	_, err := r.Unload()
	if err == nil || !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := r.Snapshot().Status; got != StatusLoading {
		t.Fatalf("conflicting unload must not change state, got %s", got)
	}

	close(fa.blockLoad)
	waitStatus(t, r, StatusLoaded)
}

func TestUnloadReleaseOrderedBeforeNextLoad(t *testing.T) {
	fa := &fakeAdapter{blockUnload: make(chan struct{})}
	r := New(fa, Config{})
	if _, err := r.Load(types.LoadRequest{Mode: types.ModeVoiceDesign}); err != nil {
		t.Fatalf("load: %v", err)
	}
	waitStatus(t, r, StatusLoaded)

	unloadDone := make(chan struct{})
	go func() {
		defer close(unloadDone)
		if _, err := r.Unload(); err != nil {
			t.Errorf("unload: %v", err)
		}
	}()
	// The unloaded transition commits while the engine release is stalled.
	waitStatus(t, r, StatusUnloaded)

	snap, err := r.Load(types.LoadRequest{Mode: types.ModeCustomVoice})
	if err != nil {
		t.Fatalf("load during stalled release: %v", err)
	}
	if snap.Status != StatusLoading {
		t.Fatalf("expected loading, got %s", snap.Status)
	}
	// The new engine load must queue behind the pending release.
	time.Sleep(30 * time.Millisecond)
	if got := fa.loadCount(); got != 1 {
		t.Fatalf("engine load started before the release finished, %d loads", got)
	}

	close(fa.blockUnload)
	<-unloadDone
	waitStatus(t, r, StatusLoaded)
	if got := fa.residentModel(); got != customVoiceDefault {
		t.Fatalf("late release evicted the fresh instance; engine holds %q", got)
	}
	if fa.unloadCount() != 1 {
		t.Fatalf("expected one engine unload, got %d", fa.unloadCount())
	}
	if fa.loadCount() != 2 {
		t.Fatalf("expected 2 engine loads, got %d", fa.loadCount())
	}
}

func TestUnloadFromErrorState(t *testing.T) {
	fa := &fakeAdapter{loadErr: ErrDependencyUnavailable("boom")}
	r := New(fa, Config{})
	if _, err := r.Load(types.LoadRequest{Mode: types.ModeVoiceDesign}); err != nil {
		t.Fatalf("load: %v", err)
	}
	waitStatus(t, r, StatusError)

	snap, err := r.Unload()
	if err != nil {
		t.Fatalf("unload from error: %v", err)
	}
	if snap.Status != StatusUnloaded || snap.LastError != "" {
		t.Fatalf("expected clean unloaded state, got %+v", snap)
	}
}
