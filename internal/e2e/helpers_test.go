package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ttsd/internal/httpapi"
	"ttsd/internal/runtime"
	"ttsd/pkg/types"
)

// fakeEngine is an in-process engine standing in for the native runtime.
type fakeEngine struct {
	mu       sync.Mutex
	loaded   string
	speakers []string
	loadErr  error
}

func (f *fakeEngine) Preflight() error { return nil }

func (f *fakeEngine) Load(ctx context.Context, modelID string, device runtime.DeviceConfig) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.mu.Lock()
	f.loaded = modelID
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Unload() error {
	f.mu.Lock()
	f.loaded = ""
	f.mu.Unlock()
	return nil
}

func (f *fakeEngine) Synthesize(ctx context.Context, req runtime.SynthesisRequest) (runtime.Audio, error) {
	return runtime.Audio{WAV: []byte("RIFFdata"), SampleRate: 24000}, nil
}

func (f *fakeEngine) Speakers(ctx context.Context) ([]string, error) {
	return append([]string(nil), f.speakers...), nil
}

func (f *fakeEngine) Health(modelID string) bool { return true }

// newServer builds the full stack on a test listener: runtime wired to the
// given engine, fronted by the production mux.
func newServer(t *testing.T, eng runtime.EngineAdapter, cfg runtime.Config) (*httptest.Server, *runtime.Runtime) {
	t.Helper()
	rt := runtime.New(eng, cfg)
	srv := httptest.NewServer(httpapi.NewMux(rt))
	t.Cleanup(srv.Close)
	return srv, rt
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// awaitStatus polls /model/status until the wanted lifecycle state shows up.
func awaitStatus(t *testing.T, base, want string) types.StatusResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var st types.StatusResponse
	for {
		resp, body := httpGet(t, base+"/model/status")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("/model/status %d %s", resp.StatusCode, string(body))
		}
		if err := json.Unmarshal(body, &st); err != nil {
			t.Fatalf("/model/status json: %v body=%s", err, string(body))
		}
		if st.Status == want {
			return st
		}
		if time.Now().After(deadline) {
			t.Fatalf("status never reached %q; last=%q", want, st.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
