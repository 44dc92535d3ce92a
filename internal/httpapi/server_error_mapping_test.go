package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"ttsd/internal/runtime"
)

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func TestSynthesisErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", runtime.ErrInvalidRequest("unknown model_id"), http.StatusBadRequest},
		{"conflict", runtime.ErrConflict("loaded model serves a different mode"), http.StatusConflict},
		{"not ready", runtime.ErrNotReady(runtime.StatusLoading), http.StatusServiceUnavailable},
		{"dependency unavailable", runtime.ErrDependencyUnavailable("engine missing"), http.StatusServiceUnavailable},
		{"synthesis failed", runtime.ErrSynthesisFailed("boom"), http.StatusInternalServerError},
		{"generic", errors.New("boom"), http.StatusInternalServerError},
		{"http error passthrough", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{synthErr: tc.err}
			w := postJSON(t, NewMux(svc), "/synthesize/voice-design", `{"text":"hi"}`)
			if w.Code != tc.want {
				t.Fatalf("status=%d want=%d body=%s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestNotReadyCarriesRetryAfter(t *testing.T) {
	svc := &mockService{synthErr: runtime.ErrNotReady(runtime.StatusLoading)}
	w := postJSON(t, NewMux(svc), "/synthesize/voice-design", `{"text":"hi"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if w.Header().Get("Retry-After") != "5" {
		t.Fatalf("missing Retry-After, headers=%v", w.Header())
	}
}

func TestLoadErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"strict unknown id", runtime.ErrInvalidRequest("unknown model_id"), http.StatusBadRequest},
		{"engine missing", runtime.ErrDependencyUnavailable("engine missing"), http.StatusServiceUnavailable},
		{"load failed", runtime.ErrLoadFailed("weights corrupt"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{loadErr: tc.err}
			w := postJSON(t, NewMux(svc), "/model/load", `{"mode":"voice_design"}`)
			if w.Code != tc.want {
				t.Fatalf("status=%d want=%d body=%s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
