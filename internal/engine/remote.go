package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ttsd/internal/runtime"
	"ttsd/pkg/types"
)

// remoteAdapter implements runtime.EngineAdapter by talking to a synthesis
// engine sidecar over HTTP. The sidecar owns the model weights; this adapter
// forwards lifecycle and synthesis calls and relays its failures verbatim so
// the runtime's retry heuristics can inspect them.
type remoteAdapter struct {
	baseURL    string
	apiKey     string
	reqTimeout time.Duration
	httpClient *http.Client
}

// NewRemote constructs a server-backed engine adapter.
func NewRemote(baseURL, apiKey string, reqTimeout, connectTimeout time.Duration) runtime.EngineAdapter {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0 on the client: loads can legitimately run for minutes,
	// so deadlines are applied per call via context.
	cli := &http.Client{Transport: tr, Timeout: 0}
	return &remoteAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		reqTimeout: reqTimeout,
		httpClient: cli,
	}
}

type remoteLoadRequest struct {
	ModelID   string `json:"model_id"`
	DeviceMap string `json:"device_map,omitempty"`
	Dtype     string `json:"dtype,omitempty"`
}

type remoteSynthesisRequest struct {
	Mode              types.Mode `json:"mode"`
	Text              string     `json:"text"`
	Language          string     `json:"language,omitempty"`
	Instruct          string     `json:"instruct,omitempty"`
	Speaker           string     `json:"speaker,omitempty"`
	ReferenceAudioB64 string     `json:"reference_audio_b64,omitempty"`
	ModelID           string     `json:"model_id,omitempty"`
}

func (a *remoteAdapter) Preflight() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := a.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return runtime.ErrDependencyUnavailable("engine server unreachable: " + err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return runtime.ErrDependencyUnavailable("engine server unhealthy: " + resp.Status)
	}
	return nil
}

func (a *remoteAdapter) Load(ctx context.Context, modelID string, device runtime.DeviceConfig) error {
	body, _ := json.Marshal(remoteLoadRequest{
		ModelID:   modelID,
		DeviceMap: device.DeviceMap,
		Dtype:     device.Dtype,
	})
	resp, err := a.do(ctx, http.MethodPost, "/load", bytes.NewReader(body))
	if err != nil {
		return translateErr(ctx, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New(readErrorBody(resp))
	}
	return nil
}

func (a *remoteAdapter) Unload() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	resp, err := a.do(ctx, http.MethodPost, "/unload", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New(readErrorBody(resp))
	}
	return nil
}

func (a *remoteAdapter) Synthesize(ctx context.Context, req runtime.SynthesisRequest) (runtime.Audio, error) {
	if a.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.reqTimeout)
		defer cancel()
	}
	payload := remoteSynthesisRequest{
		Mode:     req.Mode,
		Text:     req.Text,
		Language: req.Language,
		Instruct: req.Instruct,
		Speaker:  req.Speaker,
		ModelID:  req.ModelID,
	}
	if len(req.ReferenceAudio) > 0 {
		payload.ReferenceAudioB64 = base64.StdEncoding.EncodeToString(req.ReferenceAudio)
	}
	body, _ := json.Marshal(payload)
	resp, err := a.do(ctx, http.MethodPost, "/synthesize", bytes.NewReader(body))
	if err != nil {
		return runtime.Audio{}, translateErr(ctx, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Relayed verbatim: placeholder-weight failures surface here and the
		// runtime's transient predicate matches on the message.
		return runtime.Audio{}, errors.New(readErrorBody(resp))
	}
	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return runtime.Audio{}, translateErr(ctx, err)
	}
	rate := 24000
	if v := resp.Header.Get("X-Sample-Rate"); v != "" {
		if n, perr := strconv.Atoi(v); perr == nil && n > 0 {
			rate = n
		}
	}
	return runtime.Audio{WAV: wav, SampleRate: rate}, nil
}

func (a *remoteAdapter) Speakers(ctx context.Context) ([]string, error) {
	resp, err := a.do(ctx, http.MethodGet, "/speakers", nil)
	if err != nil {
		return nil, translateErr(ctx, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(readErrorBody(resp))
	}
	var out struct {
		Speakers []string `json:"speakers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Speakers, nil
}

func (a *remoteAdapter) Health(modelID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := a.do(ctx, http.MethodGet, "/health?model_id="+url.QueryEscape(modelID), nil)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (a *remoteAdapter) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}
	return a.httpClient.Do(req)
}

// translateErr prefers the context error so timeouts and client disconnects
// keep their canonical form.
func translateErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// readErrorBody extracts an error message from a failed engine response,
// unwrapping the {"error": ...} envelope when present.
func readErrorBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		return "engine server error: " + resp.Status
	}
	return msg
}
