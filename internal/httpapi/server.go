package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ttsd/internal/catalog"
	"ttsd/internal/runtime"
	"ttsd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Load(req types.LoadRequest) (runtime.Snapshot, error)
	Unload() (runtime.Snapshot, error)
	Synthesize(ctx context.Context, req runtime.SynthesisRequest) (runtime.Audio, error)
	Speakers(ctx context.Context, modelID string) (string, []string, error)
	Ready() bool
}

// adapterID names the single synthesis adapter this service fronts.
const adapterID = "qwen3-tts"

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints; audio/wav is not in the default
	// content-type set and passes through uncompressed.
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok", Service: serviceName})
	})

	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.VersionResponse{Service: serviceName, APIVersion: Version})
	})

	r.Get("/model/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Post("/model/load", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoadRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		snap, err := svc.Load(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		st := runtime.StatusFromSnapshot(snap)
		if snap.Status == runtime.StatusLoading {
			w.Header().Set("Retry-After", "5")
			writeJSON(w, http.StatusAccepted, st)
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	r.Post("/model/unload", func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Unload()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, runtime.StatusFromSnapshot(snap))
	})

	r.Get("/model/inventory", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.InventoryResponse{Models: catalog.Inventory()})
	})

	r.Get("/adapters", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.AdaptersResponse{Adapters: []types.AdapterInfo{{
			ID:         adapterID,
			Name:       "Qwen3 TTS",
			StatusPath: "/adapters/" + adapterID + "/status",
		}}})
	})

	r.Get("/adapters/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != adapterID {
			writeJSONError(w, http.StatusNotFound, "unknown adapter")
			return
		}
		writeJSON(w, http.StatusOK, types.AdapterStatusResponse{
			AdapterID:      adapterID,
			StatusResponse: svc.Status(),
		})
	})

	r.Get("/custom-voice/speakers", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := engineCallContext(r.Context())
		defer cancel()
		modelID, speakers, err := svc.Speakers(ctx, r.URL.Query().Get("model_id"))
		if err != nil {
			if r.Context().Err() != nil || shutdownCtx.Err() != nil {
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.SpeakersResponse{ModelID: modelID, Speakers: speakers})
	})

	r.Post("/synthesize/voice-design", func(w http.ResponseWriter, r *http.Request) {
		var req types.VoiceDesignRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !validateSynthesisBasics(w, req.Text, req.Format) {
			return
		}
		serveSynthesis(svc, w, r, "voice-design", runtime.SynthesisRequest{
			Mode:     types.ModeVoiceDesign,
			Text:     req.Text,
			Instruct: req.Instruct,
			Language: req.Language,
			ModelID:  req.ModelID,
		})
	})

	r.Post("/synthesize/custom-voice", func(w http.ResponseWriter, r *http.Request) {
		var req types.CustomVoiceRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !validateSynthesisBasics(w, req.Text, req.Format) {
			return
		}
		serveSynthesis(svc, w, r, "custom-voice", runtime.SynthesisRequest{
			Mode:     types.ModeCustomVoice,
			Text:     req.Text,
			Speaker:  req.Speaker,
			Instruct: req.Instruct,
			Language: req.Language,
			ModelID:  req.ModelID,
		})
	})

	r.Post("/synthesize/voice-clone", func(w http.ResponseWriter, r *http.Request) {
		var req types.VoiceCloneRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !validateSynthesisBasics(w, req.Text, req.Format) {
			return
		}
		ref, err := decodeReferenceAudio(req.ReferenceAudioB64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		serveSynthesis(svc, w, r, "voice-clone", runtime.SynthesisRequest{
			Mode:           types.ModeVoiceClone,
			Text:           req.Text,
			Language:       req.Language,
			ModelID:        req.ModelID,
			ReferenceAudio: ref,
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// serveSynthesis runs the gate-checked synthesis call and streams the WAV
// payload back with its sample rate.
func serveSynthesis(svc Service, w http.ResponseWriter, r *http.Request, route string, req runtime.SynthesisRequest) {
	start := time.Now()
	logRequestStart(r, route, req.ModelID)

	ctx, cancel := engineCallContext(r.Context())
	defer cancel()
	if synthesisTimeoutSecs > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, time.Duration(synthesisTimeoutSecs)*time.Second)
		defer tcancel()
	}

	audio, err := svc.Synthesize(ctx, req)
	if err != nil {
		// Client disconnect or shutdown; nothing useful left to write.
		if r.Context().Err() != nil || shutdownCtx.Err() != nil {
			return
		}
		status := writeServiceError(w, err)
		logRequestEnd(r, route, status, start, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("X-Sample-Rate", strconv.Itoa(audio.SampleRate))
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.WAV)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.WAV)
	logRequestEnd(r, route, http.StatusOK, start, nil)
}

// decodeJSON enforces the content type and body cap, then decodes into dst.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// validateSynthesisBasics checks the fields shared by all synthesis routes.
func validateSynthesisBasics(w http.ResponseWriter, text, format string) bool {
	if strings.TrimSpace(text) == "" {
		writeJSONError(w, http.StatusBadRequest, "text is required")
		return false
	}
	if format != "" && strings.ToLower(format) != "wav" {
		writeJSONError(w, http.StatusBadRequest, "unsupported format "+strconv.Quote(format)+"; only wav is available")
		return false
	}
	return true
}

// decodeReferenceAudio decodes base64 reference audio, tolerating a data:
// URI prefix.
func decodeReferenceAudio(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	if s == "" {
		return nil, errInvalidReferenceAudio("reference_audio_b64 is required")
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errInvalidReferenceAudio("reference_audio_b64 is not valid base64")
	}
	if len(b) == 0 {
		return nil, errInvalidReferenceAudio("reference_audio_b64 decoded to an empty payload")
	}
	return b, nil
}

type errInvalidReferenceAudio string

func (e errInvalidReferenceAudio) Error() string { return string(e) }

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
