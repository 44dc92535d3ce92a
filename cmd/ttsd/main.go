package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ttsd/internal/catalog"
	"ttsd/internal/config"
	"ttsd/internal/engine"
	"ttsd/internal/httpapi"
	"ttsd/internal/runtime"
	"ttsd/pkg/types"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "ttsd",
		Short:        "HTTP daemon managing the lifecycle of a local speech synthesis engine",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "Path to config file (yaml/json/toml)")
	f.String("addr", "", "HTTP listen address, e.g. :8000")
	f.Duration("idle-unload", 0, "Unload the model after this idle duration (0 disables)")
	f.Bool("warm-load", false, "Load the default model on startup")
	f.String("model-id", "", "Model id for the warm load instead of the mode default")
	f.String("device-map", "", "Device placement passed to the engine (empty means automatic)")
	f.String("dtype", "", "Weight dtype passed to the engine")
	f.String("engine-url", "", "Base URL of an HTTP engine sidecar (empty disables synthesis)")
	f.String("log-level", "", "Log level: debug|info|warn|error")
	f.Int64("max-body-bytes", 0, "Maximum JSON request body size in bytes")
	return root
}

// resolveConfig layers the configuration: defaults, then config file, then
// TTSD_* environment, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, cfgPath string) (config.Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := config.Default()
	if cfgPath != "" {
		fileCfg, err := config.Load(cfgPath)
		if err != nil {
			return cfg, err
		}
		overlay(&cfg, fileCfg)
	}
	if err := config.FromEnv(&cfg); err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("addr") {
		cfg.Addr, _ = f.GetString("addr")
	}
	if f.Changed("idle-unload") {
		d, _ := f.GetDuration("idle-unload")
		cfg.IdleUnload = config.Duration(d)
	}
	if f.Changed("warm-load") {
		cfg.WarmLoad, _ = f.GetBool("warm-load")
	}
	if f.Changed("model-id") {
		cfg.ModelID, _ = f.GetString("model-id")
	}
	if f.Changed("device-map") {
		cfg.DeviceMap, _ = f.GetString("device-map")
	}
	if f.Changed("dtype") {
		cfg.Dtype, _ = f.GetString("dtype")
	}
	if f.Changed("engine-url") {
		cfg.EngineURL, _ = f.GetString("engine-url")
	}
	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}
	if f.Changed("max-body-bytes") {
		cfg.MaxBodyBytes, _ = f.GetInt64("max-body-bytes")
	}
	return cfg, nil
}

// overlay replaces dst fields that src sets to a non-zero value.
func overlay(dst *config.Config, src config.Config) {
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.IdleUnload != 0 {
		dst.IdleUnload = src.IdleUnload
	}
	if src.WarmLoad {
		dst.WarmLoad = true
	}
	if src.ModelID != "" {
		dst.ModelID = src.ModelID
	}
	if src.DeviceMap != "" {
		dst.DeviceMap = src.DeviceMap
	}
	if src.Dtype != "" {
		dst.Dtype = src.Dtype
	}
	if src.EngineURL != "" {
		dst.EngineURL = src.EngineURL
	}
	if src.EngineAPIKey != "" {
		dst.EngineAPIKey = src.EngineAPIKey
	}
	if src.EngineTimeout != 0 {
		dst.EngineTimeout = src.EngineTimeout
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.MaxBodyBytes != 0 {
		dst.MaxBodyBytes = src.MaxBodyBytes
	}
	if src.CORSEnabled {
		dst.CORSEnabled = true
	}
	if len(src.CORSOrigins) > 0 {
		dst.CORSOrigins = src.CORSOrigins
	}
	if len(src.CORSMethods) > 0 {
		dst.CORSMethods = src.CORSMethods
	}
	if len(src.CORSHeaders) > 0 {
		dst.CORSHeaders = src.CORSHeaders
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Str("service", "ttsd").Logger()
}

func run(cfg config.Config) error {
	logger := newLogger(cfg.LogLevel)
	httpapi.SetLogger(logger)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, cfg.CORSMethods, cfg.CORSHeaders)
	// Runtime events go through the stdlib logger; route them into zerolog.
	log.SetFlags(0)
	log.SetOutput(logger)

	adapter := engine.New()
	if cfg.EngineURL != "" {
		adapter = engine.NewRemote(cfg.EngineURL, cfg.EngineAPIKey, cfg.EngineTimeout.Std(), 10*time.Second)
	}

	rt := runtime.New(adapter, runtime.Config{
		IdleUnload: cfg.IdleUnload.Std(),
		Device:     runtime.DeviceConfig{DeviceMap: cfg.DeviceMap, Dtype: cfg.Dtype},
	})

	baseCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(baseCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(rt),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(baseCtx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Addr).Msg("ttsd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.WarmLoad {
		g.Go(func() error {
			req := types.LoadRequest{Mode: types.ModeVoiceDesign}
			if cfg.ModelID != "" {
				req.ModelID = cfg.ModelID
				if d, ok := catalog.Lookup(cfg.ModelID); ok {
					req.Mode = d.Mode
				}
			}
			// Warm load is best effort; a missing engine build must not
			// kill the server.
			if _, err := rt.Load(req); err != nil {
				logger.Warn().Err(err).Str("model", req.ModelID).Msg("warm load failed")
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown error")
		}
		if _, err := rt.Unload(); err != nil && !runtime.IsConflict(err) {
			logger.Warn().Err(err).Msg("shutdown unload failed")
		}
		return nil
	})
	return g.Wait()
}
