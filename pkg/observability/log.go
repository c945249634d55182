package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level; failures are
// logged at warn.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Register installs h as pipeline, cache and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnSampleStart(_ context.Context, source string) {
	h.Logger.Debug("sample started", "source", source)
}

func (h *LogHooks) OnSampleComplete(_ context.Context, source string, warnings int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("sample failed", "source", source, "duration", d, "error", err)
		return
	}
	h.Logger.Debug("sample complete", "source", source, "warnings", warnings, "duration", d)
}

func (h *LogHooks) OnStepComplete(_ context.Context, op string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("step failed", "op", op, "duration", d, "error", err)
		return
	}
	h.Logger.Debug("step complete", "op", op, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.Logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
