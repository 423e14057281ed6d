package db

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Hook
// ─────────────────────────────────────────────────────────────────────────────

// Hook observes every statement. Implementations must be goroutine-safe and
// should not block; panics are recovered and logged.
type Hook interface {
	// BeforeQuery runs immediately before the statement reaches the driver.
	BeforeQuery(ctx context.Context, query string, args []any)

	// AfterQuery runs once the driver returned. err is already mapped.
	AfterQuery(ctx context.Context, query string, args []any, duration time.Duration, err error)
}

type hookChain struct {
	hooks []Hook
}

func newHookChain(hooks []Hook) hookChain {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return hookChain{hooks: filtered}
}

func (c hookChain) Before(ctx context.Context, query string, args []any) {
	for _, h := range c.hooks {
		func() {
			defer recoverHook("BeforeQuery")
			h.BeforeQuery(ctx, query, args)
		}()
	}
}

func (c hookChain) After(ctx context.Context, query string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		func() {
			defer recoverHook("AfterQuery")
			h.AfterQuery(ctx, query, args, d, err)
		}()
	}
}

// afterFunc defers AfterQuery until a Row is scanned, because QueryRow
// errors only surface in Scan.
func (c hookChain) afterFunc(ctx context.Context, query string, args []any, start time.Time) func(error) {
	if len(c.hooks) == 0 {
		return nil
	}
	return func(err error) {
		c.After(ctx, query, args, time.Since(start), err)
	}
}

func recoverHook(phase string) {
	if r := recover(); r != nil {
		slog.Error("lambok/db: hook panic", "phase", phase, "panic", r)
	}
}

// Operation returns the leading SQL verb of query in upper case ("SELECT",
// "INSERT", ...), or "OTHER" when there is none. It keeps metric label
// cardinality bounded.
func Operation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "OTHER"
	}
	switch verb := strings.ToUpper(fields[0]); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "WITH":
		return verb
	}
	return "OTHER"
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging hook
// ─────────────────────────────────────────────────────────────────────────────

// LogHookConfig configures NewLogHook.
type LogHookConfig struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// SlowQueryThreshold logs at warn level above this duration. Zero disables it.
	SlowQueryThreshold time.Duration
	// LogArgs includes bound parameters. Leave off when args may hold passwords.
	LogArgs bool
}

// NewLogHook returns a Hook that writes one structured entry per statement.
func NewLogHook(cfg LogHookConfig) Hook {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &logHook{cfg: cfg}
}

type logHook struct {
	cfg LogHookConfig
}

func (h *logHook) BeforeQuery(context.Context, string, []any) {}

func (h *logHook) AfterQuery(ctx context.Context, query string, args []any, d time.Duration, err error) {
	attrs := []any{
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", d),
	}
	if h.cfg.LogArgs && len(args) > 0 {
		attrs = append(attrs, slog.Any("args", args))
	}

	switch {
	case err != nil && !IsNotFound(err):
		h.cfg.Logger.ErrorContext(ctx, "lambok/db: query error", append(attrs, slog.Any("error", err))...)
	case h.cfg.SlowQueryThreshold > 0 && d > h.cfg.SlowQueryThreshold:
		h.cfg.Logger.WarnContext(ctx, "lambok/db: slow query", attrs...)
	default:
		h.cfg.Logger.DebugContext(ctx, "lambok/db: query", attrs...)
	}
}

func trimQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics hook
// ─────────────────────────────────────────────────────────────────────────────

// MetricsCollector receives one observation per statement.
type MetricsCollector interface {
	RecordQuery(operation string, duration time.Duration, success bool)
}

// NewMetricsHook returns a Hook that reports to c.
func NewMetricsHook(c MetricsCollector) Hook { return &metricsHook{c: c} }

type metricsHook struct{ c MetricsCollector }

func (h *metricsHook) BeforeQuery(context.Context, string, []any) {}

func (h *metricsHook) AfterQuery(_ context.Context, query string, _ []any, d time.Duration, err error) {
	// A missing row is an answer, not a failure.
	h.c.RecordQuery(Operation(query), d, err == nil || IsNotFound(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// Tracing hook
// ─────────────────────────────────────────────────────────────────────────────

// Tracer records a finished statement as a span starting at start.
type Tracer interface {
	TraceQuery(ctx context.Context, query string, start time.Time, duration time.Duration, err error)
}

// NewTracingHook returns a Hook that reports to t.
func NewTracingHook(t Tracer) Hook { return &tracingHook{t: t} }

type tracingHook struct{ t Tracer }

func (h *tracingHook) BeforeQuery(context.Context, string, []any) {}

func (h *tracingHook) AfterQuery(ctx context.Context, query string, _ []any, d time.Duration, err error) {
	h.t.TraceQuery(ctx, query, time.Now().Add(-d), d, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Composite hook
// ─────────────────────────────────────────────────────────────────────────────

// CompositeHook fans out to several hooks in order.
func CompositeHook(hooks ...Hook) Hook { return &compositeHook{hooks: newHookChain(hooks)} }

type compositeHook struct{ hooks hookChain }

func (c *compositeHook) BeforeQuery(ctx context.Context, q string, args []any) {
	c.hooks.Before(ctx, q, args)
}

func (c *compositeHook) AfterQuery(ctx context.Context, q string, args []any, d time.Duration, err error) {
	c.hooks.After(ctx, q, args, d, err)
}
