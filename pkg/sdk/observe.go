package sdk

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// observer logs and counts SDK calls. A nil logger or registerer turns that half off.
type observer struct {
	logger   *slog.Logger
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopassist",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "SDK calls by operation and outcome (ok, transport or the server error code).",
	}, []string{"operation", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shopassist",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK call duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"operation"})

	var err error
	if o.calls, err = register(reg, calls); err != nil {
		return nil, err
	}
	if o.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return o, nil
}

// register adds c to reg. Several clients may share one registry, so an
// already registered collector of the same type is returned instead.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return c, fmt.Errorf("shopassist: register metric: %w", err)
	}
	existing, ok := dup.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("shopassist: metric registered with type %T", dup.ExistingCollector)
	}
	return existing, nil
}

// outcome is the status label: "ok", the server error code, or "transport".
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if apiErr, ok := IsAPIError(err); ok {
		if apiErr.Code != "" {
			return apiErr.Code
		}
		return fmt.Sprintf("http_%d", apiErr.StatusCode)
	}
	return "transport"
}

func (o *observer) observe(op, requestID string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	status := outcome(err)

	if o.calls != nil {
		o.calls.WithLabelValues(op, status).Inc()
		o.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
	if o.logger == nil {
		return
	}
	attrs := []any{"op", op, "request_id", requestID, "status", status, "duration", elapsed}
	if err != nil {
		o.logger.Warn("shopassist call failed", append(attrs, "error", err)...)
		return
	}
	o.logger.Debug("shopassist call completed", attrs...)
}
