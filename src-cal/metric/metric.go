package metric

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"skej/src-cal/model"
)

// Counters tracks how the engines are being driven. Exposed on /metrics when
// the listener is enabled.
type Counters struct {
	EventsCreated prometheus.Counter
	SeriesCreated prometheus.Counter
	Updates       prometheus.Counter
	Copies        prometheus.Counter
	Conflicts     prometheus.Counter
}

func Init() *Counters {
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Name: name,
			Help: help,
		})
		if err := prometheus.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				c = are.ExistingCollector.(prometheus.Counter)
			} else {
				slog.Error("can't register metric", "name", name, "error", err)
			}
		} else {
			slog.Debug("metric registered", "name", name)
		}
		return c
	}
	return &Counters{
		EventsCreated: counter("skej_events_created_total", "Number of single events created"),
		SeriesCreated: counter("skej_series_created_total", "Number of recurring series created"),
		Updates:       counter("skej_updates_total", "Number of selector-based edits applied"),
		Copies:        counter("skej_copies_total", "Number of cross-calendar copy operations"),
		Conflicts:     counter("skej_conflicts_total", "Number of operations rejected as uniqueness conflicts"),
	}
}

// ObserveError bumps the conflict counter for Conflict-kind failures.
func (c *Counters) ObserveError(err error) {
	if c == nil || err == nil {
		return
	}
	if model.KindOf(err) == model.KindConflict {
		c.Conflicts.Inc()
	}
}
