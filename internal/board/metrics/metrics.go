package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the board module.
// Tracks command outcomes, command latency and optimistic-concurrency retries.
type Metrics struct {
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	ConflictRetries prometheus.Counter
	BoardsCreated   prometheus.Counter
	CacheLookups    *prometheus.CounterVec
}

// New registers the board metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_board_commands_total",
			Help: "Board commands by name and outcome code",
		}, []string{"command", "outcome"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskboard_board_command_duration_seconds",
			Help:    "Duration of board commands including load and save",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"command"}),
		ConflictRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_board_conflict_retries_total",
			Help: "Board commands re-applied after a version conflict",
		}),
		BoardsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_boards_created_total",
			Help: "Total number of boards created",
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_board_cache_lookups_total",
			Help: "Board cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
	}
}

// ObserveCommand records the outcome and duration of one command.
// Call with time.Now() captured at the start of the command.
func (m *Metrics) ObserveCommand(command, outcome string, start time.Time) {
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementConflictRetry() {
	m.ConflictRetries.Inc()
}

func (m *Metrics) IncrementBoardsCreated() {
	m.BoardsCreated.Inc()
}

func (m *Metrics) IncrementCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}
