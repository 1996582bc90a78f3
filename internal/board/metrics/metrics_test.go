package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCommand("MoveCard", "ok", time.Now())
	m.ObserveCommand("MoveCard", "ok", time.Now())
	m.ObserveCommand("MoveCard", "not_found", time.Now())
	m.IncrementConflictRetry()
	m.IncrementBoardsCreated()
	m.IncrementCacheLookup("hit")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("MoveCard", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommandsTotal.WithLabelValues("MoveCard", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BoardsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
