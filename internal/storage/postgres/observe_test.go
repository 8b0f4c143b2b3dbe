package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"backtest-lab/internal/observability"
	"backtest-lab/internal/storage"
)

// Store methods record query metrics on every call; sentinel outcomes such
// as a missing row must not show up as query errors.
func TestObserve_SentinelsAreNotErrors(t *testing.T) {
	counter := observability.DefaultMetrics.DBQueryErrors.WithLabelValues("postgres", "observe.test")
	before := testutil.ToFloat64(counter)

	for _, sentinel := range []error{
		nil,
		storage.ErrNotFound,
		storage.ErrDuplicateKey,
		storage.ErrInvalidInput,
	} {
		err := sentinel
		observe("observe.test", time.Now(), &err)
	}
	assert.Equal(t, before, testutil.ToFloat64(counter))

	err := errors.New("connection reset")
	observe("observe.test", time.Now(), &err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
