package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCollectorWithRegistry("test", reg), reg
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.RecordConnectionOpened()
	c.RecordConnectionClosed("local")
	c.RecordChannelOpened()
	c.RecordChannelClosed(404)
	c.RecordRPC("queue.declare", time.Now(), nil)
	c.RecordMessagePublished(10)
	c.RecordConsumerRemoved(true)
}

func TestChannelGauge(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordChannelOpened()
	c.RecordChannelOpened()
	c.RecordChannelOpened()
	c.RecordChannelClosed(406)
	c.RecordChannelsReleased(1)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.ChannelsOpen))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.ChannelsOpened))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.ChannelsClosed.WithLabelValues("406")))
}

func TestRPCOutcome(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordRPC("queue.declare", time.Now(), nil)
	c.RecordRPC("queue.declare", time.Now(), errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(c.RPCTotal.WithLabelValues("queue.declare", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.RPCTotal.WithLabelValues("queue.declare", "error")))
}

func TestMessageCounters(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordMessagePublished(1024)
	c.RecordMessageConfirmed()
	c.RecordMessageReturned()
	c.RecordMessageRejected()
	c.RecordMessageDelivered(512)
	c.RecordMessageAcknowledged()

	assert.Equal(t, float64(1024), testutil.ToFloat64(c.MessagesPublishedBytes))
	assert.Equal(t, float64(512), testutil.ToFloat64(c.MessagesDeliveredBytes))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.MessagesReturned))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.MessagesRejected))
}

func TestConsumerGauge(t *testing.T) {
	c, _ := newTestCollector(t)

	c.RecordConsumerAdded()
	c.RecordConsumerAdded()
	c.RecordConsumerRemoved(false)
	c.RecordConsumerRemoved(true)

	assert.Equal(t, float64(0), testutil.ToFloat64(c.ConsumersActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.ConsumersCancelled))
}

func TestServerHandlers(t *testing.T) {
	c, reg := newTestCollector(t)
	c.RecordConnectionOpened()

	mux := newMux(reg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_connections_opened_total 1"))
}

func TestServerDefaultAddr(t *testing.T) {
	assert.Equal(t, ":9419", NewServer("").Addr())
	assert.Equal(t, "127.0.0.1:9000", NewServer("127.0.0.1:9000").Addr())
}

func TestSharedCollectorIsReused(t *testing.T) {
	a := Shared("shared_test")
	b := Shared("shared_test")
	assert.Same(t, a, b)
}
