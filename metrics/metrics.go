package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for AMQP client connections. A nil
// *Collector is valid and records nothing.
type Collector struct {
	// Connection metrics
	ConnectionsOpened prometheus.Counter
	ConnectionsClosed *prometheus.CounterVec
	ConnectionBlocked prometheus.Gauge

	// Channel metrics
	ChannelsOpen   prometheus.Gauge
	ChannelsOpened prometheus.Counter
	ChannelsClosed *prometheus.CounterVec

	// RPC metrics
	RPCTotal    *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	// Frame routing metrics
	FramesReceived *prometheus.CounterVec
	FramesStashed  prometheus.Counter
	FramesDropped  prometheus.Counter

	// Message metrics
	MessagesPublished      prometheus.Counter
	MessagesPublishedBytes prometheus.Counter
	MessagesConfirmed      prometheus.Counter
	MessagesReturned       prometheus.Counter
	MessagesRejected       prometheus.Counter
	MessagesDelivered      prometheus.Counter
	MessagesDeliveredBytes prometheus.Counter
	MessagesAcknowledged   prometheus.Counter

	// Consumer metrics
	ConsumersActive    prometheus.Gauge
	ConsumersCancelled prometheus.Counter
}

// NewCollector creates a collector registered with the default registry
func NewCollector(namespace string) *Collector {
	return NewCollectorWithRegistry(namespace, prometheus.DefaultRegisterer)
}

var (
	sharedMu sync.Mutex
	shared   = map[string]*Collector{}
)

// Shared returns the collector for namespace on the default registry,
// creating it on first use. Connections opened from configuration share it
// so repeated opens do not register the same metrics twice.
func Shared(namespace string) *Collector {
	if namespace == "" {
		namespace = "amqp_client"
	}
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if c, ok := shared[namespace]; ok {
		return c
	}
	c := NewCollector(namespace)
	shared[namespace] = c
	return c
}

// NewCollectorWithRegistry creates a collector registered with reg
func NewCollectorWithRegistry(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "amqp_client"
	}
	factory := promauto.With(reg)

	return &Collector{
		ConnectionsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_opened_total",
			Help:      "Total number of connections that completed the handshake",
		}),
		ConnectionsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Total number of connections closed, by reason",
		}, []string{"reason"}),
		ConnectionBlocked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_blocked",
			Help:      "Number of connections currently blocked by the broker",
		}),

		ChannelsOpen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channels_open",
			Help:      "Current number of open channels",
		}),
		ChannelsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_opened_total",
			Help:      "Total number of channels opened",
		}),
		ChannelsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channels_closed_total",
			Help:      "Total number of channels closed by the broker, by reply code",
		}, []string{"code"}),

		RPCTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_total",
			Help:      "Total number of synchronous RPCs, by method and outcome",
		}, []string{"method", "outcome"}),
		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Latency of synchronous RPCs",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"method"}),

		FramesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Total number of frames read from the transport, by frame type",
		}, []string{"type"}),
		FramesStashed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_stashed_total",
			Help:      "Frames queued on a channel backlog because another channel was being read",
		}),
		FramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Frames discarded because their channel is not open",
		}),

		MessagesPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Total number of messages published",
		}),
		MessagesPublishedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_bytes_total",
			Help:      "Total body bytes published",
		}),
		MessagesConfirmed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_confirmed_total",
			Help:      "Total number of publishes acked by the broker",
		}),
		MessagesReturned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_returned_total",
			Help:      "Total number of published messages returned as unroutable",
		}),
		MessagesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_rejected_total",
			Help:      "Total number of publishes nacked by the broker",
		}),
		MessagesDelivered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_total",
			Help:      "Total number of messages received by consume or get",
		}),
		MessagesDeliveredBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_delivered_bytes_total",
			Help:      "Total body bytes received",
		}),
		MessagesAcknowledged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_acknowledged_total",
			Help:      "Total number of acks and rejects sent",
		}),

		ConsumersActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consumers_active",
			Help:      "Current number of registered consumers",
		}),
		ConsumersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consumers_cancelled_total",
			Help:      "Total number of consumers cancelled by the broker",
		}),
	}
}

// Connection operations

func (c *Collector) RecordConnectionOpened() {
	if c == nil {
		return
	}
	c.ConnectionsOpened.Inc()
}

// RecordConnectionClosed records a closed connection; reason is "local",
// "broker" or "transport".
func (c *Collector) RecordConnectionClosed(reason string) {
	if c == nil {
		return
	}
	c.ConnectionsClosed.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordBlocked(blocked bool) {
	if c == nil {
		return
	}
	if blocked {
		c.ConnectionBlocked.Inc()
	} else {
		c.ConnectionBlocked.Dec()
	}
}

// Channel operations

func (c *Collector) RecordChannelOpened() {
	if c == nil {
		return
	}
	c.ChannelsOpened.Inc()
	c.ChannelsOpen.Inc()
}

func (c *Collector) RecordChannelClosed(replyCode uint16) {
	if c == nil {
		return
	}
	c.ChannelsClosed.WithLabelValues(strconv.Itoa(int(replyCode))).Inc()
	c.ChannelsOpen.Dec()
}

// RecordChannelsReleased drops n channels from the open gauge without
// counting a broker close, e.g. when the connection goes away.
func (c *Collector) RecordChannelsReleased(n int) {
	if c == nil {
		return
	}
	c.ChannelsOpen.Sub(float64(n))
}

// RPC operations

func (c *Collector) RecordRPC(method string, start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.RPCTotal.WithLabelValues(method, outcome).Inc()
	c.RPCDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// Frame operations

func (c *Collector) RecordFrameReceived(frameType string) {
	if c == nil {
		return
	}
	c.FramesReceived.WithLabelValues(frameType).Inc()
}

func (c *Collector) RecordFrameStashed() {
	if c == nil {
		return
	}
	c.FramesStashed.Inc()
}

func (c *Collector) RecordFrameDropped() {
	if c == nil {
		return
	}
	c.FramesDropped.Inc()
}

// Message operations

func (c *Collector) RecordMessagePublished(size int) {
	if c == nil {
		return
	}
	c.MessagesPublished.Inc()
	c.MessagesPublishedBytes.Add(float64(size))
}

func (c *Collector) RecordMessageConfirmed() {
	if c == nil {
		return
	}
	c.MessagesConfirmed.Inc()
}

func (c *Collector) RecordMessageReturned() {
	if c == nil {
		return
	}
	c.MessagesReturned.Inc()
}

func (c *Collector) RecordMessageRejected() {
	if c == nil {
		return
	}
	c.MessagesRejected.Inc()
}

func (c *Collector) RecordMessageDelivered(size int) {
	if c == nil {
		return
	}
	c.MessagesDelivered.Inc()
	c.MessagesDeliveredBytes.Add(float64(size))
}

func (c *Collector) RecordMessageAcknowledged() {
	if c == nil {
		return
	}
	c.MessagesAcknowledged.Inc()
}

// Consumer operations

func (c *Collector) RecordConsumerAdded() {
	if c == nil {
		return
	}
	c.ConsumersActive.Inc()
}

func (c *Collector) RecordConsumerRemoved(cancelledByBroker bool) {
	if c == nil {
		return
	}
	c.ConsumersActive.Dec()
	if cancelledByBroker {
		c.ConsumersCancelled.Inc()
	}
}
