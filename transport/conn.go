package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/auth"
	"github.com/maxpert/amqp-go-client/config"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

// protocolHeader opens every AMQP 0-9-1 connection.
var protocolHeader = []byte{'A', 'M', 'Q', 'P', 0, 0, 9, 1}

// Version is reported to the broker in the client properties.
const Version = "0.1.0"

// receiveBuffer bounds how many decoded frames wait for the caller before
// the reader stops pulling from the socket.
const receiveBuffer = 256

// Conn is a Transport over a net.Conn.
type Conn struct {
	conn   net.Conn
	logger *zap.Logger

	writeMu sync.Mutex
	writer  *bufio.Writer

	channelMax       uint16
	frameMax         uint32
	heartbeat        time.Duration
	serverProperties protocol.Table

	frames    chan *Frame
	done      chan struct{}
	closeOnce sync.Once

	errMu   sync.Mutex
	readErr error

	lastRead  time.Time
	lastReadM sync.Mutex
}

// Dial connects to the broker described by cfg, wrapping the socket in TLS
// when enabled, and performs the AMQP handshake.
func Dial(ctx context.Context, cfg *config.ClientConfig, logger *zap.Logger) (*Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := net.Dialer{Timeout: cfg.Connection.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Connection.Addr())
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Connection.Addr(), err)
	}

	if cfg.TLS.Enabled {
		tlsConfig, err := NewTLSConfig(cfg.Connection.Host, cfg.TLS)
		if err != nil {
			conn.Close()
			return nil, err
		}
		tlsConn := tls.Client(conn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("TLS handshake with %s: %w", cfg.Connection.Addr(), err)
		}
		conn = tlsConn
	}

	c, err := Open(conn, cfg.Connection, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Open performs the AMQP handshake over an established connection and
// starts the frame reader.
func Open(conn net.Conn, cfg config.ConnectionConfig, logger *zap.Logger) (*Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Conn{
		conn:   conn,
		logger: logger,
		writer: bufio.NewWriter(conn),
		frames: make(chan *Frame, receiveBuffer),
		done:   make(chan struct{}),
	}

	if cfg.DialTimeout > 0 {
		conn.SetDeadline(time.Now().Add(cfg.DialTimeout))
	}
	if err := c.handshake(cfg); err != nil {
		return nil, err
	}
	conn.SetDeadline(time.Time{})

	c.touchRead()
	go c.readLoop()
	if c.heartbeat > 0 {
		go c.heartbeatLoop()
	}

	logger.Debug("AMQP connection established",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.Uint16("channel_max", c.channelMax),
		zap.Uint32("frame_max", c.frameMax),
		zap.Duration("heartbeat", c.heartbeat))
	return c, nil
}

func (c *Conn) handshake(cfg config.ConnectionConfig) error {
	if _, err := c.conn.Write(protocolHeader); err != nil {
		return fmt.Errorf("send protocol header: %w", err)
	}

	reader := bufio.NewReader(c.conn)

	start := &protocol.ConnectionStartMethod{}
	if err := c.expect(reader, start); err != nil {
		return err
	}
	c.serverProperties = start.ServerProperties

	name := cfg.Mechanism
	if name == "" {
		name = config.MechanismPlain
	}
	mechanism, err := auth.FromConfig(cfg).Select(name, start.Mechanisms)
	if err != nil {
		return err
	}

	locale := cfg.Locale
	if locale == "" {
		locale = "en_US"
	}
	if err := c.writeMethod(0, &protocol.ConnectionStartOKMethod{
		ClientProperties: clientProperties(),
		Mechanism:        mechanism.Name(),
		Response:         mechanism.Response(),
		Locale:           locale,
	}); err != nil {
		return err
	}

	tune := &protocol.ConnectionTuneMethod{}
	if err := c.expect(reader, tune); err != nil {
		return err
	}

	c.channelMax = uint16(negotiate(uint32(cfg.ChannelMax), uint32(tune.ChannelMax)))
	c.frameMax = negotiate(cfg.FrameMax, tune.FrameMax)
	c.heartbeat = time.Duration(negotiate(uint32(cfg.Heartbeat/time.Second), uint32(tune.Heartbeat))) * time.Second

	if err := c.writeMethod(0, &protocol.ConnectionTuneOKMethod{
		ChannelMax: c.channelMax,
		FrameMax:   c.frameMax,
		Heartbeat:  uint16(c.heartbeat / time.Second),
	}); err != nil {
		return err
	}

	vhost := cfg.VHost
	if vhost == "" {
		vhost = "/"
	}
	if err := c.writeMethod(0, &protocol.ConnectionOpenMethod{VirtualHost: vhost}); err != nil {
		return err
	}
	if err := c.expect(reader, &protocol.ConnectionOpenOKMethod{}); err != nil {
		return err
	}

	// frames the broker pipelined behind open-ok stay in reader
	c.conn = &bufferedConn{Conn: c.conn, r: reader}
	return nil
}

// expect reads the next channel 0 method and decodes it into want. A
// connection.close in its place is mapped to the broker's error.
func (c *Conn) expect(r io.Reader, want protocol.Method) error {
	for {
		// frame-max is not negotiated yet
		frame, err := protocol.ReadFrame(r, protocol.FrameMinSize)
		if err != nil {
			return fmt.Errorf("waiting for %s: %w", want.Name(), err)
		}
		if frame.Type == protocol.FrameHeartbeat {
			continue
		}
		if frame.Type != protocol.FrameMethod || frame.Channel != 0 {
			return &amqperrors.ProtocolError{ChannelID: frame.Channel, Expected: want.Name(), FrameType: frame.Type}
		}
		m, err := protocol.DecodeMethod(frame.Payload)
		if err != nil {
			return err
		}
		if closeMethod, ok := m.(*protocol.ConnectionCloseMethod); ok {
			c.writeMethod(0, &protocol.ConnectionCloseOKMethod{})
			return amqperrors.FromReply(amqperrors.NewReply(0, closeMethod.ReplyCode, closeMethod.ReplyText,
				closeMethod.CauseClassID, closeMethod.CauseMethodID), true)
		}
		if _, ok := m.(*protocol.ConnectionSecureMethod); ok {
			return fmt.Errorf("broker requested a SASL challenge round (connection.secure), which is not supported")
		}
		if m.ClassID() != want.ClassID() || m.MethodID() != want.MethodID() {
			return &amqperrors.ProtocolError{ChannelID: 0, Expected: want.Name(), FrameType: frame.Type, Method: m.Name()}
		}
		return want.Deserialize(frame.Payload[4:])
	}
}

// negotiate picks the smaller of two limits where 0 means unlimited.
func negotiate(client, server uint32) uint32 {
	if client == 0 || (server != 0 && server < client) {
		return server
	}
	return client
}

func clientProperties() protocol.Table {
	return protocol.Table{
		"product":     "amqp-go-client",
		"version":     Version,
		"platform":    "Go",
		"information": "https://github.com/maxpert/amqp-go-client",
		"capabilities": protocol.Table{
			"publisher_confirms":           true,
			"consumer_cancel_notify":       true,
			"exchange_exchange_bindings":   true,
			"basic.nack":                   true,
			"connection.blocked":           true,
			"authentication_failure_close": true,
		},
	}
}

// ChannelMax returns the negotiated channel limit
func (c *Conn) ChannelMax() uint16 { return c.channelMax }

// FrameMax returns the negotiated frame size limit
func (c *Conn) FrameMax() uint32 { return c.frameMax }

// Heartbeat returns the negotiated heartbeat interval
func (c *Conn) Heartbeat() time.Duration { return c.heartbeat }

// ServerProperties returns the properties the broker sent in connection.start
func (c *Conn) ServerProperties() protocol.Table { return c.serverProperties }

// SendMethod implements Transport
func (c *Conn) SendMethod(channel uint16, m protocol.Method) error {
	frame, err := protocol.EncodeMethod(channel, m)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeFrames(frame)
}

// SendContent implements Transport
func (c *Conn) SendContent(channel uint16, m protocol.Method, header *protocol.ContentHeader, body []byte) error {
	methodFrame, err := protocol.EncodeMethod(channel, m)
	if err != nil {
		return err
	}
	header.BodySize = uint64(len(body))
	headerFrame, err := protocol.EncodeContentHeaderFrameForChannel(channel, header)
	if err != nil {
		return err
	}

	frames := []*protocol.Frame{methodFrame, headerFrame}
	for _, chunk := range protocol.SplitBody(body, c.frameMax) {
		frames = append(frames, protocol.EncodeBodyFrameForChannel(channel, chunk))
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeFrames(frames...)
}

func (c *Conn) writeMethod(channel uint16, m protocol.Method) error {
	frame, err := protocol.EncodeMethod(channel, m)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeFrames(frame)
}

// writeFrames must be called with writeMu held.
func (c *Conn) writeFrames(frames ...*protocol.Frame) error {
	select {
	case <-c.done:
		return amqperrors.ErrConnectionClosed
	default:
	}
	for _, f := range frames {
		if err := protocol.WriteFrame(c.writer, f); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
	if err := c.writer.Flush(); err != nil {
		return fmt.Errorf("flush frames: %w", err)
	}
	return nil
}

// Receive implements Transport
func (c *Conn) Receive(timeout time.Duration) (*Frame, error) {
	select {
	case f, ok := <-c.frames:
		return c.received(f, ok)
	default:
	}
	if timeout == 0 {
		return nil, nil
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case f, ok := <-c.frames:
		return c.received(f, ok)
	case <-expired:
		return nil, nil
	}
}

func (c *Conn) received(f *Frame, ok bool) (*Frame, error) {
	if ok {
		return f, nil
	}
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.readErr != nil {
		return nil, c.readErr
	}
	return nil, amqperrors.ErrConnectionClosed
}

func (c *Conn) readLoop() {
	defer close(c.frames)

	maxSize := c.frameMax
	for {
		raw, err := protocol.ReadFrame(c.conn, maxSize)
		if err != nil {
			c.fail(err)
			return
		}
		c.touchRead()

		frame, err := decodeFrame(raw)
		if err != nil {
			c.fail(err)
			return
		}
		if frame == nil {
			continue
		}

		select {
		case c.frames <- frame:
		case <-c.done:
			return
		}
	}
}

// decodeFrame returns nil for heartbeats.
func decodeFrame(raw *protocol.Frame) (*Frame, error) {
	frame := &Frame{Channel: raw.Channel, Type: raw.Type}
	switch raw.Type {
	case protocol.FrameMethod:
		m, err := protocol.DecodeMethod(raw.Payload)
		if err != nil {
			return nil, err
		}
		frame.Method = m
	case protocol.FrameHeader:
		h, err := protocol.ReadContentHeader(raw)
		if err != nil {
			return nil, err
		}
		frame.Header = h
	case protocol.FrameBody:
		frame.Body = raw.Payload
	case protocol.FrameHeartbeat:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown frame type %d on channel %d", raw.Type, raw.Channel)
	}
	return frame, nil
}

func (c *Conn) fail(err error) {
	select {
	case <-c.done:
		// local close; the read error is just the socket going away
		return
	default:
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	c.errMu.Lock()
	if c.readErr == nil {
		c.readErr = fmt.Errorf("read frame: %w", err)
	}
	c.errMu.Unlock()
	c.logger.Warn("AMQP transport read failed", zap.Error(err))
}

func (c *Conn) touchRead() {
	c.lastReadM.Lock()
	c.lastRead = time.Now()
	c.lastReadM.Unlock()
}

func (c *Conn) sinceRead() time.Duration {
	c.lastReadM.Lock()
	defer c.lastReadM.Unlock()
	return time.Since(c.lastRead)
}

func (c *Conn) heartbeatLoop() {
	ticker := time.NewTicker(c.heartbeat / 2)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		if idle := c.sinceRead(); idle > 2*c.heartbeat {
			c.fail(fmt.Errorf("missed heartbeats from broker: no frame for %v", idle))
			c.conn.Close()
			return
		}

		c.writeMu.Lock()
		err := c.writeFrames(protocol.HeartbeatFrame())
		c.writeMu.Unlock()
		if err != nil {
			c.logger.Debug("Heartbeat send failed", zap.Error(err))
			return
		}
	}
}

// Close implements Transport
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// bufferedConn reads through the handshake's bufio.Reader so no bytes it
// already buffered are lost.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (b *bufferedConn) Read(p []byte) (int, error) {
	return b.r.Read(p)
}
