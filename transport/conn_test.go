package transport

import (
	"bufio"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/maxpert/amqp-go-client/auth"
	"github.com/maxpert/amqp-go-client/config"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/protocol"
)

// fakeBroker drives the server side of a net.Pipe.
type fakeBroker struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func newFakeBroker(t *testing.T, conn net.Conn) *fakeBroker {
	return &fakeBroker{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (b *fakeBroker) readHeader() []byte {
	header := make([]byte, len(protocolHeader))
	_, err := io.ReadFull(b.r, header)
	if err != nil {
		b.t.Errorf("read protocol header: %v", err)
	}
	return header
}

func (b *fakeBroker) send(channel uint16, m protocol.Method) {
	frame, err := protocol.EncodeMethod(channel, m)
	if err != nil {
		b.t.Errorf("encode %s: %v", m.Name(), err)
		return
	}
	if err := protocol.WriteFrame(b.conn, frame); err != nil {
		b.t.Errorf("write %s: %v", m.Name(), err)
	}
}

func (b *fakeBroker) readFrame() *protocol.Frame {
	frame, err := protocol.ReadFrame(b.r, 0)
	if err != nil {
		b.t.Errorf("read frame: %v", err)
		return nil
	}
	return frame
}

func (b *fakeBroker) readMethod() protocol.Method {
	for {
		frame := b.readFrame()
		if frame == nil {
			return nil
		}
		if frame.Type == protocol.FrameHeartbeat {
			continue
		}
		m, err := protocol.DecodeMethod(frame.Payload)
		if err != nil {
			b.t.Errorf("decode method: %v", err)
			return nil
		}
		return m
	}
}

// handshake plays the broker side of a successful connection setup and
// returns the start-ok and tune-ok the client sent.
func (b *fakeBroker) handshake(tune *protocol.ConnectionTuneMethod) (*protocol.ConnectionStartOKMethod, *protocol.ConnectionTuneOKMethod, *protocol.ConnectionOpenMethod) {
	b.readHeader()
	b.send(0, &protocol.ConnectionStartMethod{
		VersionMajor:     0,
		VersionMinor:     9,
		ServerProperties: protocol.Table{"product": "fake"},
		Mechanisms:       "PLAIN AMQPLAIN EXTERNAL",
		Locales:          "en_US",
	})
	startOK, _ := b.readMethod().(*protocol.ConnectionStartOKMethod)
	b.send(0, tune)
	tuneOK, _ := b.readMethod().(*protocol.ConnectionTuneOKMethod)
	open, _ := b.readMethod().(*protocol.ConnectionOpenMethod)
	b.send(0, &protocol.ConnectionOpenOKMethod{})
	return startOK, tuneOK, open
}

func testConnectionConfig() config.ConnectionConfig {
	cfg := config.DefaultConfig().Connection
	cfg.DialTimeout = 5 * time.Second
	return cfg
}

func TestOpenHandshake(t *testing.T) {
	client, server := net.Pipe()
	broker := newFakeBroker(t, server)
	defer server.Close()

	type result struct {
		startOK *protocol.ConnectionStartOKMethod
		tuneOK  *protocol.ConnectionTuneOKMethod
		open    *protocol.ConnectionOpenMethod
	}
	done := make(chan result, 1)
	go func() {
		s, tu, o := broker.handshake(&protocol.ConnectionTuneMethod{ChannelMax: 2047, FrameMax: 131072, Heartbeat: 0})
		done <- result{s, tu, o}
	}()

	cfg := testConnectionConfig()
	cfg.ChannelMax = 16
	cfg.FrameMax = 0
	cfg.VHost = "test-vhost"

	conn, err := Open(client, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer conn.Close()

	r := <-done
	require.NotNil(t, r.startOK)
	assert.Equal(t, "PLAIN", r.startOK.Mechanism)
	assert.Equal(t, []byte("\x00guest\x00guest"), r.startOK.Response)
	user, pass, err := auth.ParsePlainResponse(r.startOK.Response)
	require.NoError(t, err)
	assert.Equal(t, "guest", user)
	assert.Equal(t, "guest", pass)
	caps, ok := r.startOK.ClientProperties["capabilities"].(protocol.Table)
	require.True(t, ok)
	assert.Equal(t, true, caps["publisher_confirms"])
	assert.Equal(t, true, caps["consumer_cancel_notify"])

	require.NotNil(t, r.tuneOK)
	assert.Equal(t, uint16(16), r.tuneOK.ChannelMax)
	assert.Equal(t, uint32(131072), r.tuneOK.FrameMax)
	assert.Equal(t, uint16(0), r.tuneOK.Heartbeat)

	require.NotNil(t, r.open)
	assert.Equal(t, "test-vhost", r.open.VirtualHost)

	assert.Equal(t, uint16(16), conn.ChannelMax())
	assert.Equal(t, uint32(131072), conn.FrameMax())
	assert.Equal(t, "fake", conn.ServerProperties()["product"])
}

func TestOpenExternalAuth(t *testing.T) {
	client, server := net.Pipe()
	broker := newFakeBroker(t, server)
	defer server.Close()

	done := make(chan *protocol.ConnectionStartOKMethod, 1)
	go func() {
		s, _, _ := broker.handshake(&protocol.ConnectionTuneMethod{})
		done <- s
	}()

	cfg := testConnectionConfig()
	cfg.Mechanism = config.MechanismExternal
	cfg.Identity = "CN=client"

	conn, err := Open(client, cfg, nil)
	require.NoError(t, err)
	defer conn.Close()

	startOK := <-done
	require.NotNil(t, startOK)
	assert.Equal(t, "EXTERNAL", startOK.Mechanism)
	assert.Equal(t, []byte("CN=client"), startOK.Response)
}

func TestOpenRefused(t *testing.T) {
	client, server := net.Pipe()
	broker := newFakeBroker(t, server)
	defer server.Close()

	go func() {
		broker.readHeader()
		broker.send(0, &protocol.ConnectionStartMethod{Mechanisms: "PLAIN", Locales: "en_US"})
		broker.readMethod()
		broker.send(0, &protocol.ConnectionCloseMethod{
			ReplyCode: 403,
			ReplyText: "ACCESS_REFUSED - Login was refused",
		})
		broker.readMethod()
	}()

	_, err := Open(client, testConnectionConfig(), nil)
	require.Error(t, err)
	assert.True(t, amqperrors.IsAccessRefused(err))
	assert.Equal(t, 403, amqperrors.GetErrorCode(err))
}

func TestOpenMechanismNotOffered(t *testing.T) {
	client, server := net.Pipe()
	broker := newFakeBroker(t, server)
	defer server.Close()

	go func() {
		broker.readHeader()
		broker.send(0, &protocol.ConnectionStartMethod{Mechanisms: "AMQPLAIN", Locales: "en_US"})
	}()

	_, err := Open(client, testConnectionConfig(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PLAIN")
}

func TestOpenRejectsOversizedHandshakeFrame(t *testing.T) {
	client, server := net.Pipe()
	broker := newFakeBroker(t, server)
	defer server.Close()

	go func() {
		broker.readHeader()
		// method frame announcing a 4 GiB payload
		_, _ = server.Write([]byte{protocol.FrameMethod, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF})
	}()

	_, err := Open(client, testConnectionConfig(), zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds frame-max")
}

func openPipe(t *testing.T, tune *protocol.ConnectionTuneMethod) (*Conn, *fakeBroker) {
	t.Helper()
	client, server := net.Pipe()
	broker := newFakeBroker(t, server)
	t.Cleanup(func() { server.Close() })

	done := make(chan struct{})
	go func() {
		broker.handshake(tune)
		close(done)
	}()

	conn, err := Open(client, testConnectionConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	<-done
	t.Cleanup(func() { conn.Close() })
	return conn, broker
}

func TestReceiveDecodesFrames(t *testing.T) {
	conn, broker := openPipe(t, &protocol.ConnectionTuneMethod{FrameMax: 4096})

	go func() {
		broker.send(1, &protocol.QueueDeclareOKMethod{Queue: "q", MessageCount: 3})
		broker.conn.Write([]byte{protocol.FrameHeartbeat, 0, 0, 0, 0, 0, 0, protocol.FrameEnd})
		broker.send(2, &protocol.ChannelCloseOKMethod{})
	}()

	frame, err := conn.Receive(time.Second)
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.Equal(t, uint16(1), frame.Channel)
	declareOK, ok := frame.Method.(*protocol.QueueDeclareOKMethod)
	require.True(t, ok)
	assert.Equal(t, "q", declareOK.Queue)
	assert.Equal(t, uint32(3), declareOK.MessageCount)

	// heartbeat is swallowed
	frame, err = conn.Receive(time.Second)
	require.NoError(t, err)
	require.NotNil(t, frame)
	assert.True(t, frame.IsMethod(protocol.ClassChannel, protocol.ChannelCloseOK))
	assert.Equal(t, uint16(2), frame.Channel)
}

func TestReceiveTimeout(t *testing.T) {
	conn, _ := openPipe(t, &protocol.ConnectionTuneMethod{})

	frame, err := conn.Receive(0)
	assert.NoError(t, err)
	assert.Nil(t, frame)

	start := time.Now()
	frame, err = conn.Receive(20 * time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, frame)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestReceiveAfterBrokerHangup(t *testing.T) {
	conn, broker := openPipe(t, &protocol.ConnectionTuneMethod{})
	broker.conn.Close()

	frame, err := conn.Receive(Forever)
	assert.Nil(t, frame)
	assert.Error(t, err)
}

func TestSendContentSplitsBody(t *testing.T) {
	conn, broker := openPipe(t, &protocol.ConnectionTuneMethod{FrameMax: 4096})

	body := make([]byte, 10000)
	for i := range body {
		body[i] = byte(i)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- conn.SendContent(3,
			&protocol.BasicPublishMethod{Exchange: "ex", RoutingKey: "rk"},
			&protocol.ContentHeader{ClassID: protocol.ClassBasic, PropertyFlags: protocol.FlagContentType, ContentType: "application/octet-stream"},
			body)
	}()

	method := broker.readFrame()
	require.NotNil(t, method)
	assert.Equal(t, byte(protocol.FrameMethod), method.Type)
	assert.Equal(t, uint16(3), method.Channel)

	headerFrame := broker.readFrame()
	require.NotNil(t, headerFrame)
	header, err := protocol.ReadContentHeader(headerFrame)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(body)), header.BodySize)
	assert.Equal(t, "application/octet-stream", header.ContentType)

	var received []byte
	var chunks int
	for len(received) < len(body) {
		f := broker.readFrame()
		require.NotNil(t, f)
		require.Equal(t, byte(protocol.FrameBody), f.Type)
		assert.LessOrEqual(t, len(f.Payload), 4096-protocol.FrameOverhead)
		received = append(received, f.Payload...)
		chunks++
	}
	require.NoError(t, <-errc)
	assert.Equal(t, body, received)
	assert.Equal(t, 3, chunks)
}

func TestCloseIsIdempotent(t *testing.T) {
	conn, _ := openPipe(t, &protocol.ConnectionTuneMethod{})

	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.SendMethod(1, &protocol.ChannelOpenMethod{}), amqperrors.ErrConnectionClosed)
}

func TestNegotiate(t *testing.T) {
	assert.Equal(t, uint32(10), negotiate(0, 10))
	assert.Equal(t, uint32(10), negotiate(10, 0))
	assert.Equal(t, uint32(5), negotiate(5, 10))
	assert.Equal(t, uint32(5), negotiate(10, 5))
	assert.Equal(t, uint32(0), negotiate(0, 0))
}

func TestNewTLSConfig(t *testing.T) {
	cfg, err := NewTLSConfig("rabbit.local", config.TLSConfig{Enabled: true, VerifyPeer: true, VerifyHostname: true})
	require.NoError(t, err)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.Equal(t, "rabbit.local", cfg.ServerName)
	assert.Nil(t, cfg.VerifyConnection)

	cfg, err = NewTLSConfig("rabbit.local", config.TLSConfig{Enabled: true, VerifyPeer: true})
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.NotNil(t, cfg.VerifyConnection)

	cfg, err = NewTLSConfig("rabbit.local", config.TLSConfig{Enabled: true, ServerName: "other"})
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, "other", cfg.ServerName)

	_, err = NewTLSConfig("rabbit.local", config.TLSConfig{CAFile: "/nonexistent/ca.pem"})
	assert.Error(t, err)
}
