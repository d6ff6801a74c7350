package client

import (
	"errors"
	"time"

	"github.com/maxpert/amqp-go-client/protocol"
	"github.com/maxpert/amqp-go-client/transport"
)

type sentMethod struct {
	Channel uint16
	Method  protocol.Method
	Header  *protocol.ContentHeader
	Body    []byte
}

// responder returns the frames the broker answers m with.
type responder func(channel uint16, m protocol.Method) []*transport.Frame

// fakeTransport stands in for a broker. Frames queued in inbox are handed
// out by Receive in order; sending a method runs the responder registered
// for it and queues whatever it returns.
type fakeTransport struct {
	inbox      []*transport.Frame
	sent       []sentMethod
	responders map[protocol.MethodKey]responder
	channelMax uint16
	frameMax   uint32
	receiveErr error
	sendErr    error
	closed     int
	receives   int
}

func newFakeTransport() *fakeTransport {
	f := &fakeTransport{
		responders: make(map[protocol.MethodKey]responder),
		frameMax:   131072,
	}
	f.reply(protocol.ClassChannel, protocol.ChannelOpen, &protocol.ChannelOpenOKMethod{})
	f.reply(protocol.ClassConfirm, protocol.ConfirmSelect, &protocol.ConfirmSelectOKMethod{})
	return f
}

func (f *fakeTransport) on(classID, methodID uint16, r responder) {
	f.responders[protocol.MethodKey{Class: classID, Method: methodID}] = r
}

// reply answers every classID.methodID with resp on the same channel.
func (f *fakeTransport) reply(classID, methodID uint16, resp protocol.Method) {
	f.on(classID, methodID, func(ch uint16, _ protocol.Method) []*transport.Frame {
		return []*transport.Frame{methodFrame(ch, resp)}
	})
}

func (f *fakeTransport) push(frames ...*transport.Frame) {
	f.inbox = append(f.inbox, frames...)
}

func (f *fakeTransport) SendMethod(channel uint16, m protocol.Method) error {
	return f.SendContent(channel, m, nil, nil)
}

func (f *fakeTransport) SendContent(channel uint16, m protocol.Method, header *protocol.ContentHeader, body []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	if f.closed > 0 {
		return errors.New("fake transport closed")
	}
	f.sent = append(f.sent, sentMethod{Channel: channel, Method: m, Header: header, Body: body})
	if r, ok := f.responders[protocol.Key(m)]; ok {
		f.push(r(channel, m)...)
	}
	return nil
}

func (f *fakeTransport) Receive(timeout time.Duration) (*transport.Frame, error) {
	f.receives++
	if len(f.inbox) > 0 {
		frame := f.inbox[0]
		f.inbox = f.inbox[1:]
		return frame, nil
	}
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	return nil, nil
}

func (f *fakeTransport) ChannelMax() uint16 { return f.channelMax }
func (f *fakeTransport) FrameMax() uint32   { return f.frameMax }

func (f *fakeTransport) Close() error {
	f.closed++
	return nil
}

// sentNamed returns the methods sent with the given name, in order.
func (f *fakeTransport) sentNamed(name string) []sentMethod {
	var out []sentMethod
	for _, s := range f.sent {
		if s.Method.Name() == name {
			out = append(out, s)
		}
	}
	return out
}

func methodFrame(channel uint16, m protocol.Method) *transport.Frame {
	return &transport.Frame{Channel: channel, Type: protocol.FrameMethod, Method: m}
}

func headerFrame(channel uint16, size int, props *Message) *transport.Frame {
	h := &protocol.ContentHeader{ClassID: protocol.ClassBasic, BodySize: uint64(size)}
	if props != nil {
		h = props.contentHeader()
		h.BodySize = uint64(size)
	}
	return &transport.Frame{Channel: channel, Type: protocol.FrameHeader, Header: h}
}

func bodyFrame(channel uint16, body []byte) *transport.Frame {
	return &transport.Frame{Channel: channel, Type: protocol.FrameBody, Body: body}
}

// contentFrames is a content method followed by its header and one body
// frame per chunk.
func contentFrames(channel uint16, m protocol.Method, msg *Message, chunks ...[]byte) []*transport.Frame {
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	frames := []*transport.Frame{methodFrame(channel, m), headerFrame(channel, size, msg)}
	for _, c := range chunks {
		frames = append(frames, bodyFrame(channel, c))
	}
	return frames
}

func channelClose(channel, code uint16, text string, classID, methodID uint16) *transport.Frame {
	return methodFrame(channel, &protocol.ChannelCloseMethod{
		ReplyCode:     code,
		ReplyText:     text,
		CauseClassID:  classID,
		CauseMethodID: methodID,
	})
}
