package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// AMQP 0-9-1 frame types
const (
	FrameMethod    = 1
	FrameHeader    = 2
	FrameBody      = 3
	FrameHeartbeat = 8
	FrameEnd       = 0xCE // Frame end marker byte
)

const (
	// FrameHeaderSize is type(1) + channel(2) + size(4).
	FrameHeaderSize = 7
	// FrameOverhead is the header plus the trailing end byte.
	FrameOverhead = FrameHeaderSize + 1
	// FrameMinSize is the smallest frame-max a peer may negotiate.
	FrameMinSize = 4096
	// FrameSizeLimit caps the payload ReadFrame accepts, including when no
	// frame-max was negotiated.
	FrameSizeLimit = 128 << 20
)

// Frame represents an AMQP frame
type Frame struct {
	Type    byte
	Channel uint16
	Size    uint32
	Payload []byte
}

// MarshalBinary encodes a frame into binary format in AMQP 0-9-1 wire format
// Format: (1-byte type) + (2-byte channel) + (4-byte size) + (size-byte payload) + (1-byte end: 0xCE)
func (f *Frame) MarshalBinary() ([]byte, error) {
	data := make([]byte, FrameOverhead+len(f.Payload))

	data[0] = f.Type
	binary.BigEndian.PutUint16(data[1:3], f.Channel)
	binary.BigEndian.PutUint32(data[3:7], uint32(len(f.Payload)))
	copy(data[7:], f.Payload)
	data[7+len(f.Payload)] = FrameEnd

	return data, nil
}

// UnmarshalBinary decodes a frame from binary format
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameOverhead {
		return fmt.Errorf("frame too short")
	}

	f.Type = data[0]
	f.Channel = binary.BigEndian.Uint16(data[1:3])
	payloadSize := binary.BigEndian.Uint32(data[3:7])

	if len(data) != int(FrameOverhead+payloadSize) {
		return fmt.Errorf("frame size mismatch: expected %d bytes but got %d", FrameOverhead+payloadSize, len(data))
	}
	if data[7+payloadSize] != FrameEnd {
		return fmt.Errorf("invalid frame end-byte")
	}

	f.Size = payloadSize
	f.Payload = make([]byte, f.Size)
	copy(f.Payload, data[7:7+f.Size])
	return nil
}

// ReadFrame reads a frame from an io.Reader. maxSize bounds the payload a
// peer may announce and is itself capped at FrameSizeLimit; zero means the
// cap.
func ReadFrame(reader io.Reader, maxSize uint32) (*Frame, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(reader, header[:]); err != nil {
		return nil, err
	}

	frameType := header[0]
	channel := binary.BigEndian.Uint16(header[1:3])
	size := binary.BigEndian.Uint32(header[3:7])

	if maxSize == 0 || maxSize > FrameSizeLimit {
		maxSize = FrameSizeLimit
	}
	if size > maxSize {
		return nil, fmt.Errorf("frame payload of %d bytes exceeds frame-max %d", size, maxSize)
	}

	// payload + end-byte
	payload := make([]byte, uint64(size)+1)
	if _, err := io.ReadFull(reader, payload); err != nil {
		return nil, err
	}

	if payload[size] != FrameEnd {
		return nil, fmt.Errorf("invalid frame end-byte 0x%02x", payload[size])
	}

	return &Frame{
		Type:    frameType,
		Channel: channel,
		Size:    size,
		Payload: payload[:size],
	}, nil
}

// WriteFrame writes a frame to an io.Writer using a pooled buffer so the
// whole frame reaches the writer in a single call.
func WriteFrame(writer io.Writer, frame *Frame) error {
	buf := getBuffer()
	defer putBuffer(buf)

	payloadLen := len(frame.Payload)
	buf.Grow(FrameOverhead + payloadLen)

	buf.WriteByte(frame.Type)

	var header [6]byte
	binary.BigEndian.PutUint16(header[0:2], frame.Channel)
	binary.BigEndian.PutUint32(header[2:6], uint32(payloadLen))
	buf.Write(header[:])

	buf.Write(frame.Payload)
	buf.WriteByte(FrameEnd)

	_, err := buf.WriteTo(writer)
	return err
}

// EncodeMethodFrameForChannel encodes a method into a method frame for a specific channel
func EncodeMethodFrameForChannel(channelID uint16, classID, methodID uint16, methodData []byte) *Frame {
	// class ID (2 bytes) + method ID (2 bytes) + arguments
	payload := make([]byte, 4+len(methodData))
	binary.BigEndian.PutUint16(payload[0:2], classID)
	binary.BigEndian.PutUint16(payload[2:4], methodID)
	copy(payload[4:], methodData)

	return &Frame{
		Type:    FrameMethod,
		Channel: channelID,
		Size:    uint32(len(payload)),
		Payload: payload,
	}
}

// EncodeMethod serializes m and wraps it in a method frame.
func EncodeMethod(channelID uint16, m Method) (*Frame, error) {
	data, err := m.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", MethodName(m.ClassID(), m.MethodID()), err)
	}
	return EncodeMethodFrameForChannel(channelID, m.ClassID(), m.MethodID(), data), nil
}

// EncodeContentHeaderFrameForChannel encodes a content header frame for a specific channel
func EncodeContentHeaderFrameForChannel(channelID uint16, header *ContentHeader) (*Frame, error) {
	payload, err := header.Serialize()
	if err != nil {
		return nil, err
	}
	return &Frame{
		Type:    FrameHeader,
		Channel: channelID,
		Size:    uint32(len(payload)),
		Payload: payload,
	}, nil
}

// EncodeBodyFrameForChannel encodes a content body into a body frame for a specific channel
func EncodeBodyFrameForChannel(channelID uint16, bodyData []byte) *Frame {
	return &Frame{
		Type:    FrameBody,
		Channel: channelID,
		Size:    uint32(len(bodyData)),
		Payload: bodyData,
	}
}

// HeartbeatFrame returns the channel 0 heartbeat frame.
func HeartbeatFrame() *Frame {
	return &Frame{Type: FrameHeartbeat, Channel: 0}
}

// SplitBody cuts body into chunks that fit in body frames under frameMax.
// An empty body yields no chunks.
func SplitBody(body []byte, frameMax uint32) [][]byte {
	if len(body) == 0 {
		return nil
	}
	chunk := len(body)
	if frameMax > FrameOverhead {
		if limit := int(frameMax - FrameOverhead); limit < chunk {
			chunk = limit
		}
	}
	chunks := make([][]byte, 0, (len(body)+chunk-1)/chunk)
	for off := 0; off < len(body); off += chunk {
		end := off + chunk
		if end > len(body) {
			end = len(body)
		}
		chunks = append(chunks, body[off:end])
	}
	return chunks
}
