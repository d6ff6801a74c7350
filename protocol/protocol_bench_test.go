package protocol

import (
	"bytes"
	"io"
	"strconv"
	"testing"
)

// Benchmark frame marshaling
func BenchmarkFrameMarshalBinary(b *testing.B) {
	frame := &Frame{
		Type:    FrameMethod,
		Channel: 1,
		Payload: make([]byte, 100),
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := frame.MarshalBinary(); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark reading frames of different sizes off a stream
func BenchmarkReadFrame(b *testing.B) {
	for _, size := range []int{100, 1024, 4096, 16384} {
		b.Run(byteSize(size), func(b *testing.B) {
			data, _ := EncodeBodyFrameForChannel(1, make([]byte, size)).MarshalBinary()
			r := bytes.NewReader(data)

			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				r.Reset(data)
				if _, err := ReadFrame(r, 0); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark publishing: method, header and body frames written in order
func BenchmarkWritePublish(b *testing.B) {
	body := make([]byte, 2048)
	header := &ContentHeader{
		ClassID:       ClassBasic,
		BodySize:      uint64(len(body)),
		PropertyFlags: FlagContentType | FlagDeliveryMode,
		ContentType:   "application/octet-stream",
		DeliveryMode:  2,
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		method, err := EncodeMethod(1, &BasicPublishMethod{Exchange: "amq.direct", RoutingKey: "bench"})
		if err != nil {
			b.Fatal(err)
		}
		hf, err := EncodeContentHeaderFrameForChannel(1, header)
		if err != nil {
			b.Fatal(err)
		}
		for _, f := range []*Frame{method, hf} {
			if err := WriteFrame(io.Discard, f); err != nil {
				b.Fatal(err)
			}
		}
		for _, chunk := range SplitBody(body, 131072) {
			if err := WriteFrame(io.Discard, EncodeBodyFrameForChannel(1, chunk)); err != nil {
				b.Fatal(err)
			}
		}
	}
}

// Benchmark method decoding
func BenchmarkDecodeDeliver(b *testing.B) {
	frame, _ := EncodeMethod(1, &BasicDeliverMethod{
		ConsumerTag: "amq.ctag-abcdef",
		DeliveryTag: 42,
		Exchange:    "amq.topic",
		RoutingKey:  "orders.created",
	})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeMethod(frame.Payload); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark field table encoding
func BenchmarkEncodeFieldTable(b *testing.B) {
	table := Table{
		"x-message-ttl": int32(60000),
		"x-dead-letter": "dlx",
		"x-max-length":  int64(100000),
		"x-lazy":        true,
		"nested":        Table{"a": "b"},
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := EncodeFieldTable(table); err != nil {
			b.Fatal(err)
		}
	}
}

func byteSize(n int) string {
	if n >= 1024 {
		return strconv.Itoa(n/1024) + "KB"
	}
	return strconv.Itoa(n) + "B"
}
