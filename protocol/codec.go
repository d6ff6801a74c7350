package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// argWriter appends AMQP argument fields to a buffer. Consecutive bit
// fields are packed into a single octet, least significant bit first. The
// first error sticks and is reported by bytes().
type argWriter struct {
	buf   []byte
	bits  byte
	nbits uint
	err   error
}

func (w *argWriter) flushBits() {
	if w.nbits > 0 {
		w.buf = append(w.buf, w.bits)
		w.bits = 0
		w.nbits = 0
	}
}

func (w *argWriter) bit(v bool) {
	if w.nbits == 8 {
		w.flushBits()
	}
	if v {
		w.bits |= 1 << w.nbits
	}
	w.nbits++
}

func (w *argWriter) octet(v byte) {
	w.flushBits()
	w.buf = append(w.buf, v)
}

func (w *argWriter) short(v uint16) {
	w.flushBits()
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *argWriter) long(v uint32) {
	w.flushBits()
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *argWriter) longlong(v uint64) {
	w.flushBits()
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

func (w *argWriter) shortstr(s string) {
	w.flushBits()
	if len(s) > math.MaxUint8 {
		w.fail(fmt.Errorf("short string of %d bytes exceeds 255", len(s)))
		return
	}
	w.buf = append(w.buf, byte(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *argWriter) longstr(b []byte) {
	w.flushBits()
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *argWriter) table(t Table) {
	w.flushBits()
	encoded, err := EncodeFieldTable(t)
	if err != nil {
		w.fail(err)
		return
	}
	w.buf = append(w.buf, encoded...)
}

func (w *argWriter) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *argWriter) bytes() ([]byte, error) {
	w.flushBits()
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// argReader is the decoding counterpart of argWriter.
type argReader struct {
	data  []byte
	off   int
	bits  byte
	nbits uint
	err   error
}

func (r *argReader) need(n int, what string) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.data) {
		r.err = fmt.Errorf("%s: need %d bytes at offset %d, have %d", what, n, r.off, len(r.data)-r.off)
		return false
	}
	return true
}

func (r *argReader) bit() bool {
	if r.nbits == 0 || r.nbits == 8 {
		if !r.need(1, "bit field") {
			return false
		}
		r.bits = r.data[r.off]
		r.off++
		r.nbits = 0
	}
	v := r.bits&(1<<r.nbits) != 0
	r.nbits++
	return v
}

func (r *argReader) octet() byte {
	r.nbits = 0
	if !r.need(1, "octet") {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

func (r *argReader) short() uint16 {
	r.nbits = 0
	if !r.need(2, "short") {
		return 0
	}
	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *argReader) long() uint32 {
	r.nbits = 0
	if !r.need(4, "long") {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *argReader) longlong() uint64 {
	r.nbits = 0
	if !r.need(8, "longlong") {
		return 0
	}
	v := binary.BigEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *argReader) shortstr() string {
	n := int(r.octet())
	if !r.need(n, "short string") {
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

func (r *argReader) longstr() []byte {
	n := int(r.long())
	if !r.need(n, "long string") {
		return nil
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}

func (r *argReader) table() Table {
	r.nbits = 0
	if r.err != nil {
		return nil
	}
	t, next, err := decodeFieldTable(r.data, r.off)
	if err != nil {
		r.err = err
		return nil
	}
	r.off = next
	return t
}

func serialize(fn func(w *argWriter)) ([]byte, error) {
	w := &argWriter{}
	fn(w)
	return w.bytes()
}

func deserialize(data []byte, fn func(r *argReader)) error {
	r := &argReader{data: data}
	fn(r)
	return r.err
}
