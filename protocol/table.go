package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"
)

// Table is an AMQP field table. Supported value types:
//
//	bool, int8, uint8, int16, uint16, int32, uint32, int64, int,
//	float32, float64, Decimal, string, []byte, time.Time, Table,
//	map[string]interface{}, []interface{}, nil
type Table map[string]interface{}

// Decimal is the AMQP decimal-value: Value scaled down by 10^Scale.
type Decimal struct {
	Scale uint8
	Value int32
}

// Copy returns a deep copy of t.
func (t Table) Copy() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = copyFieldValue(v)
	}
	return out
}

func copyFieldValue(v interface{}) interface{} {
	switch val := v.(type) {
	case Table:
		return val.Copy()
	case map[string]interface{}:
		return Table(val).Copy()
	case []interface{}:
		out := make([]interface{}, len(val))
		for i := range val {
			out[i] = copyFieldValue(val[i])
		}
		return out
	case []byte:
		return append([]byte(nil), val...)
	default:
		return v
	}
}

// EncodeFieldTable encodes a table with its uint32 length prefix. Keys are
// written in sorted order so the encoding is deterministic.
func EncodeFieldTable(table Table) ([]byte, error) {
	body := make([]byte, 4, 64)
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var err error
	for _, k := range keys {
		if len(k) > math.MaxUint8 {
			return nil, fmt.Errorf("field table key %q exceeds 255 bytes", k)
		}
		body = append(body, byte(len(k)))
		body = append(body, k...)
		if body, err = appendFieldValue(body, table[k]); err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
	}
	binary.BigEndian.PutUint32(body[0:4], uint32(len(body)-4))
	return body, nil
}

func appendFieldValue(buf []byte, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case bool:
		b := byte(0)
		if v {
			b = 1
		}
		buf = append(buf, 't', b)
	case int8:
		buf = append(buf, 'b', byte(v))
	case uint8:
		buf = append(buf, 'B', v)
	case int16:
		buf = binary.BigEndian.AppendUint16(append(buf, 's'), uint16(v))
	case uint16:
		buf = binary.BigEndian.AppendUint16(append(buf, 'u'), v)
	case int32:
		buf = binary.BigEndian.AppendUint32(append(buf, 'I'), uint32(v))
	case uint32:
		buf = binary.BigEndian.AppendUint32(append(buf, 'i'), v)
	case int:
		buf = binary.BigEndian.AppendUint64(append(buf, 'l'), uint64(v))
	case int64:
		buf = binary.BigEndian.AppendUint64(append(buf, 'l'), uint64(v))
	case float32:
		buf = binary.BigEndian.AppendUint32(append(buf, 'f'), math.Float32bits(v))
	case float64:
		buf = binary.BigEndian.AppendUint64(append(buf, 'd'), math.Float64bits(v))
	case Decimal:
		buf = append(buf, 'D', v.Scale)
		buf = binary.BigEndian.AppendUint32(buf, uint32(v.Value))
	case string:
		buf = binary.BigEndian.AppendUint32(append(buf, 'S'), uint32(len(v)))
		buf = append(buf, v...)
	case []byte:
		buf = binary.BigEndian.AppendUint32(append(buf, 'x'), uint32(len(v)))
		buf = append(buf, v...)
	case time.Time:
		buf = binary.BigEndian.AppendUint64(append(buf, 'T'), uint64(v.Unix()))
	case Table:
		encoded, err := EncodeFieldTable(v)
		if err != nil {
			return nil, err
		}
		buf = append(append(buf, 'F'), encoded...)
	case map[string]interface{}:
		return appendFieldValue(buf, Table(v))
	case []interface{}:
		buf = append(buf, 'A')
		lenAt := len(buf)
		buf = append(buf, 0, 0, 0, 0)
		var err error
		for _, item := range v {
			if buf, err = appendFieldValue(buf, item); err != nil {
				return nil, err
			}
		}
		binary.BigEndian.PutUint32(buf[lenAt:], uint32(len(buf)-lenAt-4))
	case nil:
		buf = append(buf, 'V')
	default:
		return nil, fmt.Errorf("unsupported field value type %T", value)
	}
	return buf, nil
}

// decodeFieldTable decodes a length-prefixed table starting at offset and
// returns the offset just past it.
func decodeFieldTable(data []byte, offset int) (Table, int, error) {
	if offset+4 > len(data) {
		return nil, offset, fmt.Errorf("field table length field missing")
	}
	tableLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	end := offset + tableLen
	if end > len(data) {
		return nil, offset, fmt.Errorf("field table extends beyond data")
	}

	table := make(Table)
	for offset < end {
		keyLen := int(data[offset])
		offset++
		if offset+keyLen > end {
			return nil, offset, fmt.Errorf("field key extends beyond table")
		}
		key := string(data[offset : offset+keyLen])
		offset += keyLen

		value, next, err := decodeFieldValue(data[:end], offset)
		if err != nil {
			return nil, offset, fmt.Errorf("field %q: %w", key, err)
		}
		table[key] = value
		offset = next
	}
	return table, end, nil
}

func decodeFieldValue(data []byte, offset int) (interface{}, int, error) {
	need := func(n int) error {
		if offset+n > len(data) {
			return fmt.Errorf("value truncated")
		}
		return nil
	}
	if err := need(1); err != nil {
		return nil, offset, err
	}
	kind := data[offset]
	offset++

	switch kind {
	case 't':
		if err := need(1); err != nil {
			return nil, offset, err
		}
		return data[offset] != 0, offset + 1, nil
	case 'b':
		if err := need(1); err != nil {
			return nil, offset, err
		}
		return int8(data[offset]), offset + 1, nil
	case 'B':
		if err := need(1); err != nil {
			return nil, offset, err
		}
		return data[offset], offset + 1, nil
	case 's':
		if err := need(2); err != nil {
			return nil, offset, err
		}
		return int16(binary.BigEndian.Uint16(data[offset:])), offset + 2, nil
	case 'u':
		if err := need(2); err != nil {
			return nil, offset, err
		}
		return binary.BigEndian.Uint16(data[offset:]), offset + 2, nil
	case 'I':
		if err := need(4); err != nil {
			return nil, offset, err
		}
		return int32(binary.BigEndian.Uint32(data[offset:])), offset + 4, nil
	case 'i':
		if err := need(4); err != nil {
			return nil, offset, err
		}
		return binary.BigEndian.Uint32(data[offset:]), offset + 4, nil
	case 'l':
		if err := need(8); err != nil {
			return nil, offset, err
		}
		return int64(binary.BigEndian.Uint64(data[offset:])), offset + 8, nil
	case 'f':
		if err := need(4); err != nil {
			return nil, offset, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(data[offset:])), offset + 4, nil
	case 'd':
		if err := need(8); err != nil {
			return nil, offset, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(data[offset:])), offset + 8, nil
	case 'D':
		if err := need(5); err != nil {
			return nil, offset, err
		}
		d := Decimal{Scale: data[offset], Value: int32(binary.BigEndian.Uint32(data[offset+1:]))}
		return d, offset + 5, nil
	case 'S', 'x':
		if err := need(4); err != nil {
			return nil, offset, err
		}
		n := int(binary.BigEndian.Uint32(data[offset:]))
		offset += 4
		if err := need(n); err != nil {
			return nil, offset, err
		}
		if kind == 'S' {
			return string(data[offset : offset+n]), offset + n, nil
		}
		return append([]byte(nil), data[offset:offset+n]...), offset + n, nil
	case 'T':
		if err := need(8); err != nil {
			return nil, offset, err
		}
		return time.Unix(int64(binary.BigEndian.Uint64(data[offset:])), 0), offset + 8, nil
	case 'F':
		return decodeFieldTable(data, offset)
	case 'A':
		if err := need(4); err != nil {
			return nil, offset, err
		}
		n := int(binary.BigEndian.Uint32(data[offset:]))
		offset += 4
		end := offset + n
		if end > len(data) {
			return nil, offset, fmt.Errorf("array extends beyond data")
		}
		items := []interface{}{}
		for offset < end {
			item, next, err := decodeFieldValue(data[:end], offset)
			if err != nil {
				return nil, offset, err
			}
			items = append(items, item)
			offset = next
		}
		return items, end, nil
	case 'V':
		return nil, offset, nil
	default:
		return nil, offset, fmt.Errorf("unknown field value type %q", kind)
	}
}
