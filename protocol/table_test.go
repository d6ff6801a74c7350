package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTableValueTypes(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	table := Table{
		"bool":    true,
		"int8":    int8(-3),
		"uint8":   uint8(200),
		"int16":   int16(-300),
		"int32":   int32(-70000),
		"int64":   int64(1 << 40),
		"float":   float32(1.5),
		"double":  2.25,
		"decimal": Decimal{Scale: 2, Value: 12345},
		"string":  "value",
		"bytes":   []byte{1, 2, 3},
		"time":    ts,
		"nested":  Table{"inner": "x"},
		"array":   []interface{}{"a", int32(1)},
		"void":    nil,
	}

	encoded, err := EncodeFieldTable(table)
	require.NoError(t, err)

	decoded, next, err := decodeFieldTable(encoded, 0)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), next)

	assert.Equal(t, true, decoded["bool"])
	assert.Equal(t, int8(-3), decoded["int8"])
	assert.Equal(t, uint8(200), decoded["uint8"])
	assert.Equal(t, int16(-300), decoded["int16"])
	assert.Equal(t, int32(-70000), decoded["int32"])
	assert.Equal(t, int64(1<<40), decoded["int64"])
	assert.Equal(t, float32(1.5), decoded["float"])
	assert.Equal(t, 2.25, decoded["double"])
	assert.Equal(t, Decimal{Scale: 2, Value: 12345}, decoded["decimal"])
	assert.Equal(t, "value", decoded["string"])
	assert.Equal(t, []byte{1, 2, 3}, decoded["bytes"])
	assert.True(t, ts.Equal(decoded["time"].(time.Time)))
	assert.Equal(t, Table{"inner": "x"}, decoded["nested"])
	assert.Equal(t, []interface{}{"a", int32(1)}, decoded["array"])
	assert.Contains(t, decoded, "void")
	assert.Nil(t, decoded["void"])
}

func TestFieldTableEncodingIsDeterministic(t *testing.T) {
	table := Table{"b": "2", "a": "1", "c": "3"}
	first, err := EncodeFieldTable(table)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := EncodeFieldTable(table)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFieldTableRejectsUnsupportedType(t *testing.T) {
	_, err := EncodeFieldTable(Table{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestFieldTableTruncated(t *testing.T) {
	encoded, err := EncodeFieldTable(Table{"k": "value"})
	require.NoError(t, err)

	_, _, err = decodeFieldTable(encoded[:len(encoded)-2], 0)
	assert.Error(t, err)
}

func TestTableCopyIsDeep(t *testing.T) {
	orig := Table{"nested": Table{"k": "v"}, "raw": []byte{1}}
	cp := orig.Copy()

	cp["nested"].(Table)["k"] = "changed"
	cp["raw"].([]byte)[0] = 9

	assert.Equal(t, "v", orig["nested"].(Table)["k"])
	assert.Equal(t, byte(1), orig["raw"].([]byte)[0])
}
