package protocol

import (
	"bytes"
	"sync"
)

// bufferPool holds frame and argument encoding buffers. Buffers larger than
// maxPooledBuffer are left to the GC.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return &bytes.Buffer{}
	},
}

const maxPooledBuffer = 64 * 1024

// getBuffer gets a buffer from the pool
func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns a buffer to the pool
func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}
