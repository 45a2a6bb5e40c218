// Package copyframe encodes key sets into PostgreSQL's binary COPY format.
//
// A frame is the complete payload of one COPY ... FROM STDIN WITH (FORMAT BINARY)
// operation for a single-column table:
//
//	PGCOPY\n\377\r\n\0 | flags u32 | ext len u32          (19 bytes)
//	field count i16 = 1 | field length i32 | key bytes    (per tuple)
//	-1 i16                                                (trailer)
//
// Two constructions are provided and produce identical bytes: Encode builds the
// whole frame in one exactly-sized buffer, and Streamer serves it in bounded
// chunks from a reusable buffer.
package copyframe

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the signature plus the flags and header-extension fields.
	HeaderSize = 19
	// TrailerSize is the size of the end-of-data marker.
	TrailerSize = 2
	// TupleOverhead is the field count and field length preceding each key.
	TupleOverhead = 2 + 4

	fieldsPerTuple = 1
)

var header = [HeaderSize]byte{
	'P', 'G', 'C', 'O', 'P', 'Y', '\n', 0xFF, '\r', '\n', 0x00, // signature
	0x00, 0x00, 0x00, 0x00, // flags
	0x00, 0x00, 0x00, 0x00, // header extension length
}

var trailer = [TrailerSize]byte{0xFF, 0xFF} // int16(-1)

// PutFunc writes the wire form of k into dst, which is exactly the key width long.
type PutFunc[K any] func(dst []byte, k K)

// PutBytes is a PutFunc for keys already held as byte slices.
func PutBytes(dst []byte, k []byte) {
	copy(dst, k)
}

// TupleSize returns the encoded size of one tuple carrying a key of the given width.
func TupleSize(width int) int {
	return TupleOverhead + width
}

// FrameLen returns the exact size of a frame holding n keys of the given width.
func FrameLen(n, width int) int {
	return HeaderSize + n*TupleSize(width) + TrailerSize
}

// Encode builds a complete frame in a single allocation.
//
// It panics if the buffer does not end up exactly FrameLen bytes long; that
// can only happen if put writes outside its slot.
func Encode[K any](keys []K, width int, put PutFunc[K]) []byte {
	size := FrameLen(len(keys), width)
	buf := make([]byte, 0, size)

	buf = append(buf, header[:]...)
	for _, k := range keys {
		buf = binary.BigEndian.AppendUint16(buf, fieldsPerTuple)
		buf = binary.BigEndian.AppendUint32(buf, uint32(width))
		n := len(buf)
		buf = buf[:n+width]
		put(buf[n:], k)
	}
	buf = append(buf, trailer[:]...)

	if len(buf) != size || cap(buf) != size {
		panic(fmt.Sprintf("copyframe: frame is %d bytes (cap %d), want exactly %d", len(buf), cap(buf), size))
	}
	return buf
}
