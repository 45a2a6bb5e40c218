package copyframe

import (
	"encoding/binary"
	"io"
)

// TargetChunkBytes is the approximate size of each chunk served by a Streamer.
const TargetChunkBytes = 4096

// ChunkBytes returns the streaming buffer size for keys of the given width:
// TargetChunkBytes rounded down to a whole number of tuples, and never less
// than one tuple.
func ChunkBytes(width int) int {
	tuple := TupleSize(width)
	size := TargetChunkBytes - TargetChunkBytes%tuple
	if size < tuple {
		size = tuple
	}
	return size
}

// Streamer serves a frame in chunks without materializing it. The tuple
// skeleton (field count and length) is written into the buffer once; each
// chunk only overwrites the key slots. No tuple is split across chunks.
//
// Streamer implements io.Reader for pull-based transports and io.WriterTo for
// push-based ones. It must not be used for both.
type Streamer[K any] struct {
	keys  []K
	width int
	put   PutFunc[K]

	buf      []byte
	perChunk int
	next     int

	headerDone  bool
	trailerDone bool
	pending     []byte
}

// NewStreamer returns a Streamer for keys of the given width.
func NewStreamer[K any](keys []K, width int, put PutFunc[K]) *Streamer[K] {
	size := ChunkBytes(width)
	tuple := TupleSize(width)

	buf := make([]byte, size)
	for off := 0; off < size; off += tuple {
		binary.BigEndian.PutUint16(buf[off:], fieldsPerTuple)
		binary.BigEndian.PutUint32(buf[off+2:], uint32(width))
	}

	return &Streamer[K]{
		keys:     keys,
		width:    width,
		put:      put,
		buf:      buf,
		perChunk: size / tuple,
	}
}

// Len returns the total number of bytes the Streamer produces.
func (s *Streamer[K]) Len() int {
	return FrameLen(len(s.keys), s.width)
}

// Read implements io.Reader.
func (s *Streamer[K]) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) == 0 && !s.advance() {
			if n == 0 {
				return 0, io.EOF
			}
			break
		}
		c := copy(p[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}
	return n, nil
}

// WriteTo implements io.WriterTo. It issues one write for the header, one per
// chunk of keys, and one for the trailer.
func (s *Streamer[K]) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for len(s.pending) > 0 || s.advance() {
		n, err := w.Write(s.pending)
		total += int64(n)
		if err != nil {
			return total, err
		}
		s.pending = nil
	}
	return total, nil
}

// advance loads the next segment of the frame into pending. It returns false
// once the trailer has been handed out.
func (s *Streamer[K]) advance() bool {
	switch {
	case !s.headerDone:
		s.headerDone = true
		s.pending = header[:]
	case s.next < len(s.keys):
		s.pending = s.fill()
	case !s.trailerDone:
		s.trailerDone = true
		s.pending = trailer[:]
	default:
		return false
	}
	return true
}

func (s *Streamer[K]) fill() []byte {
	end := min(s.next+s.perChunk, len(s.keys))
	tuple := TupleSize(s.width)

	off := 0
	for _, k := range s.keys[s.next:end] {
		s.put(s.buf[off+TupleOverhead:off+tuple], k)
		off += tuple
	}
	s.next = end
	return s.buf[:off]
}
