package copyframe

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Decode parses a single-column binary frame and returns the field values in
// frame order. The returned slices alias frame.
func Decode(frame []byte) ([][]byte, error) {
	if len(frame) < HeaderSize {
		return nil, ErrTruncated
	}
	if !bytes.Equal(frame[:11], header[:11]) {
		return nil, ErrBadSignature
	}
	extLen := int(binary.BigEndian.Uint32(frame[15:19]))
	pos := HeaderSize + extLen
	if pos > len(frame) {
		return nil, ErrTruncated
	}

	var keys [][]byte
	for {
		if pos+2 > len(frame) {
			return nil, ErrTruncated
		}
		count := int16(binary.BigEndian.Uint16(frame[pos:]))
		pos += 2
		if count == -1 {
			break
		}
		if count != fieldsPerTuple {
			return nil, fmt.Errorf("%w: tuple %d has %d fields", ErrFieldCount, len(keys), count)
		}

		if pos+4 > len(frame) {
			return nil, ErrTruncated
		}
		length := int32(binary.BigEndian.Uint32(frame[pos:]))
		pos += 4
		if length < 0 {
			return nil, fmt.Errorf("%w: tuple %d", ErrNullField, len(keys))
		}
		if pos+int(length) > len(frame) {
			return nil, ErrTruncated
		}
		keys = append(keys, frame[pos:pos+int(length)])
		pos += int(length)
	}

	if pos != len(frame) {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(frame)-pos)
	}
	return keys, nil
}
