// Package bytestream provides the read-only byte source the decoder consumes.
// The cursor only moves forward.
package bytestream

import "errors"

// ErrEndOfStream is returned when a read needs a byte past the end of the data.
var ErrEndOfStream = errors.New("read past end of stream")

// Stream is an immutable byte buffer with a forward-moving cursor.
type Stream struct {
	data   []byte
	cursor int
}

// New wraps data. The slice is never written to.
func New(data []byte) *Stream {
	return &Stream{data: data}
}

// Len returns the total number of bytes in the stream.
func (s *Stream) Len() int { return len(s.data) }

// Offset returns the index of the next byte to be read.
func (s *Stream) Offset() int { return s.cursor }

// More reports whether at least one unread byte remains.
func (s *Stream) More() bool { return s.cursor < len(s.data) }

// Byte reads one byte and advances the cursor.
func (s *Stream) Byte() (byte, error) {
	if s.cursor >= len(s.data) {
		return 0, ErrEndOfStream
	}
	b := s.data[s.cursor]
	s.cursor++
	return b, nil
}

// Int8 reads one byte as a signed value.
func (s *Stream) Int8() (int8, error) {
	b, err := s.Byte()
	return int8(b), err
}

// Uint16 reads a little-endian 16-bit value.
func (s *Stream) Uint16() (uint16, error) {
	if len(s.data)-s.cursor < 2 {
		// consume what is left so the failing offset points at the end
		s.cursor = len(s.data)
		return 0, ErrEndOfStream
	}
	v := uint16(s.data[s.cursor]) | uint16(s.data[s.cursor+1])<<8
	s.cursor += 2
	return v, nil
}

// Int16 reads a little-endian 16-bit value as signed.
func (s *Stream) Int16() (int16, error) {
	v, err := s.Uint16()
	return int16(v), err
}

// Skip advances the cursor by n bytes.
func (s *Stream) Skip(n int) error {
	if len(s.data)-s.cursor < n {
		s.cursor = len(s.data)
		return ErrEndOfStream
	}
	s.cursor += n
	return nil
}

// Slice returns the bytes in [from, to). It is used to attach raw encodings
// to listing entries and must not be modified by the caller.
func (s *Stream) Slice(from, to int) []byte {
	return s.data[from:to:to]
}
