package stream

import (
	"encoding/binary"

	"github.com/xiaonanln/gwdatatype/engine/consts"
)

const (
	_MIN_STREAM_CAP = 64
	_INT32_SIZE     = 4
)

// streamEndian is the byte order of every fixed width integer on the wire.
// Little-endian is canonical and must match on both ends.
var streamEndian = binary.LittleEndian

// Stream is a byte buffer that is appended at the tail and read from a cursor
type Stream struct {
	readCursor int
	bytes      []byte
}

// NewStream allocates an empty stream for writing
func NewStream() *Stream {
	return &Stream{
		bytes: make([]byte, 0, _MIN_STREAM_CAP),
	}
}

// NewReadStream wraps existing bytes for reading. The bytes are not copied.
func NewReadStream(b []byte) *Stream {
	return &Stream{
		bytes: b,
	}
}

// Payload returns all bytes written to the stream
func (s *Stream) Payload() []byte {
	return s.bytes
}

// UnreadPayload returns the bytes after the read cursor
func (s *Stream) UnreadPayload() []byte {
	return s.bytes[s.readCursor:]
}

// UnreadLen returns the number of bytes after the read cursor
func (s *Stream) UnreadLen() int {
	return len(s.bytes) - s.readCursor
}

// HasUnreadPayload returns if any payload is left to read
func (s *Stream) HasUnreadPayload() bool {
	return s.readCursor < len(s.bytes)
}

// ClearPayload drops all written bytes and resets the read cursor
func (s *Stream) ClearPayload() {
	s.readCursor = 0
	s.bytes = s.bytes[:0]
}

// AppendByte appends one byte to the end of payload
func (s *Stream) AppendByte(b byte) {
	s.bytes = append(s.bytes, b)
}

// ReadOneByte reads one byte from the beginning of unread payload
func (s *Stream) ReadOneByte() (byte, error) {
	if s.UnreadLen() < 1 {
		return 0, decodingErrorf(ErrShortRead, "read byte at offset %d", s.readCursor)
	}
	v := s.bytes[s.readCursor]
	s.readCursor += 1
	return v, nil
}

// AppendInt32 appends one little-endian int32 to the end of payload
func (s *Stream) AppendInt32(v int32) {
	var b [_INT32_SIZE]byte
	streamEndian.PutUint32(b[:], uint32(v))
	s.bytes = append(s.bytes, b[:]...)
}

// ReadInt32 reads one little-endian int32 from the beginning of unread payload
func (s *Stream) ReadInt32() (int32, error) {
	v, next, err := ReadInt32(s.bytes, s.readCursor)
	if err != nil {
		return 0, err
	}
	s.readCursor = next
	return v, nil
}

// AppendBytes appends slice of bytes to the end of payload
func (s *Stream) AppendBytes(v []byte) {
	s.bytes = append(s.bytes, v...)
}

// ReadBytes reads size bytes from the beginning of unread payload. The bytes are not copied.
func (s *Stream) ReadBytes(size int) ([]byte, error) {
	if size < 0 || s.UnreadLen() < size {
		return nil, decodingErrorf(ErrShortRead, "read %d bytes at offset %d, %d left", size, s.readCursor, s.UnreadLen())
	}
	b := s.bytes[s.readCursor : s.readCursor+size]
	s.readCursor += size
	return b, nil
}

// AppendShortStr appends a string prefixed by its length as one signed byte.
// Strings longer than 127 bytes are rejected and nothing is appended.
func (s *Stream) AppendShortStr(str string) error {
	if len(str) > consts.SHORT_STRING_MAX_LENGTH {
		return encodingErrorf(ErrStringTooLong, "length %d exceeds %d", len(str), consts.SHORT_STRING_MAX_LENGTH)
	}
	s.bytes = append(s.bytes, byte(int8(len(str))))
	s.bytes = append(s.bytes, str...)
	return nil
}

// ReadShortStr reads a string written by AppendShortStr
func (s *Stream) ReadShortStr() (string, error) {
	str, next, err := ReadShortStr(s.bytes, s.readCursor)
	if err != nil {
		return "", err
	}
	s.readCursor = next
	return str, nil
}

// AppendPackedBytes appends bytes prefixed by a packed length:
// one byte when the length is below 255, otherwise 0xFF and a 3 byte little-endian length.
func (s *Stream) AppendPackedBytes(v []byte) error {
	n := len(v)
	if n > consts.PACKED_LENGTH_MAX {
		return encodingErrorf(ErrBytesTooLong, "length %d exceeds %d", n, consts.PACKED_LENGTH_MAX)
	}
	if n < consts.PACKED_LENGTH_ESCAPE {
		s.AppendByte(byte(n))
	} else {
		s.AppendByte(consts.PACKED_LENGTH_ESCAPE)
		s.bytes = append(s.bytes, byte(n), byte(n>>8), byte(n>>16))
	}
	s.AppendBytes(v)
	return nil
}

// ReadPackedBytes reads bytes written by AppendPackedBytes. The bytes are not copied.
func (s *Stream) ReadPackedBytes() ([]byte, error) {
	start := s.readCursor
	b, err := s.ReadOneByte()
	if err != nil {
		return nil, err
	}
	n := int(b)
	if b == consts.PACKED_LENGTH_ESCAPE {
		ext, err := s.ReadBytes(3)
		if err != nil {
			s.readCursor = start
			return nil, err
		}
		n = int(ext[0]) | int(ext[1])<<8 | int(ext[2])<<16
	}
	v, err := s.ReadBytes(n)
	if err != nil {
		s.readCursor = start
		return nil, err
	}
	return v, nil
}

// WriteInt32 encodes n as 4 little-endian bytes
func WriteInt32(n int32) []byte {
	b := make([]byte, _INT32_SIZE)
	streamEndian.PutUint32(b, uint32(n))
	return b
}

// ReadInt32 decodes a little-endian int32 at offset and returns the offset after it
func ReadInt32(buf []byte, offset int) (int32, int, error) {
	if offset < 0 || len(buf)-offset < _INT32_SIZE {
		return 0, offset, decodingErrorf(ErrShortRead, "read int32 at offset %d of %d bytes", offset, len(buf))
	}
	v := int32(streamEndian.Uint32(buf[offset : offset+_INT32_SIZE]))
	return v, offset + _INT32_SIZE, nil
}

// WriteShortStr encodes s as one signed length byte followed by its bytes
func WriteShortStr(s string) ([]byte, error) {
	st := &Stream{bytes: make([]byte, 0, len(s)+1)}
	if err := st.AppendShortStr(s); err != nil {
		return nil, err
	}
	return st.bytes, nil
}

// ReadShortStr decodes a short string at offset and returns the offset after it
func ReadShortStr(buf []byte, offset int) (string, int, error) {
	if offset < 0 || len(buf)-offset < 1 {
		return "", offset, decodingErrorf(ErrShortRead, "read string length at offset %d of %d bytes", offset, len(buf))
	}
	n := int(int8(buf[offset]))
	if n < 0 {
		return "", offset, decodingErrorf(ErrBadLength, "negative string length %d at offset %d", n, offset)
	}
	start := offset + 1
	if len(buf)-start < n {
		return "", offset, decodingErrorf(ErrShortRead, "read string of %d bytes at offset %d, %d left", n, start, len(buf)-start)
	}
	return string(buf[start : start+n]), start + n, nil
}
