package datatype

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/stream"
)

func randString(r *rand.Rand, maxLen int) string {
	b := make([]byte, r.Intn(maxLen+1))
	for i := range b {
		b[i] = byte(r.Intn(256))
	}
	return string(b)
}

func randValue(r *rand.Rand) *StructuredValue {
	dict := map[string]string{}
	for i := r.Intn(8); i > 0; i-- {
		dict[randString(r, 127)] = randString(r, 127)
	}
	return NewStructuredValue(int32(r.Uint32()), randString(r, 127), dict)
}

func TestEncodeStreamExample(t *testing.T) {
	v := NewStructuredValue(100, "Blah", map[string]string{"happy": "sad"})
	b, err := EncodeStream(v)
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{
		100, 0, 0, 0,
		4, 'B', 'l', 'a', 'h',
		5, 'h', 'a', 'p', 'p', 'y',
		3, 's', 'a', 'd',
	}
	assert.Equal(t, expected, b)

	decoded, err := DecodeStream(b)
	if err != nil {
		t.Fatal(err)
	}
	assert.T(t, v.Equal(decoded), decoded)
}

func TestEncodeStreamNil(t *testing.T) {
	b, err := EncodeStream(nil)
	if err != nil {
		t.Fatal(err)
	}
	expected, _ := EncodeStream(DefaultValue())
	assert.Equal(t, expected, b)
}

func TestEncodeStreamDeterministic(t *testing.T) {
	v := NewStructuredValue(1, "", map[string]string{"b": "2", "a": "1", "c": "3"})
	first, _ := EncodeStream(v)
	for i := 0; i < 20; i++ {
		b, _ := EncodeStream(v)
		assert.T(t, bytes.Equal(first, b), "encoding should not depend on map iteration order")
	}
	assert.Equal(t, []byte{1, 'a', 1, '1'}, first[5:9])
}

func TestStreamRoundTrip(t *testing.T) {
	values := []*StructuredValue{
		NewStructuredValue(0, "", nil),
		NewStructuredValue(-1, strings.Repeat("s", 127), map[string]string{"": ""}),
		NewStructuredValue(1<<31-1, "x", map[string]string{strings.Repeat("k", 127): strings.Repeat("v", 127)}),
		NewStructuredValue(-1<<31, "héllo", map[string]string{"ключ": "значение", "a": ""}),
		DefaultValue(),
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		values = append(values, randValue(r))
	}

	for _, v := range values {
		b, err := EncodeStream(v)
		if err != nil {
			t.Fatalf("encode %s: %v", v, err)
		}
		decoded, err := DecodeStream(b)
		if err != nil {
			t.Fatalf("decode %s: %v", v, err)
		}
		if !v.Equal(decoded) {
			t.Fatalf("round trip mismatch: %s => %s", v, decoded)
		}
	}
}

func TestEncodeStreamDoesNotMutate(t *testing.T) {
	v := NewStructuredValue(5, "five", map[string]string{"k": "v"})
	orig := v.Clone()
	_, _ = EncodeStream(v)
	assert.T(t, orig.Equal(v), "value changed by encoding")
}

func TestEncodeStreamLengthOverflow(t *testing.T) {
	v := NewStructuredValue(1, strings.Repeat("a", 128), nil)
	b, err := EncodeStream(v)
	assert.T(t, IsEncodingError(err), "128 byte string must fail:", err)
	assert.T(t, b == nil, "no bytes on failure")
	assert.Equal(t, stream.ErrStringTooLong, errors.Cause(err))
	assert.Equal(t, FIELD_STRING_VALUE, err.(*EncodingError).Field)

	v = NewStructuredValue(1, "ok", map[string]string{strings.Repeat("k", 128): "v"})
	_, err = EncodeStream(v)
	assert.T(t, IsEncodingError(err), "128 byte key must fail")

	v = NewStructuredValue(1, "ok", map[string]string{"k": strings.Repeat("v", 200)})
	_, err = EncodeStream(v)
	assert.T(t, IsEncodingError(err), "200 byte value must fail")
	assert.Equal(t, "dictValue[k]", err.(*EncodingError).Field)
}

func TestDecodeStreamTruncation(t *testing.T) {
	b, err := EncodeStream(NewStructuredValue(1, "a", map[string]string{"k": "v", "k2": "vv"}))
	if err != nil {
		t.Fatal(err)
	}
	// [1 0 0 0][1 a][1 k][1 v][2 k 2][2 v v]
	assert.Equal(t, 16, len(b))

	// cut inside the second pair's value bytes
	_, err = DecodeStream(b[:15])
	assert.T(t, IsDecodingError(err), "cut in second value must fail:", err)
	_, err = DecodeStream(b[:14])
	assert.T(t, IsDecodingError(err), "value length without bytes must fail:", err)
	_, err = DecodeStream(b[:13])
	assert.T(t, IsDecodingError(err), "key without value must fail:", err)
	assert.Equal(t, ErrTrailingKey, errors.Cause(err))

	// a cut on a pair boundary is indistinguishable from fewer entries
	v, err := DecodeStream(b[:10])
	assert.Equal(t, nil, err)
	assert.Equal(t, map[string]string{"k": "v"}, v.DictValue)
}

func TestDecodeStreamTruncationSinglePair(t *testing.T) {
	b, _ := EncodeStream(NewStructuredValue(1, "a", map[string]string{"k": "v"}))
	assert.Equal(t, 10, len(b))
	for _, cut := range []int{0, 3, 4, 5, 7, 8, 9} {
		_, err := DecodeStream(b[:cut])
		assert.T(t, IsDecodingError(err), "prefix", cut, "must fail")
	}
	v, err := DecodeStream(b[:6])
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(v.DictValue))
}

func TestDecodeStreamDuplicateKey(t *testing.T) {
	s := stream.NewStream()
	s.AppendInt32(3)
	_ = s.AppendShortStr("")
	_ = s.AppendShortStr("k")
	_ = s.AppendShortStr("first")
	_ = s.AppendShortStr("k")
	_ = s.AppendShortStr("last")
	v, err := DecodeStream(s.Payload())
	assert.Equal(t, nil, err)
	assert.Equal(t, map[string]string{"k": "last"}, v.DictValue)
}
