package datatype

import (
	"github.com/xiaonanln/gwdatatype/engine/consts"
	"github.com/xiaonanln/gwdatatype/engine/gwlog"
	"github.com/xiaonanln/gwdatatype/engine/stream"
)

// Stream layout:
//
//	[int32 IntValue][short string StringValue]([short string key][short string value])*
//
// The mapping has no count and no terminator: the end of the buffer ends it.
// The layout therefore cannot be followed by other data unless it is framed,
// see StructuredType.AddToStream.

// EncodeStream encodes v in the stream layout. A nil v encodes DefaultValue().
// Mapping keys are written in ascending order.
func EncodeStream(v *StructuredValue) ([]byte, error) {
	if v == nil {
		v = DefaultValue()
	}
	s := stream.NewStream()
	if err := appendStructuredValue(s, v); err != nil {
		return nil, err
	}
	if consts.DEBUG_CODEC {
		gwlog.Debugf("EncodeStream: %s => %d bytes", v, len(s.Payload()))
	}
	return s.Payload(), nil
}

func appendStructuredValue(s *stream.Stream, v *StructuredValue) error {
	s.AppendInt32(v.IntValue)
	if err := s.AppendShortStr(v.StringValue); err != nil {
		return stream.WithField(err, FIELD_STRING_VALUE)
	}
	for _, k := range v.SortedKeys() {
		if err := s.AppendShortStr(k); err != nil {
			return stream.WithField(err, FIELD_DICT_VALUE+".key")
		}
		if err := s.AppendShortStr(v.DictValue[k]); err != nil {
			return stream.WithField(err, FIELD_DICT_VALUE+"["+k+"]")
		}
	}
	return nil
}

// DecodeStream decodes a value from the stream layout. The whole buffer is consumed;
// bytes that do not form complete key/value pairs fail with a DecodingError.
// A key repeated in the stream keeps its last value.
func DecodeStream(b []byte) (*StructuredValue, error) {
	v, err := readStructuredValue(stream.NewReadStream(b))
	if err != nil {
		return nil, err
	}
	if consts.DEBUG_CODEC {
		gwlog.Debugf("DecodeStream: %d bytes => %s", len(b), v)
	}
	return v, nil
}

func readStructuredValue(s *stream.Stream) (*StructuredValue, error) {
	intValue, err := s.ReadInt32()
	if err != nil {
		return nil, stream.WithField(err, FIELD_INT_VALUE)
	}
	stringValue, err := s.ReadShortStr()
	if err != nil {
		return nil, stream.WithField(err, FIELD_STRING_VALUE)
	}

	v := &StructuredValue{
		IntValue:    intValue,
		StringValue: stringValue,
		DictValue:   map[string]string{},
	}
	for s.HasUnreadPayload() {
		k, err := s.ReadShortStr()
		if err != nil {
			return nil, stream.WithField(err, FIELD_DICT_VALUE+".key")
		}
		if !s.HasUnreadPayload() {
			return nil, decodingError(FIELD_DICT_VALUE+"["+k+"]", ErrTrailingKey, "key %q at end of stream", k)
		}
		val, err := s.ReadShortStr()
		if err != nil {
			return nil, stream.WithField(err, FIELD_DICT_VALUE+"["+k+"]")
		}
		v.DictValue[k] = val
	}
	return v, nil
}
