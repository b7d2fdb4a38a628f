package datatype

import (
	"math"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/gwdatatype/engine/section"
	"github.com/xiaonanln/gwdatatype/engine/stream"
)

func TestSectionRoundTrip(t *testing.T) {
	values := []*StructuredValue{
		NewStructuredValue(0, "", nil),
		NewStructuredValue(100, "Blah", map[string]string{"happy": "sad"}),
		NewStructuredValue(math.MinInt32, "x", map[string]string{"a": "1", "b": "2"}),
	}
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		values = append(values, randValue(r))
	}

	for _, v := range values {
		node := section.NewMapSection("value")
		if err := EncodeSection(v, node); err != nil {
			t.Fatal(err)
		}
		decoded, err := DecodeSection(node)
		if err != nil {
			t.Fatalf("decode %s: %v", v, err)
		}
		if !v.Equal(decoded) {
			t.Fatalf("round trip mismatch: %s => %s", v, decoded)
		}
	}
}

func TestEncodeSectionLayout(t *testing.T) {
	node := section.NewMapSection("value")
	node.WriteString("sibling", "untouched")
	if err := EncodeSection(NewStructuredValue(7, "seven", map[string]string{"b": "2", "a": "1"}), node); err != nil {
		t.Fatal(err)
	}

	s, _ := node.ReadString("sibling")
	assert.Equal(t, "untouched", s)
	n, _ := node.ReadInt(FIELD_INT_VALUE)
	assert.Equal(t, int64(7), n)

	children, ok := node.Children(FIELD_DICT_VALUE)
	assert.T(t, ok, "dictValue collection written")
	assert.Equal(t, 2, len(children))
	k, _ := children[0].ReadString(FIELD_KEY)
	assert.Equal(t, "a", k)

	// encoding again replaces the mapping instead of appending to it
	_ = EncodeSection(NewStructuredValue(7, "seven", map[string]string{"z": "26"}), node)
	children, _ = node.Children(FIELD_DICT_VALUE)
	assert.Equal(t, 1, len(children))
}

func TestEncodeSectionNil(t *testing.T) {
	node := section.NewMapSection("value")
	assert.Equal(t, nil, EncodeSection(nil, node))
	v, err := DecodeSection(node)
	assert.Equal(t, nil, err)
	assert.T(t, DefaultValue().Equal(v), v)
}

func TestDecodeSectionEmptyIsDefault(t *testing.T) {
	v, err := DecodeSection(section.NewMapSection("empty"))
	assert.Equal(t, nil, err)
	assert.T(t, DefaultValue().Equal(v), v)

	// only intValue decides; other fields are ignored when it is absent
	node := section.NewMapSection("partial")
	node.WriteString(FIELD_STRING_VALUE, "ignored")
	v, err = DecodeSection(node)
	assert.Equal(t, nil, err)
	assert.T(t, DefaultValue().Equal(v), v)
}

func TestDecodeSectionMalformed(t *testing.T) {
	node := section.NewMapSection("value")
	node.WriteInt(FIELD_INT_VALUE, 1)
	_, err := DecodeSection(node)
	assert.T(t, IsDecodingError(err), "missing stringValue must fail")
	assert.Equal(t, ErrMissingField, errors.Cause(err))

	node.WriteString(FIELD_STRING_VALUE, "s")
	v, err := DecodeSection(node)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(v.DictValue))

	coll := node.CreateChildCollection(FIELD_DICT_VALUE)
	item := coll.NewChild("item")
	item.WriteString(FIELD_KEY, "k")
	_, err = DecodeSection(node)
	assert.T(t, IsDecodingError(err), "child without value must fail")

	coll = node.CreateChildCollection(FIELD_DICT_VALUE)
	item = coll.NewChild("item")
	item.WriteString(FIELD_VALUE, "v")
	_, err = DecodeSection(node)
	assert.T(t, IsDecodingError(err), "child without key must fail")

	node.CreateChildCollection(FIELD_DICT_VALUE)
	node.WriteString(FIELD_STRING_VALUE, "s")
	node.WriteInt(FIELD_INT_VALUE, math.MaxInt32+1)
	_, err = DecodeSection(node)
	assert.T(t, IsDecodingError(err), "int overflow must fail")
	assert.Equal(t, ErrIntOverflow, errors.Cause(err))
}

func TestDecodeSectionFromSerializedDocument(t *testing.T) {
	for _, format := range []section.Format{section.JSON, section.YAML, section.MSGPACK} {
		node := section.NewMapSection("value")
		v := NewStructuredValue(-42, "neg", map[string]string{"x": "y"})
		_ = EncodeSection(v, node)

		data, err := section.Marshal(node, format)
		if err != nil {
			t.Fatal(err)
		}
		restored, err := section.Unmarshal("value", data, format)
		if err != nil {
			t.Fatal(err)
		}
		decoded, err := DecodeSection(restored)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		assert.T(t, v.Equal(decoded), format, decoded)
	}
}

func isUTF8(v *StructuredValue) bool {
	if !utf8.ValidString(v.StringValue) {
		return false
	}
	for k, val := range v.DictValue {
		if !utf8.ValidString(k) || !utf8.ValidString(val) {
			return false
		}
	}
	return true
}

func randText(r *rand.Rand, maxRunes int) string {
	runes := make([]rune, r.Intn(maxRunes+1))
	for i := range runes {
		switch r.Intn(3) {
		case 0:
			runes[i] = rune(r.Intn(0x80))
		case 1:
			runes[i] = rune(0x400 + r.Intn(0x100))
		default:
			runes[i] = rune(0x4e00 + r.Intn(0x100))
		}
	}
	return string(runes)
}

func TestSerializedDocumentRandomValues(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	values := make([]*StructuredValue, 0, 200)
	for i := 0; i < 100; i++ {
		values = append(values, randValue(r))
		dict := map[string]string{}
		for j := r.Intn(5); j > 0; j-- {
			dict[randText(r, 40)] = randText(r, 40)
		}
		values = append(values, NewStructuredValue(int32(r.Uint32()), randText(r, 40), dict))
	}

	for _, format := range []section.Format{section.JSON, section.YAML, section.MSGPACK} {
		for _, v := range values {
			node := section.NewMapSection("value")
			_ = EncodeSection(v, node)
			data, err := section.Marshal(node, format)
			if format == section.JSON && !isUTF8(v) {
				assert.T(t, IsEncodingError(err), "JSON must refuse non UTF-8 strings:", v)
				assert.Equal(t, stream.ErrInvalidUTF8, errors.Cause(err))
				continue
			}
			if err != nil {
				t.Fatalf("%s marshal %s: %v", format, v, err)
			}
			restored, err := section.Unmarshal("value", data, format)
			if err != nil {
				t.Fatalf("%s unmarshal %s: %v", format, v, err)
			}
			decoded, err := DecodeSection(restored)
			if err != nil {
				t.Fatalf("%s decode %s: %v", format, v, err)
			}
			if !v.Equal(decoded) {
				t.Fatalf("%s round trip mismatch: %s => %s", format, v, decoded)
			}
		}
	}
}

func decodeJSON(t *testing.T, doc string) (*StructuredValue, error) {
	node, err := section.Unmarshal("value", []byte(doc), section.JSON)
	if err != nil {
		t.Fatal(err)
	}
	return DecodeSection(node)
}

func TestDecodeSectionWrongShapes(t *testing.T) {
	for _, doc := range []string{
		`{"intValue": 1, "stringValue": "s", "dictValue": {"happy": "sad"}}`,
		`{"intValue": 1, "stringValue": "s", "dictValue": "oops"}`,
		`{"intValue": 1, "stringValue": "s", "dictValue": 3}`,
	} {
		_, err := decodeJSON(t, doc)
		assert.T(t, IsDecodingError(err), doc, err)
		assert.Equal(t, FIELD_DICT_VALUE, err.(*DecodingError).Field)
		assert.Equal(t, ErrWrongType, errors.Cause(err))
	}

	_, err := decodeJSON(t, `{"intValue": 1, "stringValue": 5}`)
	assert.Equal(t, FIELD_STRING_VALUE, err.(*DecodingError).Field)
	assert.Equal(t, ErrWrongType, errors.Cause(err))

	for _, doc := range []string{
		`{"intValue": 1.9, "stringValue": "s"}`,
		`{"intValue": 1e30, "stringValue": "s"}`,
		`{"intValue": "1", "stringValue": "s"}`,
		`{"intValue": true, "stringValue": "s"}`,
	} {
		_, err := decodeJSON(t, doc)
		assert.T(t, IsDecodingError(err), doc, err)
		assert.Equal(t, FIELD_INT_VALUE, err.(*DecodingError).Field)
		assert.Equal(t, ErrWrongType, errors.Cause(err))
	}

	_, err = decodeJSON(t, `{"intValue": 3e9, "stringValue": "s"}`)
	assert.Equal(t, ErrIntOverflow, errors.Cause(err))
	assert.T(t, strings.Contains(err.Error(), "3000000000"), err)

	v, err := decodeJSON(t, `{"intValue": 2.0, "stringValue": "s", "dictValue": []}`)
	assert.Equal(t, nil, err)
	assert.T(t, NewStructuredValue(2, "s", nil).Equal(v), v)

	v, err = decodeJSON(t, `{"intValue": 2, "stringValue": "s", "dictValue": null}`)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(v.DictValue))
}
