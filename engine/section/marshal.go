package section

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack"
	"github.com/xiaonanln/gwdatatype/engine/stream"
	"gopkg.in/yaml.v3"
)

// Format names a document serialization format
type Format string

const (
	// JSON is the format used by filesystem storage
	JSON Format = "json"
	// YAML is the human readable format of the command line tool
	YAML Format = "yaml"
	// MSGPACK is the compact binary format
	MSGPACK Format = "msgpack"
)

// ParseFormat converts a format name to Format
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case JSON, YAML, MSGPACK:
		return Format(s), nil
	case "yml":
		return YAML, nil
	}
	return "", errors.Errorf("unknown document format: %s", s)
}

// Marshal serializes the section in the given format.
// JSON only carries UTF-8 text, so a section holding any other string fails
// with an EncodingError naming the field. YAML and MessagePack keep the bytes.
func Marshal(s *MapSection, format Format) ([]byte, error) {
	m := s.ToMap()
	switch format {
	case JSON:
		if err := checkUTF8(s, ""); err != nil {
			return nil, err
		}
		return json.MarshalIndent(m, "", "\t")
	case YAML:
		return yaml.Marshal(m)
	case MSGPACK:
		var buf bytes.Buffer
		if err := msgpack.NewEncoder(&buf).Encode(m); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Errorf("unknown document format: %s", format)
}

// Unmarshal restores a section named name from data in the given format
func Unmarshal(name string, data []byte, format Format) (*MapSection, error) {
	var m map[string]interface{}
	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, &m)
	case YAML:
		err = yaml.Unmarshal(data, &m)
	case MSGPACK:
		err = msgpack.Unmarshal(data, &m)
	default:
		return nil, errors.Errorf("unknown document format: %s", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s document", format)
	}
	return FromMap(name, m), nil
}

// checkUTF8 returns an EncodingError for the first field name or string value that is not valid UTF-8
func checkUTF8(s *MapSection, path string) error {
	if s.isCollection {
		for i, c := range s.children {
			if err := checkUTF8(c, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, k := range s.keys {
		field := k
		if path != "" {
			field = path + "." + k
		}
		if !utf8.ValidString(k) {
			return invalidUTF8(field, "field name")
		}
		switch v := s.attrs[k].(type) {
		case string:
			if !utf8.ValidString(v) {
				return invalidUTF8(field, "string value")
			}
		case *MapSection:
			if err := checkUTF8(v, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func invalidUTF8(field string, what string) error {
	return &stream.EncodingError{Field: field, Err: errors.Wrapf(stream.ErrInvalidUTF8, "%s in %s document", what, JSON)}
}
