package section

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/xiaonanln/typeconv"
)

const (
	// DEFAULT_CHILD_NAME names children restored from list-shaped documents
	DEFAULT_CHILD_NAME = "item"
)

// MapSection is an in-memory DataSection.
//
// MapSection is not safe for concurrent writes; a section has one writer at a time.
type MapSection struct {
	name         string
	keys         []string // insertion order of attrs
	attrs        map[string]interface{}
	isCollection bool
	children     []*MapSection
}

// NewMapSection creates an empty root section
func NewMapSection(name string) *MapSection {
	return &MapSection{
		name:  name,
		attrs: map[string]interface{}{},
	}
}

// Name returns the section name
func (s *MapSection) Name() string {
	return s.name
}

// IsCollection returns if the section was created as a child collection
func (s *MapSection) IsCollection() bool {
	return s.isCollection
}

// Keys returns the field names in insertion order
func (s *MapSection) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// HasKey returns if the named field or collection exists
func (s *MapSection) HasKey(name string) bool {
	_, ok := s.attrs[name]
	return ok
}

// Size returns the number of fields
func (s *MapSection) Size() int {
	return len(s.attrs)
}

func (s *MapSection) set(name string, val interface{}) {
	if _, ok := s.attrs[name]; !ok {
		s.keys = append(s.keys, name)
	}
	s.attrs[name] = val
}

// WriteInt sets int value at the name
func (s *MapSection) WriteInt(name string, v int64) {
	s.set(name, v)
}

// WriteString sets string value at the name
func (s *MapSection) WriteString(name string, v string) {
	s.set(name, v)
}

// ReadInt reads int value at the name. Numbers of any width are accepted, as
// documents restored from JSON, BSON or MessagePack carry their own numeric types.
// Floats must hold a whole number, and every value must fit int64.
func (s *MapSection) ReadInt(name string) (int64, bool) {
	val, ok := s.attrs[name]
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return typeconv.Int(val), true
	case uint:
		return int64(v), uint64(v) <= math.MaxInt64
	case uint64:
		return int64(v), v <= math.MaxInt64
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// ReadString reads string value at the name
func (s *MapSection) ReadString(name string) (string, bool) {
	val, ok := s.attrs[name].(string)
	return val, ok
}

// CreateChildCollection creates an empty child collection at the name
func (s *MapSection) CreateChildCollection(name string) DataSection {
	return s.createChildCollection(name)
}

func (s *MapSection) createChildCollection(name string) *MapSection {
	c := NewMapSection(name)
	c.isCollection = true
	s.set(name, c)
	return c
}

// CreateChildSection creates an empty nested section at the name
func (s *MapSection) CreateChildSection(name string) *MapSection {
	c := NewMapSection(name)
	s.set(name, c)
	return c
}

// GetChildSection returns the nested section or collection at the name
func (s *MapSection) GetChildSection(name string) *MapSection {
	c, _ := s.attrs[name].(*MapSection)
	return c
}

// NewChild appends a new child to this section
func (s *MapSection) NewChild(name string) DataSection {
	c := NewMapSection(name)
	s.children = append(s.children, c)
	return c
}

// Children returns the children of the named collection
func (s *MapSection) Children(collectionName string) ([]DataSection, bool) {
	c, ok := s.attrs[collectionName].(*MapSection)
	if !ok || !c.isCollection {
		return nil, false
	}
	children := make([]DataSection, len(c.children))
	for i, child := range c.children {
		children[i] = child
	}
	return children, true
}

// Delete removes the named field or collection
func (s *MapSection) Delete(name string) {
	if _, ok := s.attrs[name]; !ok {
		return
	}
	delete(s.attrs, name)
	for i, k := range s.keys {
		if k == name {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// String convert MapSection to readable string
func (s *MapSection) String() string {
	var sb strings.Builder
	s.writeString(&sb)
	return sb.String()
}

func (s *MapSection) writeString(sb *strings.Builder) {
	if s.isCollection {
		sb.WriteString("[")
		for i, c := range s.children {
			if i > 0 {
				sb.WriteString(", ")
			}
			c.writeString(sb)
		}
		sb.WriteString("]")
		return
	}

	sb.WriteString("{")
	for i, k := range s.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%#v: ", k)
		if c, ok := s.attrs[k].(*MapSection); ok {
			c.writeString(sb)
		} else {
			fmt.Fprintf(sb, "%#v", s.attrs[k])
		}
	}
	sb.WriteString("}")
}

// ToMap converts the section to plain maps and lists: nested sections become
// maps, collections become lists of maps
func (s *MapSection) ToMap() map[string]interface{} {
	m := make(map[string]interface{}, len(s.attrs))
	for k, v := range s.attrs {
		if c, ok := v.(*MapSection); ok {
			if c.isCollection {
				m[k] = c.toList()
			} else {
				m[k] = c.ToMap()
			}
		} else {
			m[k] = v
		}
	}
	return m
}

func (s *MapSection) toList() []interface{} {
	l := make([]interface{}, len(s.children))
	for i, c := range s.children {
		l[i] = c.ToMap()
	}
	return l
}

// FromMap builds a section from plain maps and lists as produced by ToMap or
// by decoding JSON, YAML or MessagePack. Fields are added in sorted key order.
func FromMap(name string, m map[string]interface{}) *MapSection {
	s := NewMapSection(name)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case nil:
			// absent
		case []interface{}:
			c := s.createChildCollection(k)
			for _, item := range v {
				if im := asStringMap(item); im != nil {
					child := FromMap(DEFAULT_CHILD_NAME, im)
					c.children = append(c.children, child)
				} else {
					// scalars in a list become children with a single "value" field
					child := NewMapSection(DEFAULT_CHILD_NAME)
					child.set("value", item)
					c.children = append(c.children, child)
				}
			}
		default:
			if im := asStringMap(v); im != nil {
				c := FromMap(k, im)
				s.set(k, c)
			} else {
				s.set(k, v)
			}
		}
	}
	return s
}

func asStringMap(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case map[interface{}]interface{}:
		sm := make(map[string]interface{}, len(m))
		for k, val := range m {
			sm[fmt.Sprint(k)] = val
		}
		return sm
	}
	return nil
}
