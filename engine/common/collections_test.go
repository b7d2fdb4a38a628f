package common

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestStringSet(t *testing.T) {
	ss := StringSet{}
	ss.Add("2")
	ss.Add("1")
	assert.T(t, ss.Contains("1"), "should contain")
	assert.T(t, ss.Contains("2"), "should contain")
	assert.Equal(t, []string{"1", "2"}, ss.ToList())
	ss.Remove("2")
	assert.T(t, !ss.Contains("2"), "should not contain")
}

func TestEntityID(t *testing.T) {
	id := GenEntityID()
	assert.Equal(t, ENTITYID_LENGTH, len(id))
	assert.T(t, !id.IsNil(), "generated id should not be nil")

	parsed, err := ParseEntityID(string(id))
	assert.Equal(t, nil, err)
	assert.Equal(t, id, parsed)

	_, err = ParseEntityID("short")
	assert.T(t, err != nil, "short id should be rejected")
	assert.T(t, EntityID("").IsNil(), "empty id is nil")
}
