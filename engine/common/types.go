package common

import (
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

// ENTITYID_LENGTH is the length of Entity IDs in string form
const ENTITYID_LENGTH = 27

// EntityID identifies one stored record
type EntityID string

// IsNil returns if EntityID is nil
func (id EntityID) IsNil() bool {
	return id == ""
}

// GenEntityID generates a new EntityID
func GenEntityID() EntityID {
	return EntityID(ksuid.New().String())
}

// ParseEntityID validates a string as EntityID
func ParseEntityID(id string) (EntityID, error) {
	if len(id) != ENTITYID_LENGTH {
		return "", errors.Errorf("%q of len %d is not a valid entity ID (len=%d)", id, len(id), ENTITYID_LENGTH)
	}
	if _, err := ksuid.Parse(id); err != nil {
		return "", errors.Wrapf(err, "invalid entity ID %q", id)
	}
	return EntityID(id), nil
}
