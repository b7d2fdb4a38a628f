// Package section provides hierarchical, named-field documents.
//
// A DataSection holds named scalar fields (ints and strings) and named child
// collections. A child collection holds an ordered list of child sections,
// each of which supports the same operations.
package section

// DataSection is the field accessor interface document codecs are written against
type DataSection interface {
	// Name returns the section name
	Name() string
	// HasKey returns if the named field or collection is present, whatever its kind
	HasKey(name string) bool

	WriteInt(name string, v int64)
	WriteString(name string, v string)
	// ReadInt returns the int field and whether it is present and a whole number in int64 range
	ReadInt(name string) (int64, bool)
	// ReadString returns the string field and whether it is present and a string
	ReadString(name string) (string, bool)

	// CreateChildCollection creates an empty child collection, replacing any field of the same name
	CreateChildCollection(name string) DataSection
	// NewChild appends a new child section to this collection
	NewChild(name string) DataSection
	// Children returns the children of the named collection. ok is false when the
	// name is absent or holds something other than a collection.
	Children(collectionName string) ([]DataSection, bool)

	// Delete removes the named field or collection
	Delete(name string)
}
