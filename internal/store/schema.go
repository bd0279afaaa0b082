package store

// Column describes one mapped column of a record type.
type Column struct {
	Name   string
	Unique bool
}

// Relation declares a foreign key from a local column to another table.
type Relation struct {
	Column string // local column holding the reference
	Table  string // referenced table
	Ref    string // referenced column, usually the primary key
}

// Schema statically maps a record type onto its table: column set, primary
// key, uniqueness, relations, and scan destinations. Schemas are built once
// at startup; nothing is discovered at query time.
type Schema[R any] struct {
	Table     string
	PK        string
	Columns   []Column
	Relations []Relation
	// Tombstone names the soft-delete column. Empty means rows of this
	// type are only ever hard-deleted.
	Tombstone string
	// Dest returns scan destinations aligned with Columns order.
	Dest func(*R) []any
}

func (s *Schema[R]) has(name string) bool {
	for _, c := range s.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
