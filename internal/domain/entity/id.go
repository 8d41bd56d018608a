package entity

import (
	"github.com/google/uuid"
)

// ID identifies users and tasks. Treat it as opaque and compare with Equal.
type ID struct {
	u uuid.UUID
}

func NewID() ID { return ID{u: uuid.New()} }

// ParseID parses the textual form produced by String.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID{u: u}, nil
}

func IDFromUUID(u uuid.UUID) ID { return ID{u: u} }

func (id ID) UUID() uuid.UUID { return id.u }

func (id ID) String() string { return id.u.String() }

func (id ID) IsZero() bool { return id.u == uuid.Nil }

// Equal reports whether both identifiers refer to the same record.
func (id ID) Equal(other ID) bool { return id.u == other.u }

func (id ID) MarshalText() ([]byte, error) { return []byte(id.u.String()), nil }

func (id *ID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	id.u = u
	return nil
}
