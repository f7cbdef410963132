package lattice

import (
	"fmt"
	"strconv"
)

// EventKind tells how a path advanced through the profile at one position.
type EventKind uint8

const (
	// EventNone is the unset kind. It never appears on a completed path.
	EventNone EventKind = iota
	// EventMatch consumed a residue against a profile column.
	EventMatch
	// EventInsertion consumed a residue between two profile columns.
	EventInsertion
)

// String returns the short name of the kind.
func (k EventKind) String() string {
	switch k {
	case EventMatch:
		return "match"
	case EventInsertion:
		return "insertion"
	case EventNone:
		return "none"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

const columnBits = 30

// ColumnMask is the largest profile column an [Event] can hold.
const ColumnMask = 1<<columnBits - 1

// Event is the emission tag of a link: a profile column and an [EventKind],
// packed into 32 bits (30 bits of column, 2 bits of kind).
// The zero Event is unset.
type Event uint32

// NewEvent packs column and kind. Columns wider than 30 bits are masked.
func NewEvent(column int, kind EventKind) Event {
	return Event(uint32(column)&ColumnMask | uint32(kind&3)<<columnBits)
}

// Column returns the 1-based profile column.
func (e Event) Column() int { return int(uint32(e) & ColumnMask) }

// Kind returns the emission kind.
func (e Event) Kind() EventKind { return EventKind(uint32(e) >> columnBits) }

// IsSet reports whether the event has a kind other than [EventNone].
func (e Event) IsSet() bool { return e.Kind() != EventNone }

// String renders the event as "M12", "I3" or "-".
func (e Event) String() string {
	switch e.Kind() {
	case EventMatch:
		return fmt.Sprintf("M%d", e.Column())
	case EventInsertion:
		return fmt.Sprintf("I%d", e.Column())
	default:
		return "-"
	}
}

// MarshalText implements encoding.TextMarshaler using the [Event.String] form.
func (e Event) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText parses the form produced by [Event.MarshalText].
func (e *Event) UnmarshalText(text []byte) error {
	ev, err := ParseEvent(string(text))
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// ParseEvent parses "M12", "I3" or "-".
func ParseEvent(s string) (Event, error) {
	if s == "-" || s == "" {
		return 0, nil
	}
	var kind EventKind
	switch s[0] {
	case 'M':
		kind = EventMatch
	case 'I':
		kind = EventInsertion
	default:
		return 0, fmt.Errorf("event %q: unknown kind %q", s, s[0])
	}
	col, err := strconv.Atoi(s[1:])
	if err != nil || col < 0 || col > ColumnMask {
		return 0, fmt.Errorf("event %q: invalid column", s)
	}
	return NewEvent(col, kind), nil
}
