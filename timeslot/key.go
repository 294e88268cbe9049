package timeslot

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ErrMalformed is returned for anything that is not a valid "HH:MM-HH:MM" key
// or "HH:MM" clock value.
var ErrMalformed = errors.New("timeslot: malformed value")

const endOfDay Minute = 24 * 60

// Minute is a wall-clock time expressed as minutes since midnight.
type Minute int

// ParseClock parses "HH:MM". "24:00" is accepted and means end of day.
func ParseClock(s string) (Minute, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	h, ok1 := twoDigits(s[0:2])
	m, ok2 := twoDigits(s[3:5])
	if !ok1 || !ok2 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return Minute(h*60 + m), nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func (m Minute) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Key identifies a timeslot by its start and end on the wall clock.
// The zero Key is not valid; use Parse or Generate to obtain one.
type Key struct {
	Start Minute
	End   Minute
}

// Parse canonicalizes a timeslot key. Whitespace anywhere in s is ignored,
// so "10:00 - 10:30" and "10:00-10:30" yield the same Key.
func Parse(s string) (Key, error) {
	compact := strings.Join(strings.Fields(s), "")
	startStr, endStr, ok := strings.Cut(compact, "-")
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	start, err := ParseClock(startStr)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	end, err := ParseClock(endStr)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if start >= endOfDay || end <= start {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return Key{Start: start, End: end}, nil
}

// Format returns the canonical "HH:MM-HH:MM" form of k.
func Format(k Key) string {
	return k.Start.String() + "-" + k.End.String()
}

func (k Key) String() string { return Format(k) }

// Minutes is the length of the slot.
func (k Key) Minutes() int { return int(k.End - k.Start) }

func (k Key) MarshalText() ([]byte, error) {
	return []byte(Format(k)), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Keys are stored as their canonical string.
func (k Key) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(Format(k))
}

func (k *Key) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("%w: bson type %s", ErrMalformed, t)
	}
	return k.UnmarshalText([]byte(s))
}
