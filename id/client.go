package id

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// ClientID is a validated external client identifier. Unlike generated
// TypeIDs, client identifiers originate outside the engine (chat
// platforms, account systems) as numeric snowflakes, sometimes wrapped
// in a mention form like "<@123456789>" or "<@!123456789>". ParseClientID
// accepts both and normalizes to the bare digits.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ClientID struct {
	raw   string
	valid bool
}

// NilClientID is the zero-value ClientID.
var NilClientID ClientID

// ParseClientID parses and normalizes a client identifier. The input
// must be a non-empty digit string, optionally wrapped as a mention
// ("<@digits>" or "<@!digits>").
func ParseClientID(s string) (ClientID, error) {
	raw := strings.TrimSpace(s)

	if strings.HasPrefix(raw, "<@") && strings.HasSuffix(raw, ">") {
		raw = strings.TrimSuffix(strings.TrimPrefix(raw, "<@"), ">")
		raw = strings.TrimPrefix(raw, "!")
	}

	if raw == "" {
		return NilClientID, fmt.Errorf("id: parse client id %q: empty", s)
	}

	for _, r := range raw {
		if r < '0' || r > '9' {
			return NilClientID, fmt.Errorf("id: parse client id %q: non-digit character %q", s, r)
		}
	}

	return ClientID{raw: raw, valid: true}, nil
}

// MustParseClientID is like ParseClientID but panics on error.
// Use for hardcoded values.
func MustParseClientID(s string) ClientID {
	c, err := ParseClientID(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse client id %q: %v", s, err))
	}

	return c
}

// String returns the normalized digit string, or "" for the nil value.
func (c ClientID) String() string {
	if !c.valid {
		return ""
	}

	return c.raw
}

// Mention returns the identifier in mention form ("<@digits>").
func (c ClientID) Mention() string {
	if !c.valid {
		return ""
	}

	return "<@" + c.raw + ">"
}

// IsNil reports whether this ClientID is the zero value.
func (c ClientID) IsNil() bool {
	return !c.valid
}

// Equal reports whether two ClientIDs identify the same client.
func (c ClientID) Equal(other ClientID) bool {
	return c.valid == other.valid && c.raw == other.raw
}

// MarshalText implements encoding.TextMarshaler.
func (c ClientID) MarshalText() ([]byte, error) {
	if !c.valid {
		return []byte{}, nil
	}

	return []byte(c.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClientID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*c = NilClientID

		return nil
	}

	parsed, err := ParseClientID(string(data))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// Value implements driver.Valuer for database storage.
func (c ClientID) Value() (driver.Value, error) {
	if !c.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return c.raw, nil
}

// Scan implements sql.Scanner for database retrieval.
func (c *ClientID) Scan(src any) error {
	if src == nil {
		*c = NilClientID

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*c = NilClientID

			return nil
		}

		return c.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*c = NilClientID

			return nil
		}

		return c.UnmarshalText(v)
	case int64:
		return c.UnmarshalText([]byte(fmt.Sprintf("%d", v)))
	default:
		return fmt.Errorf("id: cannot scan %T into ClientID", src)
	}
}
