package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is an optional boolean: set to true, set to false, or absent.
// The zero value is FlagUnset.
type Flag uint8

const (
	FlagUnset Flag = iota
	FlagFalse
	FlagTrue
)

// FlagFromBool converts a nullable bool into a Flag.
func FlagFromBool(b *bool) Flag {
	if b == nil {
		return FlagUnset
	}
	if *b {
		return FlagTrue
	}
	return FlagFalse
}

// ParseFlag accepts "true"/"false" in any case and "" for unset.
func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FlagUnset, nil
	case "true":
		return FlagTrue, nil
	case "false":
		return FlagFalse, nil
	default:
		return FlagUnset, fmt.Errorf("invalid flag value %q: expected true, false or empty", s)
	}
}

// IsTrue reports whether the flag is explicitly set to true.
func (f Flag) IsTrue() bool {
	return f == FlagTrue
}

// IsSet reports whether the flag carries a value.
func (f Flag) IsSet() bool {
	return f != FlagUnset
}

func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "true"
	case FlagFalse:
		return "false"
	default:
		return "unset"
	}
}

// MarshalJSON encodes an unset flag as null.
func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case FlagTrue:
		return []byte("true"), nil
	case FlagFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*f = FlagUnset
		return nil
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err != nil {
		return fmt.Errorf("flag must be a boolean or null: %w", err)
	}
	*f = FlagFromBool(&b)
	return nil
}

// ReverseCharge is the two-valued reverse-charge indicator. Its text form
// ("True"/"False") is what catalog rows are compared against.
type ReverseCharge bool

const (
	ReverseChargeFalse ReverseCharge = false
	ReverseChargeTrue  ReverseCharge = true
)

// ReverseChargeFromFlag maps an absent flag to ReverseChargeFalse.
func ReverseChargeFromFlag(f Flag) ReverseCharge {
	return ReverseCharge(f.IsTrue())
}

func (r ReverseCharge) String() string {
	if r {
		return "True"
	}
	return "False"
}

// MarshalJSON encodes the indicator in its text form.
func (r ReverseCharge) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}
