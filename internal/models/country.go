package models

import "encoding/json"

// euCountries lists the member-state codes used for the EU/Non EU feature.
var euCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {}, "SE": {},
	"EE": {}, "FI": {}, "FR": {}, "DE": {}, "GR": {}, "HU": {}, "IE": {},
	"IT": {}, "LV": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {}, "PL": {},
	"PT": {}, "RO": {}, "SK": {}, "SI": {}, "ES": {}, "DK": {},
}

// EUCountryCodes returns the EU country codes in no particular order.
func EUCountryCodes() []string {
	codes := make([]string, 0, len(euCountries))
	for code := range euCountries {
		codes = append(codes, code)
	}
	return codes
}

// Country is a resolved country code or the not-found sentinel.
// Two countries are equal only when both are resolved and their codes match.
type Country struct {
	code     string
	resolved bool
}

// UnknownCountry is the sentinel for a failed lookup.
var UnknownCountry = Country{}

// KnownCountry wraps a resolved country code.
func KnownCountry(code string) Country {
	return Country{code: code, resolved: true}
}

// Code returns the country code and whether it was resolved.
func (c Country) Code() (string, bool) {
	return c.code, c.resolved
}

// IsResolved reports whether the country came from a successful lookup.
func (c Country) IsResolved() bool {
	return c.resolved
}

// Equal never reports a match when either side is the sentinel.
func (c Country) Equal(other Country) bool {
	return c.resolved && other.resolved && c.code == other.code
}

// IsEU reports membership in the EU country set. The sentinel is never EU.
func (c Country) IsEU() bool {
	if !c.resolved {
		return false
	}
	_, ok := euCountries[c.code]
	return ok
}

func (c Country) String() string {
	if !c.resolved {
		return "nan"
	}
	return c.code
}

// MarshalJSON encodes the sentinel as null.
func (c Country) MarshalJSON() ([]byte, error) {
	if !c.resolved {
		return []byte("null"), nil
	}
	return json.Marshal(c.code)
}
