// Package fips resolves US state and county FIPS codes from the region and
// subregion names returned by a geocoding provider.
package fips

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NotAvailable is the sentinel returned for any field that cannot be resolved.
const NotAvailable = "N/A"

const countySuffix = " COUNTY"

// StateMap maps a normalized state name to its 2-digit state FIPS code.
type StateMap map[string]string

// CountyMap maps a state FIPS code to a normalized county name to its 3-digit
// county FIPS code. County names are only unique within a state.
type CountyMap map[string]map[string]string

// Tables holds the reference lookups. A Tables value is never mutated after
// it is built and may be shared across goroutines.
type Tables struct {
	States   StateMap
	Counties CountyMap
}

// Stats summarizes the size of the loaded tables.
type Stats struct {
	States   int `json:"states" yaml:"states"`
	Counties int `json:"counties" yaml:"counties"`
}

// Stats returns the number of states and the total number of counties.
func (t *Tables) Stats() Stats {
	s := Stats{States: len(t.States)}
	for _, inner := range t.Counties {
		s.Counties += len(inner)
	}
	return s
}

// Fingerprint returns a SHA-256 hex digest of every entry in t. Tables with
// the same contents have the same fingerprint regardless of source file.
func (t *Tables) Fingerprint() string {
	lines := make([]string, 0, len(t.States)+len(t.Counties)*64)
	for name, code := range t.States {
		lines = append(lines, "S|"+name+"|"+code)
	}
	for stateCode, inner := range t.Counties {
		for name, code := range inner {
			lines = append(lines, "C|"+stateCode+"|"+name+"|"+code)
		}
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeState returns the lookup key for a state name.
func NormalizeState(name string) string {
	return strings.ToUpper(norm.NFC.String(name))
}

// NormalizeCounty returns the lookup key for a county name: uppercase with a
// trailing " COUNTY" removed.
func NormalizeCounty(name string) string {
	return strings.TrimSuffix(NormalizeState(name), countySuffix)
}

// countyFromFullName extracts the county key from a "County, State" label.
// ok is false when the label has no usable county segment.
func countyFromFullName(fullName string) (key string, ok bool) {
	parts := strings.Split(fullName, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	// strings.Split never returns an empty slice; the length guard is kept
	// alongside the empty-segment check for rows like ", Texas".
	if len(parts) < 1 || parts[0] == "" {
		return "", false
	}
	return NormalizeCounty(parts[0]), true
}
