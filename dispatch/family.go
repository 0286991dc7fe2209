// Package dispatch - Typ-Dispatch fuer generische Tensor-Operationen
//
// Dieses Paket waehlt zu einer Operations-Familie und dem Laufzeit-
// Element-Typ der Operanden genau einen spezialisierten Kernel aus und
// ruft ihn auf. Die Dispatch-Tabelle ist geschlossen und total ueber
// die deklarierten Kombinationen; es gibt keinen stillen Fallback.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Family identifies a generic operation whose kernel depends on the
// element type of its operands.
type Family int

const (
	FamilySort Family = iota
	FamilySortTAD
	FamilySortCOO
	FamilyRavel
	FamilyUnravel
	FamilyEncodeBitmap
	FamilyDecodeBitmap
)

var familyNames = [...]string{
	FamilySort:         "sort",
	FamilySortTAD:      "sort_tad",
	FamilySortCOO:      "sort_coo",
	FamilyRavel:        "ravel",
	FamilyUnravel:      "unravel",
	FamilyEncodeBitmap: "encode_bitmap",
	FamilyDecodeBitmap: "decode_bitmap",
}

func (f Family) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Family(%d)", int(f))
	}
	return familyNames[f]
}

// Valid reports whether f is a declared family.
func (f Family) Valid() bool {
	return f >= 0 && int(f) < len(familyNames)
}

// Families returns all declared families in declaration order.
func Families() []Family {
	families := make([]Family, len(familyNames))
	for i := range families {
		families[i] = Family(i)
	}
	return families
}

// ParseFamily parses a family name as printed by String.
func ParseFamily(s string) (Family, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range familyNames {
		if name == s {
			return Family(i), nil
		}
	}
	if near := closest(s); near != "" {
		return 0, fmt.Errorf("unknown operation family %q, did you mean %q?", s, near)
	}
	return 0, fmt.Errorf("unknown operation family %q", s)
}

// closest returns the family name nearest to s, or "" if none is close.
func closest(s string) string {
	var best string
	score := 3
	for _, name := range familyNames {
		if d := levenshtein.ComputeDistance(s, name); d < score {
			score = d
			best = name
		}
	}
	return best
}
