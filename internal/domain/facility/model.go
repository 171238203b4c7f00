// Package facility manages the hospitals and health centres deliveries are
// registered against.
package facility

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Hospital maps to the hospitals table. Facilities are deduplicated on the
// (type, block, district) triple since source rows carry no facility IDs.
type Hospital struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	FacilityType string    `db:"facility_type" json:"facility_type"`
	Block        string    `db:"block" json:"block"`
	District     string    `db:"district" json:"district"`
	State        string    `db:"state" json:"state"`
	HasNICU      bool      `db:"has_nicu" json:"has_nicu"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Key is the dedup identity of a facility.
type Key struct {
	FacilityType string
	Block        string
	District     string
}

// NormalizeKey trims and lowercases the triple so spreadsheet-entry casing
// does not split one facility into several.
func NormalizeKey(facilityType, block, district string) Key {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return Key{
		FacilityType: norm(facilityType),
		Block:        norm(block),
		District:     norm(district),
	}
}
