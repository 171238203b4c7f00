package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Roles a user account can hold.
const (
	RoleAdmin       = "ADMIN"
	RoleAuthorizer  = "AUTHORIZER"
	RoleHospital    = "HOSPITAL"
	RoleBeneficiary = "BENEFICIARY"
)

// User maps to the users table. Beneficiary accounts are keyed by phone
// number; staff accounts by email.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	PhoneOrEmail string     `db:"phone_or_email" json:"phone_or_email"`
	Role         string     `db:"role" json:"role"`
	PasswordHash string     `db:"password_hash" json:"-"`
	HospitalID   *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	State        *string    `db:"state" json:"state,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// NormalizePhone canonicalizes a raw phone value from the source table.
// Spreadsheet exports render numbers as floats ("9990001234.0"), and field
// entry adds spaces and dashes.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
