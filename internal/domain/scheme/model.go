// Package scheme records benefit-scheme applications linked to a pregnancy
// episode, currently JSY cash assistance and PMJAY insurance coverage.
package scheme

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeJSY   = "JSY"
	TypePMJAY = "PMJAY"
)

const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
)

// Standard entitlement amounts in rupees.
const (
	JSYAmount   = 1400
	PMJAYAmount = 500000
)

// Application maps to the scheme_applications table.
type Application struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	BeneficiaryID  uuid.UUID  `db:"beneficiary_id" json:"beneficiary_id"`
	PregnancyID    *uuid.UUID `db:"pregnancy_id" json:"pregnancy_id,omitempty"`
	HospitalID     *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	SchemeType     string     `db:"scheme_type" json:"scheme_type"`
	Status         string     `db:"status" json:"status"`
	AmountEligible float64    `db:"amount_eligible" json:"amount_eligible"`
	AmountReceived float64    `db:"amount_received" json:"amount_received"`
	Reference      *string    `db:"reference" json:"reference,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// NewJSY builds a JSY application from the cash already disbursed. A
// non-zero disbursement means the application was approved upstream.
func NewJSY(beneficiaryID uuid.UUID, pregnancyID, hospitalID *uuid.UUID, cashReceived float64) *Application {
	status := StatusSubmitted
	if cashReceived > 0 {
		status = StatusApproved
	}
	return &Application{
		BeneficiaryID:  beneficiaryID,
		PregnancyID:    pregnancyID,
		HospitalID:     hospitalID,
		SchemeType:     TypeJSY,
		Status:         status,
		AmountEligible: JSYAmount,
		AmountReceived: cashReceived,
	}
}

// NewPMJAY builds a pre-authorization request against the pregnancy episode,
// carrying the family card ID as reference when the beneficiary is enrolled.
// An empty status defaults to SUBMITTED.
func NewPMJAY(beneficiaryID uuid.UUID, pregnancyID, hospitalID *uuid.UUID, pmjayID string, status string) *Application {
	if status == "" {
		status = StatusSubmitted
	}
	var ref *string
	if pmjayID != "" {
		ref = &pmjayID
	}
	return &Application{
		BeneficiaryID:  beneficiaryID,
		PregnancyID:    pregnancyID,
		HospitalID:     hospitalID,
		SchemeType:     TypePMJAY,
		Status:         status,
		AmountEligible: PMJAYAmount,
		Reference:      ref,
	}
}
