// Package beneficiary holds the registered mothers the programme tracks.
package beneficiary

import (
	"time"

	"github.com/google/uuid"
)

// Beneficiary maps to the beneficiaries table. One record per pregnancy
// episode in the source table; LinkedUserID ties episodes of the same woman
// together through her phone-keyed account.
type Beneficiary struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Age           int        `db:"age" json:"age"`
	Phone         string     `db:"phone" json:"phone"`
	RCHID         *string    `db:"rch_id" json:"rch_id,omitempty"`
	Village       string     `db:"village" json:"village"`
	Block         string     `db:"block" json:"block"`
	District      string     `db:"district" json:"district"`
	State         string     `db:"state" json:"state"`
	Education     string     `db:"education" json:"education"`
	BPLCard       bool       `db:"bpl_card" json:"bpl_card"`
	PMJAYID       *string    `db:"pmjay_id" json:"pmjay_id,omitempty"`
	AadhaarLinked bool       `db:"aadhaar_linked" json:"aadhaar_linked"`
	LinkedUserID  *uuid.UUID `db:"linked_user_id" json:"linked_user_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
