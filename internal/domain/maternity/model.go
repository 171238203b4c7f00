// Package maternity tracks pregnancy episodes, delivery outcomes and the
// children born from them, together with their derived risk state.
package maternity

import (
	"time"

	"github.com/google/uuid"
)

// Pregnancy maps to the pregnancies table. Risk fields are derived; they are
// recomputed whenever the clinical inputs change.
type Pregnancy struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	BeneficiaryID      uuid.UUID  `db:"beneficiary_id" json:"beneficiary_id"`
	HospitalID         *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	LMPDate            *time.Time `db:"lmp_date" json:"lmp_date,omitempty"`
	EDDDate            *time.Time `db:"edd_date" json:"edd_date,omitempty"`
	Gravida            int        `db:"gravida" json:"gravida"`
	Para               int        `db:"para" json:"para"`
	ANCVisitsCompleted int        `db:"anc_visits_completed" json:"anc_visits_completed"`
	ANCExpected        int        `db:"anc_expected" json:"anc_expected"`
	Anemia             bool       `db:"anemia" json:"anemia"`
	HighBP             bool       `db:"high_bp" json:"high_bp"`
	Diabetes           bool       `db:"diabetes" json:"diabetes"`
	HIVPositive        bool       `db:"hiv_positive" json:"hiv_positive"`
	DangerSigns        bool       `db:"danger_signs" json:"danger_signs"`
	PreviousCSection   bool       `db:"previous_csection" json:"previous_csection"`
	MultiplePregnancy  bool       `db:"multiple_pregnancy" json:"multiple_pregnancy"`
	BloodGroup         string     `db:"blood_group" json:"blood_group"`
	RhNegative         bool       `db:"rh_negative" json:"rh_negative"`
	HeightCM           float64    `db:"height_cm" json:"height_cm"`
	WeightKG           float64    `db:"weight_kg" json:"weight_kg"`
	BMI                float64    `db:"bmi" json:"bmi"`
	HbLevel            float64    `db:"hb_level" json:"hb_level"`
	BPSystolic         int        `db:"bp_systolic" json:"bp_systolic"`
	BPDiastolic        int        `db:"bp_diastolic" json:"bp_diastolic"`
	Thyroid            bool       `db:"thyroid" json:"thyroid"`
	SyphilisPositive   bool       `db:"syphilis_positive" json:"syphilis_positive"`
	TTDoses            int        `db:"tt_doses" json:"tt_doses"`
	IFATablets         int        `db:"ifa_tablets" json:"ifa_tablets"`
	IFAAdequate        bool       `db:"ifa_adequate" json:"ifa_adequate"`
	USGDone            bool       `db:"usg_done" json:"usg_done"`
	HighRiskConditions string     `db:"high_risk_conditions" json:"high_risk_conditions"`
	RiskScore          float64    `db:"risk_score" json:"risk_score"`
	RiskLevel          string     `db:"risk_level" json:"risk_level"`
	RiskFactors        []string   `db:"risk_factors" json:"risk_factors"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`

	// MotherAge is joined from the linked beneficiary, not stored on the row.
	MotherAge int `db:"-" json:"-"`
}

// Feature exposes the pregnancy to the risk extractor.
func (p *Pregnancy) Feature(name string) (interface{}, bool) {
	switch name {
	case "beneficiary_age":
		if p.MotherAge > 0 {
			return p.MotherAge, true
		}
		return nil, false
	case "gravida":
		return p.Gravida, true
	case "para":
		return p.Para, true
	case "anc_visits_completed":
		return p.ANCVisitsCompleted, true
	case "anc_expected":
		return p.ANCExpected, true
	case "anemia":
		return p.Anemia, true
	case "high_bp":
		return p.HighBP, true
	case "diabetes":
		return p.Diabetes, true
	case "hiv_positive":
		return p.HIVPositive, true
	case "danger_signs":
		return p.DangerSigns, true
	case "previous_csection":
		return p.PreviousCSection, true
	case "multiple_pregnancy":
		return p.MultiplePregnancy, true
	case "bmi":
		return p.BMI, true
	case "high_risk_conditions":
		return p.HighRiskConditions, true
	}
	return nil, false
}

// Delivery maps to the deliveries table.
type Delivery struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	PregnancyID         uuid.UUID  `db:"pregnancy_id" json:"pregnancy_id"`
	BeneficiaryID       uuid.UUID  `db:"beneficiary_id" json:"beneficiary_id"`
	HospitalID          *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	DeliveryDate        *time.Time `db:"delivery_date" json:"delivery_date,omitempty"`
	DeliveryType        string     `db:"delivery_type" json:"delivery_type"`
	GestationalAgeWeeks int        `db:"gestational_age_weeks" json:"gestational_age_weeks"`
	BirthweightGrams    int        `db:"birthweight_grams" json:"birthweight_grams"`
	NICUAdmission       bool       `db:"nicu_admission" json:"nicu_admission"`
	Preterm             bool       `db:"preterm" json:"preterm"`
	Stillbirth          bool       `db:"stillbirth" json:"stillbirth"`
	PNCCheck            bool       `db:"pnc_check" json:"pnc_check"`
	Complications       string     `db:"complications" json:"complications"`
	RiskScore           float64    `db:"risk_score" json:"risk_score"`
	RiskLevel           string     `db:"risk_level" json:"risk_level"`
	RiskFactors         []string   `db:"risk_factors" json:"risk_factors"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`

	MotherAge int `db:"-" json:"-"`
}

// Feature exposes the delivery to the risk extractor.
func (d *Delivery) Feature(name string) (interface{}, bool) {
	switch name {
	case "beneficiary_age":
		if d.MotherAge > 0 {
			return d.MotherAge, true
		}
		return nil, false
	case "delivery_type":
		return d.DeliveryType, true
	case "gestational_age_weeks":
		// Unrecorded vitals are stored as zero; report them absent so the
		// extractor substitutes its defaults instead of treating a missing
		// measurement as a critical one.
		if d.GestationalAgeWeeks > 0 {
			return d.GestationalAgeWeeks, true
		}
		return nil, false
	case "birthweight_grams":
		if d.BirthweightGrams > 0 {
			return d.BirthweightGrams, true
		}
		return nil, false
	case "nicu_admission":
		return d.NICUAdmission, true
	case "preterm":
		return d.Preterm, true
	case "stillbirth":
		return d.Stillbirth, true
	}
	return nil, false
}

// Child maps to the children table. The immunization counts are produced by
// the schedule simulation at ingest time and re-checked on recompute.
type Child struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	DeliveryID             uuid.UUID  `db:"delivery_id" json:"delivery_id"`
	BeneficiaryID          uuid.UUID  `db:"beneficiary_id" json:"beneficiary_id"`
	Name                   string     `db:"name" json:"name"`
	Gender                 string     `db:"gender" json:"gender"`
	DateOfBirth            *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	BirthDoseDone          bool       `db:"birth_dose_done" json:"birth_dose_done"`
	ImmunizationsCompleted int        `db:"immunizations_completed" json:"immunizations_completed"`
	ImmunizationsExpected  int        `db:"immunizations_expected" json:"immunizations_expected"`
	OfftrackFlag           bool       `db:"offtrack_flag" json:"offtrack_flag"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
}

// Feature exposes the child to the off-track detector.
func (c *Child) Feature(name string) (interface{}, bool) {
	switch name {
	case "immunizations_completed":
		return c.ImmunizationsCompleted, true
	case "immunizations_expected":
		return c.ImmunizationsExpected, true
	}
	return nil, false
}
