package maternity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maatrinet/maatrinet/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// --- pregnancies ---

type pregnancyRepoPG struct{ pool *pgxpool.Pool }

func NewPregnancyRepoPG(pool *pgxpool.Pool) PregnancyRepository {
	return &pregnancyRepoPG{pool: pool}
}

// mother_age is joined from the beneficiary so the extractor sees the real
// maternal age instead of its default.
const pregnancyCols = `p.id, p.beneficiary_id, p.hospital_id, p.lmp_date, p.edd_date, p.gravida, p.para,
	p.anc_visits_completed, p.anc_expected, p.anemia, p.high_bp, p.diabetes,
	p.hiv_positive, p.danger_signs, p.previous_csection, p.multiple_pregnancy,
	p.blood_group, p.rh_negative, p.height_cm, p.weight_kg, p.bmi, p.hb_level,
	p.bp_systolic, p.bp_diastolic, p.thyroid, p.syphilis_positive, p.tt_doses,
	p.ifa_tablets, p.ifa_adequate, p.usg_done, p.high_risk_conditions,
	p.risk_score, p.risk_level, p.risk_factors, p.created_at, COALESCE(b.age, 0)`

func scanPregnancy(row pgx.Row) (*Pregnancy, error) {
	var p Pregnancy
	err := row.Scan(&p.ID, &p.BeneficiaryID, &p.HospitalID, &p.LMPDate, &p.EDDDate, &p.Gravida, &p.Para,
		&p.ANCVisitsCompleted, &p.ANCExpected, &p.Anemia, &p.HighBP, &p.Diabetes,
		&p.HIVPositive, &p.DangerSigns, &p.PreviousCSection, &p.MultiplePregnancy,
		&p.BloodGroup, &p.RhNegative, &p.HeightCM, &p.WeightKG, &p.BMI, &p.HbLevel,
		&p.BPSystolic, &p.BPDiastolic, &p.Thyroid, &p.SyphilisPositive, &p.TTDoses,
		&p.IFATablets, &p.IFAAdequate, &p.USGDone, &p.HighRiskConditions,
		&p.RiskScore, &p.RiskLevel, &p.RiskFactors, &p.CreatedAt, &p.MotherAge)
	return &p, err
}

func (r *pregnancyRepoPG) Create(ctx context.Context, p *Pregnancy) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO pregnancies (id, beneficiary_id, hospital_id, lmp_date, edd_date, gravida, para,
			anc_visits_completed, anc_expected, anemia, high_bp, diabetes, hiv_positive,
			danger_signs, previous_csection, multiple_pregnancy, blood_group, rh_negative,
			height_cm, weight_kg, bmi, hb_level, bp_systolic, bp_diastolic, thyroid,
			syphilis_positive, tt_doses, ifa_tablets, ifa_adequate, usg_done,
			high_risk_conditions, risk_score, risk_level, risk_factors)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34)`,
		p.ID, p.BeneficiaryID, p.HospitalID, p.LMPDate, p.EDDDate, p.Gravida, p.Para,
		p.ANCVisitsCompleted, p.ANCExpected, p.Anemia, p.HighBP, p.Diabetes, p.HIVPositive,
		p.DangerSigns, p.PreviousCSection, p.MultiplePregnancy, p.BloodGroup, p.RhNegative,
		p.HeightCM, p.WeightKG, p.BMI, p.HbLevel, p.BPSystolic, p.BPDiastolic, p.Thyroid,
		p.SyphilisPositive, p.TTDoses, p.IFATablets, p.IFAAdequate, p.USGDone,
		p.HighRiskConditions, p.RiskScore, p.RiskLevel, p.RiskFactors)
	return err
}

func (r *pregnancyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pregnancy, error) {
	return scanPregnancy(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+pregnancyCols+` FROM pregnancies p
		LEFT JOIN beneficiaries b ON b.id = p.beneficiary_id
		WHERE p.id = $1`, id))
}

func (r *pregnancyRepoPG) Update(ctx context.Context, p *Pregnancy) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE pregnancies SET hospital_id=$2, lmp_date=$3, edd_date=$4, gravida=$5, para=$6,
			anc_visits_completed=$7, anc_expected=$8, anemia=$9, high_bp=$10, diabetes=$11,
			hiv_positive=$12, danger_signs=$13, previous_csection=$14, multiple_pregnancy=$15,
			blood_group=$16, rh_negative=$17, height_cm=$18, weight_kg=$19, bmi=$20,
			hb_level=$21, bp_systolic=$22, bp_diastolic=$23, thyroid=$24,
			syphilis_positive=$25, tt_doses=$26, ifa_tablets=$27, ifa_adequate=$28,
			usg_done=$29, high_risk_conditions=$30, risk_score=$31, risk_level=$32,
			risk_factors=$33
		WHERE id=$1`,
		p.ID, p.HospitalID, p.LMPDate, p.EDDDate, p.Gravida, p.Para,
		p.ANCVisitsCompleted, p.ANCExpected, p.Anemia, p.HighBP, p.Diabetes,
		p.HIVPositive, p.DangerSigns, p.PreviousCSection, p.MultiplePregnancy,
		p.BloodGroup, p.RhNegative, p.HeightCM, p.WeightKG, p.BMI,
		p.HbLevel, p.BPSystolic, p.BPDiastolic, p.Thyroid,
		p.SyphilisPositive, p.TTDoses, p.IFATablets, p.IFAAdequate,
		p.USGDone, p.HighRiskConditions, p.RiskScore, p.RiskLevel,
		p.RiskFactors)
	return err
}

func (r *pregnancyRepoPG) UpdateRisk(ctx context.Context, id uuid.UUID, score float64, level string, factors []string) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE pregnancies SET risk_score=$2, risk_level=$3, risk_factors=$4 WHERE id=$1`,
		id, score, level, factors)
	return err
}

func (r *pregnancyRepoPG) ListAll(ctx context.Context) ([]*Pregnancy, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+pregnancyCols+` FROM pregnancies p
		LEFT JOIN beneficiaries b ON b.id = p.beneficiary_id
		ORDER BY p.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Pregnancy
	for rows.Next() {
		p, err := scanPregnancy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- deliveries ---

type deliveryRepoPG struct{ pool *pgxpool.Pool }

func NewDeliveryRepoPG(pool *pgxpool.Pool) DeliveryRepository {
	return &deliveryRepoPG{pool: pool}
}

const deliveryCols = `d.id, d.pregnancy_id, d.beneficiary_id, d.hospital_id, d.delivery_date,
	d.delivery_type, d.gestational_age_weeks, d.birthweight_grams, d.nicu_admission,
	d.preterm, d.stillbirth, d.pnc_check, d.complications, d.risk_score, d.risk_level,
	d.risk_factors, d.created_at, COALESCE(b.age, 0)`

func scanDelivery(row pgx.Row) (*Delivery, error) {
	var d Delivery
	err := row.Scan(&d.ID, &d.PregnancyID, &d.BeneficiaryID, &d.HospitalID, &d.DeliveryDate,
		&d.DeliveryType, &d.GestationalAgeWeeks, &d.BirthweightGrams, &d.NICUAdmission,
		&d.Preterm, &d.Stillbirth, &d.PNCCheck, &d.Complications, &d.RiskScore, &d.RiskLevel,
		&d.RiskFactors, &d.CreatedAt, &d.MotherAge)
	return &d, err
}

func (r *deliveryRepoPG) Create(ctx context.Context, d *Delivery) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO deliveries (id, pregnancy_id, beneficiary_id, hospital_id, delivery_date,
			delivery_type, gestational_age_weeks, birthweight_grams, nicu_admission,
			preterm, stillbirth, pnc_check, complications, risk_score, risk_level, risk_factors)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		d.ID, d.PregnancyID, d.BeneficiaryID, d.HospitalID, d.DeliveryDate,
		d.DeliveryType, d.GestationalAgeWeeks, d.BirthweightGrams, d.NICUAdmission,
		d.Preterm, d.Stillbirth, d.PNCCheck, d.Complications, d.RiskScore, d.RiskLevel,
		d.RiskFactors)
	return err
}

func (r *deliveryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	return scanDelivery(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+deliveryCols+` FROM deliveries d
		LEFT JOIN beneficiaries b ON b.id = d.beneficiary_id
		WHERE d.id = $1`, id))
}

func (r *deliveryRepoPG) UpdateRisk(ctx context.Context, id uuid.UUID, score float64, level string, factors []string) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE deliveries SET risk_score=$2, risk_level=$3, risk_factors=$4 WHERE id=$1`,
		id, score, level, factors)
	return err
}

func (r *deliveryRepoPG) ListAll(ctx context.Context) ([]*Delivery, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+deliveryCols+` FROM deliveries d
		LEFT JOIN beneficiaries b ON b.id = d.beneficiary_id
		ORDER BY d.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// --- children ---

type childRepoPG struct{ pool *pgxpool.Pool }

func NewChildRepoPG(pool *pgxpool.Pool) ChildRepository {
	return &childRepoPG{pool: pool}
}

const childCols = `id, delivery_id, beneficiary_id, name, gender, date_of_birth,
	birth_dose_done, immunizations_completed, immunizations_expected, offtrack_flag, created_at`

func scanChild(row pgx.Row) (*Child, error) {
	var c Child
	err := row.Scan(&c.ID, &c.DeliveryID, &c.BeneficiaryID, &c.Name, &c.Gender, &c.DateOfBirth,
		&c.BirthDoseDone, &c.ImmunizationsCompleted, &c.ImmunizationsExpected, &c.OfftrackFlag,
		&c.CreatedAt)
	return &c, err
}

func (r *childRepoPG) Create(ctx context.Context, c *Child) error {
	c.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO children (id, delivery_id, beneficiary_id, name, gender, date_of_birth,
			birth_dose_done, immunizations_completed, immunizations_expected, offtrack_flag)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.DeliveryID, c.BeneficiaryID, c.Name, c.Gender, c.DateOfBirth,
		c.BirthDoseDone, c.ImmunizationsCompleted, c.ImmunizationsExpected, c.OfftrackFlag)
	return err
}

func (r *childRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Child, error) {
	return scanChild(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+childCols+` FROM children WHERE id = $1`, id))
}

func (r *childRepoPG) UpdateOfftrack(ctx context.Context, id uuid.UUID, completed, expected int, offtrack bool) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE children SET immunizations_completed=$2, immunizations_expected=$3, offtrack_flag=$4
		WHERE id=$1`, id, completed, expected, offtrack)
	return err
}

func (r *childRepoPG) ListAll(ctx context.Context) ([]*Child, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+childCols+` FROM children ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
