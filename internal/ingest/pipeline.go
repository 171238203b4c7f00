package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/maatrinet/maatrinet/internal/domain/beneficiary"
	"github.com/maatrinet/maatrinet/internal/domain/facility"
	"github.com/maatrinet/maatrinet/internal/domain/identity"
	"github.com/maatrinet/maatrinet/internal/domain/maternity"
	"github.com/maatrinet/maatrinet/internal/domain/scheme"
	"github.com/maatrinet/maatrinet/internal/immunization"
	"github.com/maatrinet/maatrinet/internal/platform/db"
)

// TxBeginner is satisfied by pgxpool.Pool. A nil beginner disables
// transactional batching, which the in-memory tests rely on.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Result summarizes one ingestion run.
type Result struct {
	RowsRead     int
	RowsFailed   int
	Pregnancies  int
	Deliveries   int
	Children     int
	Applications int
}

// Pipeline turns source rows into the full entity graph. Each row is
// independent; a bad row is logged and skipped, never aborting the run.
type Pipeline struct {
	users         *identity.Service
	facilities    *facility.Service
	beneficiaries *beneficiary.Service
	maternity     *maternity.Service
	schemes       *scheme.Service
	beginner      TxBeginner
	batchSize     int
	now           func() time.Time
	log           zerolog.Logger
}

func NewPipeline(users *identity.Service, facilities *facility.Service,
	beneficiaries *beneficiary.Service, mat *maternity.Service, schemes *scheme.Service,
	beginner TxBeginner, batchSize int, log zerolog.Logger) *Pipeline {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Pipeline{
		users:         users,
		facilities:    facilities,
		beneficiaries: beneficiaries,
		maternity:     mat,
		schemes:       schemes,
		beginner:      beginner,
		batchSize:     batchSize,
		now:           time.Now,
		log:           log,
	}
}

// Run drains the source. Rows are committed in batches; within a batch each
// row either lands fully or is skipped after its first error.
func (p *Pipeline) Run(ctx context.Context, src *Source) (Result, error) {
	var res Result
	for {
		batch, err := p.readBatch(src, &res)
		if len(batch) > 0 {
			if err := p.runBatch(ctx, batch, &res); err != nil {
				return res, err
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
	}
	p.log.Info().Int("rows", res.RowsRead).Int("failed", res.RowsFailed).
		Int("pregnancies", res.Pregnancies).Int("deliveries", res.Deliveries).
		Int("children", res.Children).Int("applications", res.Applications).
		Msg("ingestion finished")
	return res, nil
}

// readBatch collects up to batchSize parseable rows. Malformed records are
// counted as failures and skipped here, before any writes happen.
func (p *Pipeline) readBatch(src *Source, res *Result) ([]*Row, error) {
	var batch []*Row
	for len(batch) < p.batchSize {
		row, err := src.Next()
		if err == io.EOF {
			return batch, io.EOF
		}
		if err != nil {
			res.RowsRead++
			res.RowsFailed++
			p.log.Error().Err(err).Msg("skipping malformed source record")
			continue
		}
		res.RowsRead++
		batch = append(batch, row)
	}
	return batch, nil
}

func (p *Pipeline) runBatch(ctx context.Context, batch []*Row, res *Result) error {
	if p.beginner == nil {
		p.processRows(ctx, batch, res)
		return nil
	}

	tx, err := p.beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ingest batch: %w", err)
	}
	txCtx := db.WithTx(ctx, tx)
	p.processRows(txCtx, batch, res)
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ingest batch: %w", err)
	}
	return nil
}

func (p *Pipeline) processRows(ctx context.Context, batch []*Row, res *Result) {
	for _, row := range batch {
		if err := p.processRow(ctx, row, res); err != nil {
			res.RowsFailed++
			p.log.Error().Err(err).Int("row", row.Index).Msg("row ingestion failed")
		}
	}
}

// processRow materializes one source record: facility, account, beneficiary,
// pregnancy with its risk state, then delivery, child and scheme applications
// when the row carries them.
func (p *Pipeline) processRow(ctx context.Context, row *Row, res *Result) error {
	name := row.Get("mother_name")
	phone := identity.NormalizePhone(row.Get("phone"))

	// The facility is resolved first for every row; the pregnancy and any
	// scheme applications reference it even when no delivery happened there.
	hosp, err := p.facilities.Resolve(ctx,
		row.Get("facility_type"), row.Get("block"), row.Get("district"), row.Get("state"))
	if err != nil {
		return fmt.Errorf("resolve facility: %w", err)
	}

	var user *identity.User
	if phone != "" {
		user, err = p.users.ResolveByContact(ctx, name, phone)
		if err != nil {
			return fmt.Errorf("resolve account: %w", err)
		}
	}

	ben := &beneficiary.Beneficiary{
		Name:          name,
		Age:           row.Int("mother_age", 0),
		Phone:         phone,
		RCHID:         optional(row.Get("rch_id")),
		Village:       row.Get("village"),
		Block:         row.Get("block"),
		District:      row.Get("district"),
		State:         row.Get("state"),
		Education:     row.Get("education"),
		BPLCard:       row.Bool("bpl_card"),
		PMJAYID:       optional(row.Get("pmjay_id")),
		AadhaarLinked: row.Bool("aadhaar_linked"),
	}
	if user != nil {
		ben.LinkedUserID = &user.ID
	}
	if err := p.beneficiaries.Create(ctx, ben); err != nil {
		return err
	}

	preg := &maternity.Pregnancy{
		BeneficiaryID:      ben.ID,
		HospitalID:         &hosp.ID,
		MotherAge:          ben.Age,
		LMPDate:            parseDate(row.Get("lmp_date")),
		EDDDate:            parseDate(row.Get("edd_date")),
		Gravida:            row.Int("gravida", 1),
		Para:               row.Int("para", 0),
		ANCVisitsCompleted: row.Int("anc_visits_completed", 0),
		ANCExpected:        row.Int("anc_expected", 0),
		Anemia:             row.Bool("anemia"),
		HighBP:             row.Bool("high_bp"),
		Diabetes:           row.Bool("diabetes"),
		HIVPositive:        row.Bool("hiv_positive"),
		DangerSigns:        row.Bool("danger_signs"),
		PreviousCSection:   row.Bool("previous_csection"),
		MultiplePregnancy:  row.Bool("multiple_pregnancy"),
		BloodGroup:         row.Get("blood_group"),
		RhNegative:         row.Bool("rh_negative"),
		HeightCM:           row.Float("height_cm", 0),
		WeightKG:           row.Float("weight_kg", 0),
		BMI:                row.Float("bmi", 0),
		HbLevel:            row.Float("hb_level", 0),
		BPSystolic:         row.Int("bp_systolic", 0),
		BPDiastolic:        row.Int("bp_diastolic", 0),
		Thyroid:            row.Bool("thyroid"),
		SyphilisPositive:   row.Bool("syphilis_positive"),
		TTDoses:            row.Int("tt_doses", 0),
		IFATablets:         row.Int("ifa_tablets", 0),
		IFAAdequate:        row.Bool("ifa_adequate"),
		USGDone:            row.Bool("usg_done"),
		HighRiskConditions: highRiskConditions(row),
	}
	if err := p.maternity.CreatePregnancy(ctx, preg); err != nil {
		return err
	}
	res.Pregnancies++

	if row.Bool("delivery_done") {
		if err := p.processDelivery(ctx, row, ben, preg, hosp, res); err != nil {
			return err
		}
	}

	if row.Bool("jsy_registered") {
		app := scheme.NewJSY(ben.ID, &preg.ID, &hosp.ID, row.Float("jsy_cash_received", 0))
		if err := p.schemes.Create(ctx, app); err != nil {
			return err
		}
		res.Applications++
	}
	if row.Bool("pmjay_preauth_required") {
		pmjayID := ""
		if ben.PMJAYID != nil {
			pmjayID = *ben.PMJAYID
		}
		app := scheme.NewPMJAY(ben.ID, &preg.ID, &hosp.ID, pmjayID, normalizeStatus(row.Get("pmjay_status")))
		if err := p.schemes.Create(ctx, app); err != nil {
			return err
		}
		res.Applications++
	}

	return nil
}

func (p *Pipeline) processDelivery(ctx context.Context, row *Row,
	ben *beneficiary.Beneficiary, preg *maternity.Pregnancy,
	hosp *facility.Hospital, res *Result) error {

	del := &maternity.Delivery{
		PregnancyID:         preg.ID,
		BeneficiaryID:       ben.ID,
		HospitalID:          &hosp.ID,
		DeliveryDate:        parseDate(row.Get("delivery_date")),
		DeliveryType:        row.Get("delivery_type"),
		GestationalAgeWeeks: row.Int("gestational_age_weeks", 0),
		BirthweightGrams:    row.Int("birthweight_grams", 0),
		NICUAdmission:       row.Bool("nicu_admission"),
		Preterm:             row.Bool("preterm"),
		Stillbirth:          row.Bool("stillbirth"),
		PNCCheck:            row.Bool("pnc_within_48hrs"),
		MotherAge:           ben.Age,
	}
	if err := p.maternity.CreateDelivery(ctx, del); err != nil {
		return err
	}
	res.Deliveries++

	if del.Stillbirth {
		return nil
	}

	ageWeeks := immunization.ParseAgeInWeeks(row.Get("delivery_date"), p.now())
	birthDose := row.Bool("birth_dose_done")
	// The simulation key is stable per child, so re-running ingestion on the
	// same export reproduces identical immunization histories.
	rng := immunization.NewRand(fmt.Sprintf("%s:%d", ben.Phone, row.Index))
	sim := immunization.Simulate(ageWeeks, ben.BPLCard, ben.Education, birthDose, rng)

	child := &maternity.Child{
		DeliveryID:             del.ID,
		BeneficiaryID:          ben.ID,
		Name:                   row.Get("child_name"),
		Gender:                 row.Get("child_gender"),
		DateOfBirth:            del.DeliveryDate,
		BirthDoseDone:          birthDose,
		ImmunizationsCompleted: sim.Completed,
		ImmunizationsExpected:  sim.Expected,
	}
	if err := p.maternity.CreateChild(ctx, child); err != nil {
		return err
	}
	res.Children++
	return nil
}

// highRiskConditions summarizes the comorbidity flags as free text. The
// pre-birth extractor substring-matches this summary alongside the flags.
func highRiskConditions(row *Row) string {
	var conds []string
	if row.Bool("high_bp") {
		conds = append(conds, "Hypertension")
	}
	if row.Bool("anemia") {
		conds = append(conds, "Severe Anemia")
	}
	if row.Bool("diabetes") {
		conds = append(conds, "Diabetes")
	}
	return strings.Join(conds, ", ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseDate(s string) *time.Time {
	if len(s) < 10 {
		return nil
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return nil
	}
	return &t
}

func normalizeStatus(s string) string {
	switch s {
	case scheme.StatusDraft, scheme.StatusSubmitted, scheme.StatusApproved, scheme.StatusRejected:
		return s
	}
	return ""
}
