package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maatrinet/maatrinet/internal/domain/beneficiary"
	"github.com/maatrinet/maatrinet/internal/domain/facility"
	"github.com/maatrinet/maatrinet/internal/domain/identity"
	"github.com/maatrinet/maatrinet/internal/domain/maternity"
	"github.com/maatrinet/maatrinet/internal/domain/scheme"
	"github.com/maatrinet/maatrinet/internal/risk"
)

// In-memory repositories backing the real services, so the pipeline test
// exercises the same code paths as a database run minus the SQL.

type memUsers struct{ byContact map[string]*identity.User }

func (m *memUsers) Create(_ context.Context, u *identity.User) error {
	u.ID = uuid.New()
	m.byContact[u.PhoneOrEmail] = u
	return nil
}
func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	for _, u := range m.byContact {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}
func (m *memUsers) GetByPhoneOrEmail(_ context.Context, key string) (*identity.User, error) {
	return m.byContact[key], nil
}

type memHospitals struct {
	byKey map[facility.Key]*facility.Hospital
	order []*facility.Hospital
}

func (m *memHospitals) Create(_ context.Context, h *facility.Hospital) error {
	h.ID = uuid.New()
	m.byKey[facility.NormalizeKey(h.FacilityType, h.Block, h.District)] = h
	m.order = append(m.order, h)
	return nil
}
func (m *memHospitals) GetByID(_ context.Context, id uuid.UUID) (*facility.Hospital, error) {
	for _, h := range m.order {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, nil
}
func (m *memHospitals) GetByKey(_ context.Context, key facility.Key) (*facility.Hospital, error) {
	return m.byKey[key], nil
}
func (m *memHospitals) Count(_ context.Context) (int, error) { return len(m.order), nil }

type memBeneficiaries struct{ all []*beneficiary.Beneficiary }

func (m *memBeneficiaries) Create(_ context.Context, b *beneficiary.Beneficiary) error {
	b.ID = uuid.New()
	m.all = append(m.all, b)
	return nil
}
func (m *memBeneficiaries) GetByID(_ context.Context, id uuid.UUID) (*beneficiary.Beneficiary, error) {
	for _, b := range m.all {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}
func (m *memBeneficiaries) ListByUser(_ context.Context, userID uuid.UUID) ([]*beneficiary.Beneficiary, error) {
	var out []*beneficiary.Beneficiary
	for _, b := range m.all {
		if b.LinkedUserID != nil && *b.LinkedUserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type memPregnancies struct{ all []*maternity.Pregnancy }

func (m *memPregnancies) Create(_ context.Context, p *maternity.Pregnancy) error {
	p.ID = uuid.New()
	m.all = append(m.all, p)
	return nil
}
func (m *memPregnancies) GetByID(_ context.Context, id uuid.UUID) (*maternity.Pregnancy, error) {
	for _, p := range m.all {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}
func (m *memPregnancies) Update(_ context.Context, _ *maternity.Pregnancy) error { return nil }
func (m *memPregnancies) UpdateRisk(_ context.Context, _ uuid.UUID, _ float64, _ string, _ []string) error {
	return nil
}
func (m *memPregnancies) ListAll(_ context.Context) ([]*maternity.Pregnancy, error) {
	return m.all, nil
}

type memDeliveries struct{ all []*maternity.Delivery }

func (m *memDeliveries) Create(_ context.Context, d *maternity.Delivery) error {
	d.ID = uuid.New()
	m.all = append(m.all, d)
	return nil
}
func (m *memDeliveries) GetByID(_ context.Context, id uuid.UUID) (*maternity.Delivery, error) {
	for _, d := range m.all {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}
func (m *memDeliveries) UpdateRisk(_ context.Context, _ uuid.UUID, _ float64, _ string, _ []string) error {
	return nil
}
func (m *memDeliveries) ListAll(_ context.Context) ([]*maternity.Delivery, error) {
	return m.all, nil
}

type memChildren struct{ all []*maternity.Child }

func (m *memChildren) Create(_ context.Context, c *maternity.Child) error {
	c.ID = uuid.New()
	m.all = append(m.all, c)
	return nil
}
func (m *memChildren) GetByID(_ context.Context, id uuid.UUID) (*maternity.Child, error) {
	for _, c := range m.all {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}
func (m *memChildren) UpdateOfftrack(_ context.Context, _ uuid.UUID, _, _ int, _ bool) error {
	return nil
}
func (m *memChildren) ListAll(_ context.Context) ([]*maternity.Child, error) { return m.all, nil }

type memSchemes struct{ all []*scheme.Application }

func (m *memSchemes) Create(_ context.Context, a *scheme.Application) error {
	a.ID = uuid.New()
	m.all = append(m.all, a)
	return nil
}
func (m *memSchemes) ListByBeneficiary(_ context.Context, beneficiaryID uuid.UUID) ([]*scheme.Application, error) {
	var out []*scheme.Application
	for _, a := range m.all {
		if a.BeneficiaryID == beneficiaryID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fixture struct {
	pipeline      *Pipeline
	users         *memUsers
	hospitals     *memHospitals
	beneficiaries *memBeneficiaries
	pregnancies   *memPregnancies
	deliveries    *memDeliveries
	children      *memChildren
	schemes       *memSchemes
}

func newFixture() *fixture {
	log := zerolog.Nop()
	f := &fixture{
		users:         &memUsers{byContact: map[string]*identity.User{}},
		hospitals:     &memHospitals{byKey: map[facility.Key]*facility.Hospital{}},
		beneficiaries: &memBeneficiaries{},
		pregnancies:   &memPregnancies{},
		deliveries:    &memDeliveries{},
		children:      &memChildren{},
		schemes:       &memSchemes{},
	}
	engine := risk.NewEngine(nil, log)
	f.pipeline = NewPipeline(
		identity.NewService(f.users, log),
		facility.NewService(f.hospitals, log),
		beneficiary.NewService(f.beneficiaries, log),
		maternity.NewService(f.pregnancies, f.deliveries, f.children, engine, log),
		scheme.NewService(f.schemes, log),
		nil, 50, log,
	)
	f.pipeline.now = func() time.Time {
		return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	}
	return f
}

const header = "mother_name,mother_age,phone,village,block,district,state,education," +
	"bpl_card,pmjay_id,aadhaar_linked,gravida,para,anc_visits_completed,anemia,high_bp," +
	"diabetes,hiv_positive,danger_signs,previous_csection,multiple_pregnancy,bmi," +
	"delivery_done,delivery_date,delivery_type,facility_type," +
	"gestational_age_weeks,birthweight_grams,nicu_admission,preterm,stillbirth," +
	"child_name,child_gender,birth_dose_done,jsy_registered,jsy_cash_received,pmjay_status," +
	"lmp_date,edd_date,blood_group,rh_negative,height_cm,weight_kg,hb_level," +
	"bp_systolic,bp_diastolic,thyroid,syphilis_positive,tt_doses,ifa_tablets," +
	"ifa_adequate,usg_done,pnc_within_48hrs,pmjay_preauth_required\n"

func run(t *testing.T, f *fixture, csv string) Result {
	t.Helper()
	src, err := NewSource(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	res, err := f.pipeline.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestPipelineFullRow(t *testing.T) {
	f := newFixture()
	csv := header +
		"Asha Devi,16,9990001234,Rampur,Rajgarh,Alwar,Rajasthan,Primary," +
		"Yes,PMJAY-77,Yes,1,0,1,Yes,No,No,No,No,No,No,19.2," +
		"Yes,2026-06-23,Normal,CHC,38,2400,No,No,No," +
		"Baby of Asha,F,Yes,Yes,1400,APPROVED," +
		"2025-09-20,2026-06-27,B+,No,152.0,48.5,9.8,118,76,No,No,2,60,No,Yes,Yes,Yes\n"

	res := run(t, f, csv)
	want := Result{RowsRead: 1, Pregnancies: 1, Deliveries: 1, Children: 1, Applications: 2}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	if len(f.beneficiaries.all) != 1 {
		t.Fatalf("expected 1 beneficiary, got %d", len(f.beneficiaries.all))
	}
	ben := f.beneficiaries.all[0]
	if ben.LinkedUserID == nil {
		t.Error("beneficiary should be linked to the phone-keyed account")
	}

	preg := f.pregnancies.all[0]
	if preg.RiskLevel != "HIGH" {
		t.Errorf("teenage anemic mother with 1 ANC visit should be HIGH, got %s (%v)",
			preg.RiskLevel, preg.RiskScore)
	}
	if preg.BloodGroup != "B+" || preg.HbLevel != 9.8 || preg.TTDoses != 2 {
		t.Errorf("clinical fields not carried from the row: %+v", preg)
	}
	if preg.LMPDate == nil || preg.EDDDate == nil {
		t.Error("lmp and edd dates should parse")
	}
	if preg.HighRiskConditions != "Severe Anemia" {
		t.Errorf("conditions summary mismatch: %q", preg.HighRiskConditions)
	}
	if preg.HospitalID == nil {
		t.Error("pregnancy should reference the resolved facility")
	}

	del := f.deliveries.all[0]
	if del.RiskLevel == "" || del.RiskScore <= 0 {
		t.Error("delivery risk state not populated")
	}
	if del.HospitalID == nil {
		t.Error("delivery should reference the resolved facility")
	}
	if !del.PNCCheck {
		t.Error("pnc check flag should be carried")
	}

	child := f.children.all[0]
	if child.ImmunizationsExpected < 1 {
		t.Error("child should have at least the birth dose expected")
	}
	if child.ImmunizationsCompleted > child.ImmunizationsExpected {
		t.Error("completed doses cannot exceed expected")
	}

	var types []string
	for _, a := range f.schemes.all {
		types = append(types, a.SchemeType+":"+a.Status)
		if a.PregnancyID == nil || *a.PregnancyID != preg.ID {
			t.Errorf("%s application should link the pregnancy", a.SchemeType)
		}
		if a.HospitalID == nil {
			t.Errorf("%s application should link the facility", a.SchemeType)
		}
	}
	wantTypes := []string{"JSY:APPROVED", "PMJAY:APPROVED"}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Errorf("applications mismatch (-want +got):\n%s", diff)
	}
}

func TestPipelinePregnancyOnlyRow(t *testing.T) {
	f := newFixture()
	csv := header +
		"Rekha,28,,Rampur,Rajgarh,Alwar,Rajasthan,Graduate," +
		"No,,No,2,1,3,No,No,No,No,No,No,No,22.0," +
		"No,,,,,,,,,,,,No,0,\n"

	res := run(t, f, csv)
	want := Result{RowsRead: 1, Pregnancies: 1}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	// The facility step runs for every row, delivered or not, and the
	// pregnancy references it.
	if len(f.hospitals.order) != 1 {
		t.Fatalf("expected 1 facility for an undelivered row, got %d", len(f.hospitals.order))
	}
	if f.pregnancies.all[0].HospitalID == nil {
		t.Error("pregnancy should reference the resolved facility")
	}
	if f.beneficiaries.all[0].LinkedUserID != nil {
		t.Error("no account should be linked without a phone")
	}
}

func TestPipelineStillbirthSkipsChild(t *testing.T) {
	f := newFixture()
	csv := header +
		"Meena,30,9990005678,Rampur,Rajgarh,Alwar,Rajasthan,Secondary," +
		"No,,No,3,2,4,No,No,No,No,No,No,No,23.1," +
		"Yes,2026-05-01,LSCS,DH,36,2200,Yes,Yes,Yes," +
		",,No,No,0,\n"

	res := run(t, f, csv)
	want := Result{RowsRead: 1, Pregnancies: 1, Deliveries: 1}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if len(f.children.all) != 0 {
		t.Error("a stillbirth row must not create a child")
	}
	if f.deliveries.all[0].RiskLevel != "HIGH" {
		t.Errorf("stillbirth outcome should score HIGH, got %s", f.deliveries.all[0].RiskLevel)
	}
}

func TestPipelineDeterministicSimulation(t *testing.T) {
	csv := header +
		"Asha Devi,24,9990001234,Rampur,Rajgarh,Alwar,Rajasthan,Primary," +
		"Yes,,No,1,0,3,No,No,No,No,No,No,No,21.0," +
		"Yes,2025-09-01,Normal,PHC,39,2900,No,No,No," +
		"Baby,M,Yes,No,0,\n"

	a := newFixture()
	b := newFixture()
	run(t, a, csv)
	run(t, b, csv)

	ca, cb := a.children.all[0], b.children.all[0]
	if ca.ImmunizationsCompleted != cb.ImmunizationsCompleted ||
		ca.ImmunizationsExpected != cb.ImmunizationsExpected ||
		ca.OfftrackFlag != cb.OfftrackFlag {
		t.Errorf("re-running the same export must reproduce the simulation: %+v vs %+v", ca, cb)
	}
}

func TestPipelineRowErrorIsolated(t *testing.T) {
	f := newFixture()
	// The first row has no mother name and fails beneficiary validation; the
	// second row must still land.
	csv := header +
		",24,,Rampur,Rajgarh,Alwar,Rajasthan,Primary,No,,No,1,0,2,No,No,No,No,No,No,No,21," +
		"No,,,,,,,,,,,,No,0,\n" +
		"Rekha,28,,Rampur,Rajgarh,Alwar,Rajasthan,Graduate,No,,No,2,1,3,No,No,No,No,No,No,No,22," +
		"No,,,,,,,,,,,,No,0,\n"

	res := run(t, f, csv)
	want := Result{RowsRead: 2, RowsFailed: 1, Pregnancies: 1}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}
