package scheme

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	apps []*Application
}

func (m *mockRepo) Create(_ context.Context, a *Application) error {
	a.ID = uuid.New()
	m.apps = append(m.apps, a)
	return nil
}

func (m *mockRepo) ListByBeneficiary(_ context.Context, beneficiaryID uuid.UUID) ([]*Application, error) {
	var out []*Application
	for _, a := range m.apps {
		if a.BeneficiaryID == beneficiaryID {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestNewJSYStatus(t *testing.T) {
	bid := uuid.New()
	pregID := uuid.New()
	hospID := uuid.New()

	paid := NewJSY(bid, &pregID, &hospID, 1400)
	if paid.Status != StatusApproved {
		t.Errorf("disbursed JSY should be APPROVED, got %s", paid.Status)
	}
	if paid.AmountReceived != 1400 {
		t.Errorf("expected received 1400, got %v", paid.AmountReceived)
	}
	if paid.PregnancyID == nil || *paid.PregnancyID != pregID {
		t.Error("expected the pregnancy carried on the application")
	}
	if paid.HospitalID == nil || *paid.HospitalID != hospID {
		t.Error("expected the facility carried on the application")
	}

	pending := NewJSY(bid, nil, nil, 0)
	if pending.Status != StatusSubmitted {
		t.Errorf("undisbursed JSY should be SUBMITTED, got %s", pending.Status)
	}
	if pending.AmountEligible != JSYAmount {
		t.Errorf("expected eligible %v, got %v", float64(JSYAmount), pending.AmountEligible)
	}
}

func TestNewPMJAYDefaults(t *testing.T) {
	pregID := uuid.New()

	a := NewPMJAY(uuid.New(), &pregID, nil, "PMJAY-123", "")
	if a.Status != StatusSubmitted {
		t.Errorf("empty status should default to SUBMITTED, got %s", a.Status)
	}
	if a.Reference == nil || *a.Reference != "PMJAY-123" {
		t.Error("expected the card ID carried as reference")
	}
	if a.PregnancyID == nil || *a.PregnancyID != pregID {
		t.Error("expected the pregnancy carried on the application")
	}

	approved := NewPMJAY(uuid.New(), nil, nil, "PMJAY-456", StatusApproved)
	if approved.Status != StatusApproved {
		t.Errorf("explicit status must be kept, got %s", approved.Status)
	}

	// Pre-auth can be required before the family is enrolled for a card.
	unenrolled := NewPMJAY(uuid.New(), &pregID, nil, "", "")
	if unenrolled.Reference != nil {
		t.Error("no card means no reference")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&mockRepo{}, zerolog.Nop())
	ctx := context.Background()

	if err := svc.Create(ctx, &Application{SchemeType: TypeJSY, Status: StatusDraft}); err == nil {
		t.Error("expected error for missing beneficiary")
	}
	if err := svc.Create(ctx, &Application{BeneficiaryID: uuid.New(), SchemeType: "NSAP", Status: StatusDraft}); err == nil {
		t.Error("expected error for unknown scheme type")
	}
	if err := svc.Create(ctx, &Application{BeneficiaryID: uuid.New(), SchemeType: TypeJSY, Status: "PENDING"}); err == nil {
		t.Error("expected error for invalid status")
	}
	if err := svc.Create(ctx, NewJSY(uuid.New(), nil, nil, 0)); err != nil {
		t.Errorf("create: %v", err)
	}
}
