package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockUserRepo struct {
	byContact map[string]*User
	byID      map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byContact: make(map[string]*User),
		byID:      make(map[uuid.UUID]*User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	m.byContact[u.PhoneOrEmail] = u
	m.byID[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	return m.byID[id], nil
}

func (m *mockUserRepo) GetByPhoneOrEmail(_ context.Context, key string) (*User, error) {
	return m.byContact[key], nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockUserRepo(), zerolog.Nop())

	if err := svc.Create(context.Background(), &User{PhoneOrEmail: "x"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Create(context.Background(), &User{Name: "x"}); err == nil {
		t.Error("expected error for missing contact")
	}
	if err := svc.Create(context.Background(), &User{Name: "x", PhoneOrEmail: "y", Role: "WIZARD"}); err == nil {
		t.Error("expected error for invalid role")
	}

	u := &User{Name: "Asha", PhoneOrEmail: "9990001234"}
	if err := svc.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Role != RoleBeneficiary {
		t.Errorf("expected default role BENEFICIARY, got %s", u.Role)
	}
}

func TestResolveByContact(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo, zerolog.Nop())

	first, err := svc.ResolveByContact(context.Background(), "Asha", "9990001234")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := svc.ResolveByContact(context.Background(), "Asha D", "9990001234")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if first.ID != second.ID {
		t.Error("same contact must resolve to the same account")
	}
	if len(repo.byContact) != 1 {
		t.Errorf("expected 1 user, got %d", len(repo.byContact))
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"9990001234.0":   "9990001234",
		" 999-000 1234 ": "9990001234",
		"+919990001234":  "+919990001234",
		"":               "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}
