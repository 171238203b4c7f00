package scheme

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, beneficiary_id, pregnancy_id, hospital_id, scheme_type, status,
	amount_eligible, amount_received, reference, created_at`

func scan(row pgx.Row) (*Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.BeneficiaryID, &a.PregnancyID, &a.HospitalID, &a.SchemeType,
		&a.Status, &a.AmountEligible, &a.AmountReceived, &a.Reference, &a.CreatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Application) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO scheme_applications (id, beneficiary_id, pregnancy_id, hospital_id,
			scheme_type, status, amount_eligible, amount_received, reference)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.BeneficiaryID, a.PregnancyID, a.HospitalID,
		a.SchemeType, a.Status, a.AmountEligible, a.AmountReceived, a.Reference)
	return err
}

func (r *repoPG) ListByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID) ([]*Application, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM scheme_applications WHERE beneficiary_id = $1 ORDER BY created_at`,
		beneficiaryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Application
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
