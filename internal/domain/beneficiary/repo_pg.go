package beneficiary

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

const cols = `id, name, age, phone, rch_id, village, block, district, state,
	education, bpl_card, pmjay_id, aadhaar_linked, linked_user_id, created_at`

func scan(row pgx.Row) (*Beneficiary, error) {
	var b Beneficiary
	err := row.Scan(&b.ID, &b.Name, &b.Age, &b.Phone, &b.RCHID, &b.Village,
		&b.Block, &b.District, &b.State, &b.Education, &b.BPLCard,
		&b.PMJAYID, &b.AadhaarLinked, &b.LinkedUserID, &b.CreatedAt)
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *Beneficiary) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO beneficiaries (id, name, age, phone, rch_id, village, block,
			district, state, education, bpl_card, pmjay_id, aadhaar_linked, linked_user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		b.ID, b.Name, b.Age, b.Phone, b.RCHID, b.Village, b.Block,
		b.District, b.State, b.Education, b.BPLCard, b.PMJAYID, b.AadhaarLinked, b.LinkedUserID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Beneficiary, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM beneficiaries WHERE id = $1`, id))
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Beneficiary, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM beneficiaries WHERE linked_user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Beneficiary
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
