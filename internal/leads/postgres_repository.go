package leads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const leadColumns = `id, first_name, last_name, email, phone, company, city, state,
		source, status, score, lead_value, last_activity_at, is_qualified,
		created_at, updated_at`

// DB is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Count returns the number of leads matching the filter.
func (r *PostgresRepository) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := buildWhere(filter)
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("leads: count failed: %w", err)
	}
	return total, nil
}

// Find returns matching leads sorted by created_at descending.
func (r *PostgresRepository) Find(ctx context.Context, filter Filter, skip, limit int) ([]*Lead, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + leadColumns + ` FROM leads` + where +
		` ORDER BY created_at DESC, id DESC` +
		` LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, skip)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetByID fetches a single lead. An id that is not a UUID cannot match
// any row, so it reports not-found rather than a database error.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrLeadNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	return l, err
}

// Create validates the request and inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// created_at/updated_at come back from the database defaults.
	lead := req.newLead(uuid.NewString(), time.Time{})
	query := `
		INSERT INTO leads (id, first_name, last_name, email, phone, company, city, state,
			source, status, score, lead_value, last_activity_at, is_qualified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone,
		lead.Company, lead.City, lead.State, lead.Source, lead.Status,
		lead.Score, lead.LeadValue, lead.LastActivityAt, lead.IsQualified,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return lead, nil
}

// UpdateByID reads the current row, applies the whitelisted fields with
// create-equivalent validation, and writes it back with a fresh
// updated_at.
func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, req *UpdateLeadRequest) (*Lead, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.apply(current); err != nil {
		return nil, err
	}

	query := `
		UPDATE leads
		SET first_name = $2, last_name = $3, email = $4, phone = $5, company = $6,
			city = $7, state = $8, source = $9, status = $10, score = $11,
			lead_value = $12, last_activity_at = $13, is_qualified = $14,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = r.db.QueryRow(ctx, query,
		current.ID, current.FirstName, current.LastName, current.Email,
		current.Phone, current.Company, current.City, current.State,
		current.Source, current.Status, current.Score, current.LeadValue,
		current.LastActivityAt, current.IsQualified,
	).Scan(&current.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("leads: update failed: %w", err)
	}
	return current, nil
}

// DeleteByID permanently removes a lead.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrLeadNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("leads: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone,
		&l.Company, &l.City, &l.State, &l.Source, &l.Status,
		&l.Score, &l.LeadValue, &l.LastActivityAt, &l.IsQualified,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// buildWhere renders the filter to a parameterized WHERE clause. Fields
// are walked in the fixed dispatch order so the SQL is deterministic for
// a given filter.
func buildWhere(filter Filter) (string, []any) {
	var conds []string
	var args []any

	next := func(arg any) string {
		args = append(args, arg)
		return "$" + strconv.Itoa(len(args))
	}

	for _, field := range filterFields {
		cond, ok := filter[field]
		if !ok {
			continue
		}
		switch c := cond.(type) {
		case Equals:
			conds = append(conds, field+" = "+next(c.Value))
		case Contains:
			conds = append(conds, field+" ILIKE "+next("%"+escapeLike(c.Value)+"%"))
		case In:
			conds = append(conds, field+" = ANY("+next(c.Values)+")")
		case EqualsNumber:
			conds = append(conds, field+" = "+next(c.Value))
		case NumberRange:
			if c.GT != nil {
				conds = append(conds, field+" > "+next(*c.GT))
			}
			if c.GTE != nil {
				conds = append(conds, field+" >= "+next(*c.GTE))
			}
			if c.LT != nil {
				conds = append(conds, field+" < "+next(*c.LT))
			}
			if c.LTE != nil {
				conds = append(conds, field+" <= "+next(*c.LTE))
			}
		case TimeRange:
			if c.GT != nil {
				conds = append(conds, field+" > "+next(*c.GT))
			}
			if c.GTE != nil {
				conds = append(conds, field+" >= "+next(*c.GTE))
			}
			if c.LT != nil {
				conds = append(conds, field+" < "+next(*c.LT))
			}
			if c.LTE != nil {
				conds = append(conds, field+" <= "+next(*c.LTE))
			}
		case EqualsBool:
			conds = append(conds, field+" = "+next(c.Value))
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike neutralizes LIKE metacharacters in user-supplied substrings.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
