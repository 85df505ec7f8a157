package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the "postgres" dialect
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/jobdex/internal/db"
	"github.com/kailas-cloud/jobdex/internal/domain"
	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
	"github.com/kailas-cloud/jobdex/internal/domain/search/filter"
	"github.com/kailas-cloud/jobdex/internal/domain/search/result"
)

// DefaultTable is the postings table name.
const DefaultTable = "jobs"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var columns = []any{
	"id", "title", "description", "job_category", "business_type", "location",
	"min_salary", "embedding", "created_at", "updated_at",
}

// Store persists job postings in PostgreSQL with pgvector embeddings.
type Store struct {
	db         *sql.DB
	dialect    goqu.DialectWrapper
	table      string
	dimensions int
	now        func() time.Time
}

// New creates a store over an open handle. dimensions sizes the vector column.
func New(conn *sql.DB, table string, dimensions int) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if dimensions <= 0 {
		dimensions = domain.DefaultDimensions
	}
	return &Store{
		db:         conn,
		dialect:    goqu.Dialect("postgres"),
		table:      table,
		dimensions: dimensions,
		now:        time.Now,
	}, nil
}

// Upsert inserts or replaces a posting. created_at survives replacement.
func (s *Store) Upsert(ctx context.Context, j domjob.Job) (domjob.Job, error) {
	if j.ID() == "" {
		return domjob.Job{}, fmt.Errorf("upsert: id is required: %w", domain.ErrInvalidJob)
	}

	a := j.Attributes()
	now := s.now().UTC()
	record := goqu.Record{
		"id":            j.ID(),
		"title":         a.Title,
		"description":   a.Description,
		"job_category":  nullString(a.JobCategory),
		"business_type": nullString(a.BusinessType),
		"location":      nullString(a.Location),
		"min_salary":    nullInt(a.MinSalary),
		"embedding":     vectorValue(j.Embedding()),
		"created_at":    now,
		"updated_at":    now,
	}

	update := goqu.Record{}
	for _, col := range []string{
		"title", "description", "job_category", "business_type", "location",
		"min_salary", "embedding", "updated_at",
	} {
		update[col] = goqu.L("EXCLUDED." + col)
	}

	query, args, err := s.dialect.Insert(s.table).Prepared(true).
		Rows(record).
		OnConflict(goqu.DoUpdate("id", update)).
		Returning("created_at", "updated_at").
		ToSQL()
	if err != nil {
		return domjob.Job{}, fmt.Errorf("build upsert: %w", err)
	}

	var created, updated time.Time
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&created, &updated); err != nil {
		return domjob.Job{}, &db.Error{Op: db.OpUpsert, Err: err}
	}

	j.SetTimestamps(created, updated)
	return j, nil
}

// Get returns a posting by id.
func (s *Store) Get(ctx context.Context, id string) (domjob.Job, error) {
	query, args, err := s.dialect.From(s.table).Prepared(true).
		Select(columns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return domjob.Job{}, fmt.Errorf("build get: %w", err)
	}

	j, err := scanJob(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domjob.Job{}, fmt.Errorf("get %q: %w", id, domain.ErrJobNotFound)
		}
		return domjob.Job{}, &db.Error{Op: db.OpSelect, Err: err}
	}
	return j, nil
}

// List returns all postings, newest first.
func (s *Store) List(ctx context.Context) ([]domjob.Job, error) {
	query, args, err := s.dialect.From(s.table).Prepared(true).
		Select(columns...).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	out := make([]domjob.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}

// ListDistinct returns distinct non-empty values of a text attribute, sorted.
func (s *Store) ListDistinct(ctx context.Context, field string) ([]string, error) {
	switch field {
	case domjob.FieldJobCategory, domjob.FieldBusinessType, domjob.FieldLocation, domjob.FieldTitle:
	default:
		return nil, fmt.Errorf("list distinct: unsupported field %q", field)
	}

	col := goqu.C(field)
	query, args, err := s.dialect.From(s.table).Prepared(true).
		SelectDistinct(col).
		Where(col.IsNotNull(), col.Neq("")).
		Order(col.Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list distinct: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}

// distanceExpr maps a missing embedding and the NaN of a zero-norm vector to distance 1.
const distanceExpr = "COALESCE(NULLIF(embedding <=> ?::vector, 'NaN'), 1)"

// FilterAndRank compiles conditions into a WHERE clause and orders the survivors
// by cosine distance. Postings without an embedding rank at distance 1.
func (s *Store) FilterAndRank(
	ctx context.Context, conds []filter.Condition, vector []float32, limit int,
) ([]result.Hit, error) {
	distance := goqu.L(distanceExpr, pgvector.NewVector(vector)).As("distance")

	sel := append(append([]any{}, columns...), distance)
	ds := s.dialect.From(s.table).Prepared(true).
		Select(sel...).
		Where(compile(conds)...).
		Order(goqu.I("distance").Asc(), goqu.C("created_at").Asc(), goqu.C("id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build filter and rank: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	hits := make([]result.Hit, 0)
	for rows.Next() {
		var dist float64
		j, err := scanJob(rows, &dist)
		if err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		hits = append(hits, result.New(j, dist))
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return hits, nil
}

// compile maps typed conditions to goqu expressions. Unknown operators are skipped.
func compile(conds []filter.Condition) []exp.Expression {
	out := make([]exp.Expression, 0, len(conds))
	for _, c := range conds {
		switch c.Op() {
		case filter.OpMinSalary:
			out = append(out, goqu.C(c.Field()).Gte(c.Threshold()))
		case filter.OpContains:
			out = append(out, goqu.C(c.Field()).ILike("%"+escapeLike(c.Value())+"%"))
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user text match literally inside a LIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner, extra ...any) (domjob.Job, error) {
	var (
		id, title, description       string
		category, business, location sql.NullString
		salary                       sql.NullInt64
		embedding                    *pgvector.Vector
		createdAt, updatedAt         time.Time
	)
	dest := []any{
		&id, &title, &description, &category, &business, &location,
		&salary, &embedding, &createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domjob.Job{}, err
	}

	a := domjob.Attributes{
		Title:        title,
		Description:  description,
		JobCategory:  category.String,
		BusinessType: business.String,
		Location:     location.String,
	}
	if salary.Valid {
		v := int(salary.Int64)
		a.MinSalary = &v
	}

	var vec []float32
	if embedding != nil {
		vec = embedding.Slice()
	}
	return domjob.Reconstruct(id, a, vec, createdAt, updatedAt), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func vectorValue(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}
