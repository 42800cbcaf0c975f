package course

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iurii2002/CoursesManager/internal/metrics"

	"github.com/uptrace/bun"
)

const tableName = "courses"

type Repository interface {
	Create(ctx context.Context, course *Course) error
	GetAll(ctx context.Context) ([]Course, error)
	GetByID(ctx context.Context, id int) (*Course, error)
	GetByName(ctx context.Context, name string) ([]Course, error)
	GetWithinDates(ctx context.Context, after, before time.Time) ([]Course, error)
	Update(ctx context.Context, course *Course, columns ...string) error
	Delete(ctx context.Context, id int) error
	// RunInTx calls fn with a Repository bound to one transaction, committed
	// when fn returns nil.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) record(ctx context.Context, operation string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.Database.RecordQuery(ctx, operation, tableName, time.Since(start), err)
}

func (r *repository) Create(ctx context.Context, course *Course) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(course).Returning("id").Exec(ctx)

	r.record(ctx, "insert", start, err)
	return err
}

func (r *repository) GetAll(ctx context.Context) ([]Course, error) {
	start := time.Now()
	var courses []Course
	err := r.db.NewSelect().Model(&courses).Order("id ASC").Scan(ctx)

	r.record(ctx, "select", start, err)
	return courses, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Course, error) {
	start := time.Now()
	course := new(Course)
	err := r.db.NewSelect().Model(course).Where("id = ?", id).Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		r.record(ctx, "select", start, nil)
		return nil, ErrCourseNotFound
	}
	r.record(ctx, "select", start, err)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *repository) GetByName(ctx context.Context, name string) ([]Course, error) {
	start := time.Now()
	var courses []Course
	err := r.db.NewSelect().
		Model(&courses).
		Where("name = ?", name).
		Order("id ASC").
		Scan(ctx)

	r.record(ctx, "select", start, err)
	return courses, err
}

func (r *repository) GetWithinDates(ctx context.Context, after, before time.Time) ([]Course, error) {
	start := time.Now()
	var courses []Course
	err := r.db.NewSelect().
		Model(&courses).
		Where("date_start > ?", after).
		Where("date_end < ?", before).
		Order("id ASC").
		Scan(ctx)

	r.record(ctx, "select", start, err)
	return courses, err
}

func (r *repository) Update(ctx context.Context, course *Course, columns ...string) error {
	start := time.Now()
	query := r.db.NewUpdate().Model(course).WherePK()
	if len(columns) > 0 {
		query = query.Column(columns...)
	} else {
		query = query.ExcludeColumn("id")
	}
	result, err := query.Exec(ctx)

	r.record(ctx, "update", start, err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	course := &Course{ID: id}
	result, err := r.db.NewDelete().Model(course).WherePK().Exec(ctx)

	r.record(ctx, "delete", start, err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *repository) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &repository{db: tx, metrics: r.metrics})
	})
}
