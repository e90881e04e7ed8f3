package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/habitnest-api/app/db"
	"github.com/FACorreiaa/habitnest-api/internal/api/filters"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

var _ ScheduleRepository = (*PostgresScheduleRepo)(nil)

type ScheduleRepository interface {
	// List returns the entries matching p ordered by day, then start time.
	List(ctx context.Context, p filters.Predicate) ([]types.ScheduleEntry, error)
	// ListSameDay returns owner's entries on day, leaving out exclude.
	ListSameDay(ctx context.Context, owner uuid.UUID, day time.Time, exclude uuid.UUID) ([]types.ScheduleEntry, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ScheduleEntry, error)
	// Create and Update return ErrConflict if the store's overlap constraint
	// rejects the row.
	Create(ctx context.Context, e types.ScheduleEntry) (*types.ScheduleEntry, error)
	// Update writes the non-nil fields of p to entry id.
	Update(ctx context.Context, id uuid.UUID, p types.ScheduleEntryPatch) (*types.ScheduleEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresScheduleRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresScheduleRepo(db database.DB, logger *slog.Logger) *PostgresScheduleRepo {
	return &PostgresScheduleRepo{
		logger: logger,
		db:     db,
	}
}

const entryColumns = "id, user_id, title, entry_date, start_time, end_time, notes, created_at"

func scanEntry(row pgx.Row) (*types.ScheduleEntry, error) {
	var e types.ScheduleEntry
	if err := row.Scan(&e.ID, &e.Owner, &e.Title, &e.Date, &e.StartTime, &e.EndTime, &e.Notes, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, semconv.DBSystemPostgreSQL, attribute.String("db.sql.table", "schedule_entries"))
	return otel.Tracer("ScheduleRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

func fail(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return fmt.Errorf("%s: %w", msg, database.MapError(err))
}

func (r *PostgresScheduleRepo) query(ctx context.Context, span trace.Span, op, sql string, args ...any) ([]types.ScheduleEntry, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		database.ObserveQuery(ctx, op, start, err)
		return nil, fail(span, err, op)
	}
	defer rows.Close()

	entries := []types.ScheduleEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			database.ObserveQuery(ctx, op, start, err)
			return nil, fail(span, err, op)
		}
		entries = append(entries, *e)
	}
	err = rows.Err()
	database.ObserveQuery(ctx, op, start, err)
	if err != nil {
		return nil, fail(span, err, op)
	}
	span.SetAttributes(attribute.Int("schedule.count", len(entries)))
	span.SetStatus(codes.Ok, "Entries listed")
	return entries, nil
}

func (r *PostgresScheduleRepo) List(ctx context.Context, p filters.Predicate) ([]types.ScheduleEntry, error) {
	ctx, span := startSpan(ctx, "List", attribute.String("db.user.id", p.Owner.String()))
	defer span.End()

	where, args := p.SQL("entry_date", 1)
	entries, err := r.query(ctx, span, "schedule.List",
		"SELECT "+entryColumns+" FROM schedule_entries WHERE "+where+" ORDER BY entry_date ASC, start_minute ASC",
		args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list schedule entries", slog.String("method", "List"), slog.Any("error", err))
	}
	return entries, err
}

func (r *PostgresScheduleRepo) ListSameDay(ctx context.Context, owner uuid.UUID, day time.Time, exclude uuid.UUID) ([]types.ScheduleEntry, error) {
	ctx, span := startSpan(ctx, "ListSameDay",
		attribute.String("db.user.id", owner.String()),
		attribute.String("schedule.date", day.Format(types.DateLayout)),
	)
	defer span.End()

	return r.query(ctx, span, "schedule.ListSameDay",
		"SELECT "+entryColumns+" FROM schedule_entries WHERE user_id = $1 AND entry_date = $2 AND id <> $3 ORDER BY start_minute ASC",
		owner, day, exclude)
}

func (r *PostgresScheduleRepo) Get(ctx context.Context, id uuid.UUID) (*types.ScheduleEntry, error) {
	ctx, span := startSpan(ctx, "Get", attribute.String("schedule.id", id.String()))
	defer span.End()

	start := time.Now()
	e, err := scanEntry(r.db.QueryRow(ctx, "SELECT "+entryColumns+" FROM schedule_entries WHERE id = $1", id))
	database.ObserveQuery(ctx, "schedule.Get", start, err)
	if err != nil {
		return nil, fail(span, err, "get schedule entry")
	}
	span.SetStatus(codes.Ok, "Entry found")
	return e, nil
}

func (r *PostgresScheduleRepo) Create(ctx context.Context, e types.ScheduleEntry) (*types.ScheduleEntry, error) {
	ctx, span := startSpan(ctx, "Create", attribute.String("db.user.id", e.Owner.String()))
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"), slog.String("userID", e.Owner.String()))

	iv, err := intervalOf(e)
	if err != nil {
		return nil, fail(span, err, "create schedule entry")
	}

	start := time.Now()
	created, err := scanEntry(r.db.QueryRow(ctx, `
		INSERT INTO schedule_entries (user_id, title, entry_date, start_time, end_time, start_minute, end_minute, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+entryColumns,
		e.Owner, e.Title, e.Date, e.StartTime, e.EndTime, iv.Start, iv.End, e.Notes,
	))
	database.ObserveQuery(ctx, "schedule.Create", start, err)
	if err != nil {
		l.WarnContext(ctx, "Failed to insert schedule entry", slog.Any("error", err))
		return nil, fail(span, err, "create schedule entry")
	}

	span.SetStatus(codes.Ok, "Entry created")
	return created, nil
}

func (r *PostgresScheduleRepo) Update(ctx context.Context, id uuid.UUID, p types.ScheduleEntryPatch) (*types.ScheduleEntry, error) {
	ctx, span := startSpan(ctx, "Update", attribute.String("schedule.id", id.String()))
	defer span.End()

	start := time.Now()
	updated, err := scanEntry(r.db.QueryRow(ctx, `
		UPDATE schedule_entries
		SET title = COALESCE($2, title),
		    notes = COALESCE($3, notes),
		    entry_date = COALESCE($4, entry_date),
		    start_time = COALESCE($5, start_time),
		    end_time = COALESCE($6, end_time),
		    start_minute = COALESCE($7, start_minute),
		    end_minute = COALESCE($8, end_minute)
		WHERE id = $1
		RETURNING `+entryColumns,
		id, p.Title, p.Notes, p.Date, p.StartTime, p.EndTime, p.StartMinute, p.EndMinute,
	))
	database.ObserveQuery(ctx, "schedule.Update", start, err)
	if err != nil {
		r.logger.WarnContext(ctx, "Failed to update schedule entry", slog.String("method", "Update"), slog.Any("error", err))
		return nil, fail(span, err, "update schedule entry")
	}

	span.SetStatus(codes.Ok, "Entry updated")
	return updated, nil
}

func (r *PostgresScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "Delete", attribute.String("schedule.id", id.String()))
	defer span.End()

	start := time.Now()
	tag, err := r.db.Exec(ctx, "DELETE FROM schedule_entries WHERE id = $1", id)
	database.ObserveQuery(ctx, "schedule.Delete", start, err)
	if err != nil {
		return fail(span, err, "delete schedule entry")
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Entry not found")
		return fmt.Errorf("delete schedule entry: %w", types.ErrNotFound)
	}
	span.SetStatus(codes.Ok, "Entry deleted")
	return nil
}
