package goals

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

var _ GoalRepository = (*PostgresGoalRepo)(nil)

type GoalRepository interface {
	// List returns the goals matching p ordered by target date.
	List(ctx context.Context, p filters.Predicate) ([]types.Goal, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Goal, error)
	Create(ctx context.Context, g types.Goal) (*types.Goal, error)
	// Update writes the non-nil fields of p to goal id.
	Update(ctx context.Context, id uuid.UUID, p types.GoalPatch) (*types.Goal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresGoalRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresGoalRepo(db database.DB, logger *slog.Logger) *PostgresGoalRepo {
	return &PostgresGoalRepo{
		logger: logger,
		db:     db,
	}
}

const goalColumns = "id, user_id, title, description, target_date, status, created_at"

func scanGoal(row pgx.Row) (*types.Goal, error) {
	var g types.Goal
	var status string
	if err := row.Scan(&g.ID, &g.Owner, &g.Title, &g.Description, &g.TargetDate, &status, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.Status = types.GoalStatus(status)
	return &g, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, semconv.DBSystemPostgreSQL, attribute.String("db.sql.table", "goals"))
	return otel.Tracer("GoalRepo").Start(ctx, name, trace.WithAttributes(attrs...))
}

func fail(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return fmt.Errorf("%s: %w", msg, database.MapError(err))
}

func (r *PostgresGoalRepo) List(ctx context.Context, p filters.Predicate) ([]types.Goal, error) {
	ctx, span := startSpan(ctx, "List", attribute.String("db.user.id", p.Owner.String()))
	defer span.End()

	l := r.logger.With(slog.String("method", "List"), slog.String("userID", p.Owner.String()))

	where, args := p.SQL("target_date", 1)
	query := "SELECT " + goalColumns + " FROM goals WHERE " + where + " ORDER BY target_date ASC, created_at ASC"

	start := time.Now()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		database.ObserveQuery(ctx, "goals.List", start, err)
		l.ErrorContext(ctx, "Failed to query goals", slog.Any("error", err))
		return nil, fail(span, err, "list goals")
	}
	defer rows.Close()

	goals := []types.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			database.ObserveQuery(ctx, "goals.List", start, err)
			l.ErrorContext(ctx, "Failed to scan goal row", slog.Any("error", err))
			return nil, fail(span, err, "scan goal")
		}
		goals = append(goals, *g)
	}
	err = rows.Err()
	database.ObserveQuery(ctx, "goals.List", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Error iterating goal rows", slog.Any("error", err))
		return nil, fail(span, err, "iterate goals")
	}

	span.SetAttributes(attribute.Int("goals.count", len(goals)))
	span.SetStatus(codes.Ok, "Goals listed")
	return goals, nil
}

func (r *PostgresGoalRepo) Get(ctx context.Context, id uuid.UUID) (*types.Goal, error) {
	ctx, span := startSpan(ctx, "Get", attribute.String("goal.id", id.String()))
	defer span.End()

	start := time.Now()
	g, err := scanGoal(r.db.QueryRow(ctx, "SELECT "+goalColumns+" FROM goals WHERE id = $1", id))
	database.ObserveQuery(ctx, "goals.Get", start, err)
	if err != nil {
		return nil, fail(span, err, "get goal")
	}
	span.SetStatus(codes.Ok, "Goal found")
	return g, nil
}

func (r *PostgresGoalRepo) Create(ctx context.Context, g types.Goal) (*types.Goal, error) {
	ctx, span := startSpan(ctx, "Create", attribute.String("db.user.id", g.Owner.String()))
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"), slog.String("userID", g.Owner.String()))

	start := time.Now()
	created, err := scanGoal(r.db.QueryRow(ctx, `
		INSERT INTO goals (user_id, title, description, target_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+goalColumns,
		g.Owner, g.Title, g.Description, g.TargetDate, string(g.Status),
	))
	database.ObserveQuery(ctx, "goals.Create", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert goal", slog.Any("error", err))
		return nil, fail(span, err, "create goal")
	}

	l.InfoContext(ctx, "Goal created", slog.String("goalID", created.ID.String()))
	span.SetStatus(codes.Ok, "Goal created")
	return created, nil
}

func (r *PostgresGoalRepo) Update(ctx context.Context, id uuid.UUID, p types.GoalPatch) (*types.Goal, error) {
	ctx, span := startSpan(ctx, "Update", attribute.String("goal.id", id.String()))
	defer span.End()

	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}

	start := time.Now()
	updated, err := scanGoal(r.db.QueryRow(ctx, `
		UPDATE goals
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    target_date = COALESCE($4, target_date),
		    status = COALESCE($5, status)
		WHERE id = $1
		RETURNING `+goalColumns,
		id, p.Title, p.Description, p.TargetDate, status,
	))
	database.ObserveQuery(ctx, "goals.Update", start, err)
	if err != nil {
		return nil, fail(span, err, "update goal")
	}
	span.SetStatus(codes.Ok, "Goal updated")
	return updated, nil
}

func (r *PostgresGoalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "Delete", attribute.String("goal.id", id.String()))
	defer span.End()

	start := time.Now()
	tag, err := r.db.Exec(ctx, "DELETE FROM goals WHERE id = $1", id)
	database.ObserveQuery(ctx, "goals.Delete", start, err)
	if err != nil {
		return fail(span, err, "delete goal")
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Goal not found")
		return fmt.Errorf("delete goal: %w", types.ErrNotFound)
	}
	span.SetStatus(codes.Ok, "Goal deleted")
	return nil
}
