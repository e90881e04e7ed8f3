package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/habitnest-api/app/db"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

type AuthRepo interface {
	PrincipalStore
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	// CreateUser inserts a user. A taken email comes back as a ValidationError.
	CreateUser(ctx context.Context, name, email, passwordHash string) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     database.DB
}

func NewPostgresAuthRepo(db database.DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

const userColumns = "id, name, email, password_hash, created_at"

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", id.String()),
	))
	defer span.End()

	return r.getUser(ctx, span, "GetUserByID", "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByEmail", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	return r.getUser(ctx, span, "GetUserByEmail", "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (r *PostgresAuthRepo) getUser(ctx context.Context, span trace.Span, method, query string, arg any) (*types.User, error) {
	l := r.logger.With(slog.String("method", method))

	var u types.User
	start := time.Now()
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	database.ObserveQuery(ctx, method, start, err)
	if err != nil {
		mapped := database.MapError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "User lookup failed")
		l.DebugContext(ctx, "User lookup failed", slog.Any("error", err))
		return nil, fmt.Errorf("get user: %w", mapped)
	}
	span.SetStatus(codes.Ok, "User found")
	return &u, nil
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, name, email, passwordHash string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "CreateUser"))

	u := types.User{Name: name, Email: email, PasswordHash: passwordHash}
	start := time.Now()
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`,
		name, email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	database.ObserveQuery(ctx, "CreateUser", start, err)
	if err != nil {
		mapped := database.MapError(err)
		l.WarnContext(ctx, "Failed to insert user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return nil, fmt.Errorf("create user: %w", mapped)
	}

	span.SetStatus(codes.Ok, "User created")
	return &u, nil
}
