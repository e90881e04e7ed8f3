package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/habitnest-api/app/observability/metrics"
	"github.com/FACorreiaa/habitnest-api/internal/api/validate"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*types.TokenResponse, error)
	// Login fails with ErrUnauthenticated for an unknown email or a wrong
	// password alike.
	Login(ctx context.Context, req types.LoginRequest) (*types.TokenResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

// TokenMinter issues identity tokens.
type TokenMinter interface {
	Mint(principalID uuid.UUID) (string, time.Time, error)
}

type AuthServiceImpl struct {
	logger     *slog.Logger
	repo       AuthRepo
	tokens     TokenMinter
	bcryptCost int
}

func NewAuthService(repo AuthRepo, tokens TokenMinter, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:     logger,
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req types.RegisterRequest) (*types.TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"))
	l.DebugContext(ctx, "Registering user")

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		span.SetStatus(codes.Error, "Invalid register request")
		return nil, err
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		span.SetStatus(codes.Error, "Invalid register request")
		return nil, types.NewValidationError("confirmPassword", "Passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		l.ErrorContext(ctx, "Failed to hash password", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Password hashing failed")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, req.Name, req.Email, string(hash))
	if err != nil {
		l.WarnContext(ctx, "Failed to create user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create user failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	resp, err := s.issue(user.ID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to mint token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token mint failed")
		return nil, err
	}

	metrics.Get().RegisterRequestsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID.String()))
	span.SetStatus(codes.Ok, "User registered")
	return resp, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, req types.LoginRequest) (*types.TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"))

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		span.SetStatus(codes.Error, "Invalid login request")
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "Login for unknown email")
			span.SetStatus(codes.Error, "Invalid credentials")
			return nil, fmt.Errorf("%w: invalid credentials", types.ErrUnauthenticated)
		}
		l.ErrorContext(ctx, "Failed to load user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "User lookup failed")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		l.WarnContext(ctx, "Password mismatch", slog.String("userID", user.ID.String()))
		span.SetStatus(codes.Error, "Invalid credentials")
		return nil, fmt.Errorf("%w: invalid credentials", types.ErrUnauthenticated)
	}

	resp, err := s.issue(user.ID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to mint token", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Token mint failed")
		return nil, err
	}

	l.InfoContext(ctx, "User logged in", slog.String("userID", user.ID.String()))
	span.SetStatus(codes.Ok, "User logged in")
	return resp, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Me", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "User lookup failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "User found")
	return user, nil
}

func (s *AuthServiceImpl) issue(userID uuid.UUID) (*types.TokenResponse, error) {
	token, expiresAt, err := s.tokens.Mint(userID)
	if err != nil {
		return nil, err
	}
	return &types.TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}
