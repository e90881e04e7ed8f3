package goals

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/habitnest-api/internal/api/auth"
	"github.com/FACorreiaa/habitnest-api/internal/api/filters"
	"github.com/FACorreiaa/habitnest-api/internal/api/validate"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

var _ GoalService = (*GoalServiceImpl)(nil)

// GoalService is the owner-scoped goal API. Get, Update and Delete report
// ErrNotFound for a missing goal before ErrForbidden for someone else's.
type GoalService interface {
	List(ctx context.Context, principal *types.User, month, year *int) ([]types.Goal, error)
	Get(ctx context.Context, principal *types.User, id uuid.UUID) (*types.Goal, error)
	Create(ctx context.Context, principal *types.User, req types.CreateGoalRequest) (*types.Goal, error)
	Update(ctx context.Context, principal *types.User, id uuid.UUID, req types.UpdateGoalRequest) (*types.Goal, error)
	Delete(ctx context.Context, principal *types.User, id uuid.UUID) error
}

type GoalServiceImpl struct {
	logger *slog.Logger
	repo   GoalRepository
}

func NewGoalService(repo GoalRepository, logger *slog.Logger) *GoalServiceImpl {
	return &GoalServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *GoalServiceImpl) start(ctx context.Context, name string, principal *types.User) (context.Context, trace.Span, *slog.Logger) {
	var userID string
	if principal != nil {
		userID = principal.ID.String()
	}
	ctx, span := otel.Tracer("GoalService").Start(ctx, name, trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	return ctx, span, s.logger.With(slog.String("method", name), slog.String("userID", userID))
}

func failSpan(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}

func (s *GoalServiceImpl) List(ctx context.Context, principal *types.User, month, year *int) ([]types.Goal, error) {
	ctx, span, l := s.start(ctx, "List", principal)
	defer span.End()

	if principal == nil {
		return nil, failSpan(span, types.ErrUnauthenticated, "No principal")
	}
	pred, err := filters.BuildGoalFilter(principal.ID, month, year)
	if err != nil {
		l.WarnContext(ctx, "Invalid goal filter", slog.Any("error", err))
		return nil, failSpan(span, err, "Invalid filter")
	}

	goals, err := s.repo.List(ctx, pred)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list goals", slog.Any("error", err))
		return nil, failSpan(span, err, "List failed")
	}

	l.DebugContext(ctx, "Goals listed", slog.Int("count", len(goals)))
	span.SetStatus(codes.Ok, "Goals listed")
	return goals, nil
}

// load fetches id and applies the ownership check.
func (s *GoalServiceImpl) load(ctx context.Context, principal *types.User, id uuid.UUID) (*types.Goal, error) {
	g, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(principal, g.Owner); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GoalServiceImpl) Get(ctx context.Context, principal *types.User, id uuid.UUID) (*types.Goal, error) {
	ctx, span, l := s.start(ctx, "Get", principal)
	defer span.End()

	g, err := s.load(ctx, principal, id)
	if err != nil {
		l.WarnContext(ctx, "Goal not readable", slog.String("goalID", id.String()), slog.Any("error", err))
		return nil, failSpan(span, err, "Get failed")
	}
	span.SetStatus(codes.Ok, "Goal found")
	return g, nil
}

func (s *GoalServiceImpl) Create(ctx context.Context, principal *types.User, req types.CreateGoalRequest) (*types.Goal, error) {
	ctx, span, l := s.start(ctx, "Create", principal)
	defer span.End()

	if principal == nil {
		return nil, failSpan(span, types.ErrUnauthenticated, "No principal")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validate.Struct(req); err != nil {
		l.WarnContext(ctx, "Invalid goal", slog.Any("error", err))
		return nil, failSpan(span, err, "Invalid goal")
	}
	target, err := types.ParseDate(req.TargetDate)
	if err != nil {
		return nil, failSpan(span, types.NewValidationError("targetDate", validate.Message("targetDate", "calendardate")), "Invalid goal")
	}

	status := types.GoalStatusNotStarted
	if req.Status != nil {
		status = *req.Status
	}

	created, err := s.repo.Create(ctx, types.Goal{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  target,
		Status:      status,
		Owner:       principal.ID,
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to create goal", slog.Any("error", err))
		return nil, failSpan(span, err, "Create failed")
	}

	l.InfoContext(ctx, "Goal created", slog.String("goalID", created.ID.String()))
	span.SetStatus(codes.Ok, "Goal created")
	return created, nil
}

func (s *GoalServiceImpl) Update(ctx context.Context, principal *types.User, id uuid.UUID, req types.UpdateGoalRequest) (*types.Goal, error) {
	ctx, span, l := s.start(ctx, "Update", principal)
	defer span.End()

	req.TrimSpace()
	if err := validate.Struct(req); err != nil {
		l.WarnContext(ctx, "Invalid goal update", slog.Any("error", err))
		return nil, failSpan(span, err, "Invalid update")
	}

	if _, err := s.load(ctx, principal, id); err != nil {
		l.WarnContext(ctx, "Goal not writable", slog.String("goalID", id.String()), slog.Any("error", err))
		return nil, failSpan(span, err, "Update failed")
	}

	// Ownership never moves, whatever the body says.
	patch := types.GoalPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.TargetDate != nil {
		target, err := types.ParseDate(*req.TargetDate)
		if err != nil {
			return nil, failSpan(span, types.NewValidationError("targetDate", validate.Message("targetDate", "calendardate")), "Invalid update")
		}
		patch.TargetDate = &target
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update goal", slog.Any("error", err))
		return nil, failSpan(span, err, "Update failed")
	}

	l.InfoContext(ctx, "Goal updated", slog.String("goalID", id.String()))
	span.SetStatus(codes.Ok, "Goal updated")
	return updated, nil
}

func (s *GoalServiceImpl) Delete(ctx context.Context, principal *types.User, id uuid.UUID) error {
	ctx, span, l := s.start(ctx, "Delete", principal)
	defer span.End()

	if _, err := s.load(ctx, principal, id); err != nil {
		l.WarnContext(ctx, "Goal not deletable", slog.String("goalID", id.String()), slog.Any("error", err))
		return failSpan(span, err, "Delete failed")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		l.ErrorContext(ctx, "Failed to delete goal", slog.Any("error", err))
		return failSpan(span, err, "Delete failed")
	}

	l.InfoContext(ctx, "Goal deleted", slog.String("goalID", id.String()))
	span.SetStatus(codes.Ok, "Goal deleted")
	return nil
}
