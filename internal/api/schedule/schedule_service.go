package schedule

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
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/habitnest-api/app/lock"
	"github.com/FACorreiaa/habitnest-api/app/observability/metrics"
	"github.com/FACorreiaa/habitnest-api/internal/api/auth"
	"github.com/FACorreiaa/habitnest-api/internal/api/filters"
	"github.com/FACorreiaa/habitnest-api/internal/api/validate"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

var _ ScheduleService = (*ScheduleServiceImpl)(nil)

// ScheduleService is the owner-scoped schedule API. Writes that would overlap
// another of the owner's entries on the same day fail with ErrConflict.
type ScheduleService interface {
	List(ctx context.Context, principal *types.User, day *time.Time) ([]types.ScheduleEntry, error)
	Get(ctx context.Context, principal *types.User, id uuid.UUID) (*types.ScheduleEntry, error)
	Create(ctx context.Context, principal *types.User, req types.CreateScheduleEntryRequest) (*types.ScheduleEntry, error)
	Update(ctx context.Context, principal *types.User, id uuid.UUID, req types.UpdateScheduleEntryRequest) (*types.ScheduleEntry, error)
	Delete(ctx context.Context, principal *types.User, id uuid.UUID) error
}

type ScheduleServiceImpl struct {
	logger *slog.Logger
	repo   ScheduleRepository
	locker lock.Locker
}

func NewScheduleService(repo ScheduleRepository, locker lock.Locker, logger *slog.Logger) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{
		logger: logger,
		repo:   repo,
		locker: locker,
	}
}

// dayLockKey names the critical section for one owner's calendar day.
func dayLockKey(owner uuid.UUID, day time.Time) string {
	return fmt.Sprintf("schedule:%s:%s", owner, day.Format(types.DateLayout))
}

func (s *ScheduleServiceImpl) start(ctx context.Context, name string, principal *types.User) (context.Context, trace.Span, *slog.Logger) {
	var userID string
	if principal != nil {
		userID = principal.ID.String()
	}
	ctx, span := otel.Tracer("ScheduleService").Start(ctx, name, trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	return ctx, span, s.logger.With(slog.String("method", name), slog.String("userID", userID))
}

func failSpan(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}

func (s *ScheduleServiceImpl) List(ctx context.Context, principal *types.User, day *time.Time) ([]types.ScheduleEntry, error) {
	ctx, span, l := s.start(ctx, "List", principal)
	defer span.End()

	if principal == nil {
		return nil, failSpan(span, types.ErrUnauthenticated, "No principal")
	}
	entries, err := s.repo.List(ctx, filters.BuildScheduleDateFilter(principal.ID, day))
	if err != nil {
		l.ErrorContext(ctx, "Failed to list schedule", slog.Any("error", err))
		return nil, failSpan(span, err, "List failed")
	}

	span.SetStatus(codes.Ok, "Schedule listed")
	return entries, nil
}

func (s *ScheduleServiceImpl) load(ctx context.Context, principal *types.User, id uuid.UUID) (*types.ScheduleEntry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(principal, e.Owner); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ScheduleServiceImpl) Get(ctx context.Context, principal *types.User, id uuid.UUID) (*types.ScheduleEntry, error) {
	ctx, span, l := s.start(ctx, "Get", principal)
	defer span.End()

	e, err := s.load(ctx, principal, id)
	if err != nil {
		l.WarnContext(ctx, "Schedule entry not readable", slog.String("entryID", id.String()), slog.Any("error", err))
		return nil, failSpan(span, err, "Get failed")
	}
	span.SetStatus(codes.Ok, "Entry found")
	return e, nil
}

func (s *ScheduleServiceImpl) Create(ctx context.Context, principal *types.User, req types.CreateScheduleEntryRequest) (*types.ScheduleEntry, error) {
	ctx, span, l := s.start(ctx, "Create", principal)
	defer span.End()

	if principal == nil {
		return nil, failSpan(span, types.ErrUnauthenticated, "No principal")
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		l.WarnContext(ctx, "Invalid schedule entry", slog.Any("error", err))
		return nil, failSpan(span, err, "Invalid entry")
	}
	day, err := types.ParseDate(req.Date)
	if err != nil {
		return nil, failSpan(span, types.NewValidationError("date", validate.Message("date", "calendardate")), "Invalid entry")
	}
	iv, err := NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		l.WarnContext(ctx, "Invalid schedule interval", slog.Any("error", err))
		return nil, failSpan(span, err, "Invalid entry")
	}

	entry := types.ScheduleEntry{
		Title:     req.Title,
		Date:      day,
		StartTime: FormatClock(iv.Start),
		EndTime:   FormatClock(iv.End),
		Owner:     principal.ID,
	}
	if req.Notes != nil {
		entry.Notes = strings.TrimSpace(*req.Notes)
	}

	created, err := s.writeLocked(ctx, entry.Owner, entry.Date, iv, uuid.Nil, func(ctx context.Context) (*types.ScheduleEntry, error) {
		return s.repo.Create(ctx, entry)
	})
	if err != nil {
		l.WarnContext(ctx, "Schedule entry not created", slog.Any("error", err))
		return nil, failSpan(span, err, "Create failed")
	}

	l.InfoContext(ctx, "Schedule entry created", slog.String("entryID", created.ID.String()))
	span.SetStatus(codes.Ok, "Entry created")
	return created, nil
}

func (s *ScheduleServiceImpl) Update(ctx context.Context, principal *types.User, id uuid.UUID, req types.UpdateScheduleEntryRequest) (*types.ScheduleEntry, error) {
	ctx, span, l := s.start(ctx, "Update", principal)
	defer span.End()

	req.TrimSpace()
	if err := validate.Struct(req); err != nil {
		l.WarnContext(ctx, "Invalid schedule update", slog.Any("error", err))
		return nil, failSpan(span, err, "Invalid update")
	}

	entry, err := s.load(ctx, principal, id)
	if err != nil {
		l.WarnContext(ctx, "Schedule entry not writable", slog.String("entryID", id.String()), slog.Any("error", err))
		return nil, failSpan(span, err, "Update failed")
	}

	// Ownership never moves, whatever the body says.
	patch := types.ScheduleEntryPatch{Title: req.Title, Notes: req.Notes}
	if !req.TouchesTime() {
		updated, err := s.repo.Update(ctx, id, patch)
		if err != nil {
			l.WarnContext(ctx, "Schedule entry not updated", slog.Any("error", err))
			return nil, failSpan(span, err, "Update failed")
		}
		l.InfoContext(ctx, "Schedule entry updated", slog.String("entryID", id.String()))
		span.SetStatus(codes.Ok, "Entry updated")
		return updated, nil
	}

	on, startTime, endTime := entry.Date, entry.StartTime, entry.EndTime
	if req.Date != nil {
		on, err = types.ParseDate(*req.Date)
		if err != nil {
			return nil, failSpan(span, types.NewValidationError("date", validate.Message("date", "calendardate")), "Invalid update")
		}
	}
	if req.StartTime != nil {
		startTime = *req.StartTime
	}
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	iv, err := NewInterval(startTime, endTime)
	if err != nil {
		l.WarnContext(ctx, "Invalid schedule interval", slog.Any("error", err))
		return nil, failSpan(span, err, "Invalid update")
	}
	startTime, endTime = FormatClock(iv.Start), FormatClock(iv.End)
	patch.Date = &on
	patch.StartTime, patch.EndTime = &startTime, &endTime
	patch.StartMinute, patch.EndMinute = &iv.Start, &iv.End

	updated, err := s.writeLocked(ctx, principal.ID, on, iv, id, func(ctx context.Context) (*types.ScheduleEntry, error) {
		return s.repo.Update(ctx, id, patch)
	})
	if err != nil {
		l.WarnContext(ctx, "Schedule entry not updated", slog.Any("error", err))
		return nil, failSpan(span, err, "Update failed")
	}

	l.InfoContext(ctx, "Schedule entry moved", slog.String("entryID", id.String()))
	span.SetStatus(codes.Ok, "Entry updated")
	return updated, nil
}

// writeLocked runs the conflict check and the write inside the owner's
// day lock so no other write for that day can slip in between.
func (s *ScheduleServiceImpl) writeLocked(
	ctx context.Context,
	owner uuid.UUID,
	on time.Time,
	iv Interval,
	exclude uuid.UUID,
	write func(context.Context) (*types.ScheduleEntry, error),
) (*types.ScheduleEntry, error) {
	release, err := s.locker.Acquire(ctx, dayLockKey(owner, on))
	if err != nil {
		return nil, fmt.Errorf("lock schedule day: %w", err)
	}
	defer release()

	existing, err := s.repo.ListSameDay(ctx, owner, on, exclude)
	if err != nil {
		return nil, err
	}
	others := make([]Interval, 0, len(existing))
	for _, e := range existing {
		other, err := intervalOf(e)
		if err != nil {
			return nil, fmt.Errorf("stored entry %s has invalid times: %w", e.ID, err)
		}
		others = append(others, other)
	}
	if Conflicts(iv, others) {
		s.countConflict(ctx, "detector")
		return nil, types.ErrConflict
	}

	written, err := write(ctx)
	if errors.Is(err, types.ErrConflict) {
		s.countConflict(ctx, "constraint")
	}
	return written, err
}

func (s *ScheduleServiceImpl) countConflict(ctx context.Context, source string) {
	metrics.Get().ScheduleConflictsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

func (s *ScheduleServiceImpl) Delete(ctx context.Context, principal *types.User, id uuid.UUID) error {
	ctx, span, l := s.start(ctx, "Delete", principal)
	defer span.End()

	if _, err := s.load(ctx, principal, id); err != nil {
		l.WarnContext(ctx, "Schedule entry not deletable", slog.String("entryID", id.String()), slog.Any("error", err))
		return failSpan(span, err, "Delete failed")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		l.ErrorContext(ctx, "Failed to delete schedule entry", slog.Any("error", err))
		return failSpan(span, err, "Delete failed")
	}

	l.InfoContext(ctx, "Schedule entry deleted", slog.String("entryID", id.String()))
	span.SetStatus(codes.Ok, "Entry deleted")
	return nil
}
