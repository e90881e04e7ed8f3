package goals

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/habitnest-api/internal/api/filters"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

// memoryGoalRepo applies the same predicate and ordering as the SQL repository.
type memoryGoalRepo struct {
	mu    sync.Mutex
	goals map[uuid.UUID]types.Goal
	calls int
}

func newMemoryGoalRepo(seed ...types.Goal) *memoryGoalRepo {
	r := &memoryGoalRepo{goals: make(map[uuid.UUID]types.Goal)}
	for _, g := range seed {
		r.goals[g.ID] = g
	}
	return r
}

func (r *memoryGoalRepo) List(_ context.Context, p filters.Predicate) ([]types.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	out := []types.Goal{}
	for _, g := range r.goals {
		if g.Owner != p.Owner {
			continue
		}
		if p.Range != nil && !p.Range.Contains(g.TargetDate) {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetDate.Before(out[j].TargetDate) })
	return out, nil
}

func (r *memoryGoalRepo) Get(_ context.Context, id uuid.UUID) (*types.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	g, ok := r.goals[id]
	if !ok {
		return nil, fmt.Errorf("get goal: %w", types.ErrNotFound)
	}
	return &g, nil
}

func (r *memoryGoalRepo) Create(_ context.Context, g types.Goal) (*types.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	g.ID = uuid.New()
	g.CreatedAt = time.Now().UTC()
	r.goals[g.ID] = g
	return &g, nil
}

func (r *memoryGoalRepo) Update(_ context.Context, id uuid.UUID, p types.GoalPatch) (*types.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	g, ok := r.goals[id]
	if !ok {
		return nil, fmt.Errorf("update goal: %w", types.ErrNotFound)
	}
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.TargetDate != nil {
		g.TargetDate = *p.TargetDate
	}
	if p.Status != nil {
		g.Status = *p.Status
	}
	r.goals[id] = g
	return &g, nil
}

func (r *memoryGoalRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if _, ok := r.goals[id]; !ok {
		return fmt.Errorf("delete goal: %w", types.ErrNotFound)
	}
	delete(r.goals, id)
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func goalOn(owner uuid.UUID, title string, target time.Time) types.Goal {
	return types.Goal{
		ID:          uuid.New(),
		Title:       title,
		Description: title + " description",
		TargetDate:  target,
		Status:      types.GoalStatusNotStarted,
		Owner:       owner,
	}
}
