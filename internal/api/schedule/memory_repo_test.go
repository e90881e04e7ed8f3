package schedule

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

// memoryScheduleRepo mirrors the SQL repository's filtering and ordering but
// has no overlap constraint of its own; writeErr stands in for one.
type memoryScheduleRepo struct {
	mu       sync.Mutex
	entries  map[uuid.UUID]types.ScheduleEntry
	writeErr error
	sameDay  int
	// pause, when set, is called between ListSameDay and the write so tests
	// can widen the check-then-write window.
	pause func()
}

func newMemoryScheduleRepo(seed ...types.ScheduleEntry) *memoryScheduleRepo {
	r := &memoryScheduleRepo{entries: make(map[uuid.UUID]types.ScheduleEntry)}
	for _, e := range seed {
		r.entries[e.ID] = e
	}
	return r
}

func sortEntries(es []types.ScheduleEntry) {
	sort.Slice(es, func(i, j int) bool {
		if !es[i].Date.Equal(es[j].Date) {
			return es[i].Date.Before(es[j].Date)
		}
		a, _ := ParseClock(es[i].StartTime)
		b, _ := ParseClock(es[j].StartTime)
		return a < b
	})
}

func (r *memoryScheduleRepo) List(_ context.Context, p filters.Predicate) ([]types.ScheduleEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []types.ScheduleEntry{}
	for _, e := range r.entries {
		if e.Owner != p.Owner {
			continue
		}
		if p.Range != nil && !p.Range.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

func (r *memoryScheduleRepo) ListSameDay(_ context.Context, owner uuid.UUID, day time.Time, exclude uuid.UUID) ([]types.ScheduleEntry, error) {
	r.mu.Lock()
	r.sameDay++
	out := []types.ScheduleEntry{}
	for _, e := range r.entries {
		if e.Owner == owner && e.Date.Equal(day) && e.ID != exclude {
			out = append(out, e)
		}
	}
	pause := r.pause
	r.mu.Unlock()

	sortEntries(out)
	if pause != nil {
		pause()
	}
	return out, nil
}

func (r *memoryScheduleRepo) Get(_ context.Context, id uuid.UUID) (*types.ScheduleEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("get schedule entry: %w", types.ErrNotFound)
	}
	return &e, nil
}

func (r *memoryScheduleRepo) Create(_ context.Context, e types.ScheduleEntry) (*types.ScheduleEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	r.entries[e.ID] = e
	return &e, nil
}

func (r *memoryScheduleRepo) Update(_ context.Context, id uuid.UUID, p types.ScheduleEntryPatch) (*types.ScheduleEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return nil, r.writeErr
	}
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("update schedule entry: %w", types.ErrNotFound)
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	r.entries[id] = e
	return &e, nil
}

func (r *memoryScheduleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("delete schedule entry: %w", types.ErrNotFound)
	}
	delete(r.entries, id)
	return nil
}

func (r *memoryScheduleRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entryAt(owner uuid.UUID, title string, on time.Time, start, end string) types.ScheduleEntry {
	return types.ScheduleEntry{
		ID:        uuid.New(),
		Title:     title,
		Date:      on,
		StartTime: start,
		EndTime:   end,
		Owner:     owner,
	}
}
