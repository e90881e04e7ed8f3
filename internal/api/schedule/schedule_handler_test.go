package schedule

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/habitnest-api/internal/api/auth"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

func newScheduleRouter(repo ScheduleRepository, principal *types.User) http.Handler {
	h := NewHandlerImpl(newService(repo), discardLogger)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUser(req.Context(), principal)))
		})
	})
	r.Get("/schedule", h.ListEntries)
	r.Post("/schedule", h.CreateEntry)
	r.Get("/schedule/{id}", h.GetEntry)
	r.Put("/schedule/{id}", h.UpdateEntry)
	r.Delete("/schedule/{id}", h.DeleteEntry)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateEntryConflictResponses(t *testing.T) {
	u := &types.User{ID: uuid.New()}
	h := newScheduleRouter(newMemoryScheduleRepo(), u)

	rr := do(t, h, http.MethodPost, "/schedule", `{"title":"a","date":"2024-06-01","startTime":"09:00","endTime":"10:00"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		Success bool                `json:"success"`
		Data    types.ScheduleEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, u.ID, created.Data.Owner)

	rr = do(t, h, http.MethodPost, "/schedule", `{"title":"b","date":"2024-06-01","startTime":"09:30","endTime":"09:45"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Time conflict with existing schedule entry")
	assert.Contains(t, rr.Body.String(), `"success":false`)

	rr = do(t, h, http.MethodPost, "/schedule", `{"title":"c","date":"2024-06-01","startTime":"10:00","endTime":"11:00"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateEntryValidation(t *testing.T) {
	u := &types.User{ID: uuid.New()}
	h := newScheduleRouter(newMemoryScheduleRepo(), u)

	rr := do(t, h, http.MethodPost, "/schedule", `{"title":"a","date":"2024-06-01","startTime":"10:00","endTime":"09:00"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body struct {
		Success bool               `json:"success"`
		Error   string             `json:"error"`
		Errors  []types.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "End time must be after start time", body.Error)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "endTime", body.Errors[0].Field)

	rr = do(t, h, http.MethodPost, "/schedule", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListEntriesByDate(t *testing.T) {
	u := &types.User{ID: uuid.New()}
	repo := newMemoryScheduleRepo(
		entryAt(u.ID, "second", day(2024, time.June, 1), "13:00", "14:00"),
		entryAt(u.ID, "first", day(2024, time.June, 1), "08:00", "09:00"),
		entryAt(u.ID, "other day", day(2024, time.June, 2), "08:00", "09:00"),
	)
	h := newScheduleRouter(repo, u)

	rr := do(t, h, http.MethodGet, "/schedule?date=2024-06-01", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Count int                   `json:"count"`
		Data  []types.ScheduleEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "first", body.Data[0].Title)
	assert.Equal(t, "second", body.Data[1].Title)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/schedule?date=June", "").Code)
}

func TestEntryStatusCodes(t *testing.T) {
	owner := &types.User{ID: uuid.New()}
	other := &types.User{ID: uuid.New()}
	e := entryAt(owner.ID, "mine", day(2024, time.June, 1), "09:00", "10:00")

	t.Run("non-owner gets 401", func(t *testing.T) {
		h := newScheduleRouter(newMemoryScheduleRepo(e), other)
		rr := do(t, h, http.MethodGet, "/schedule/"+e.ID.String(), "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Not authorized to access this resource")
		assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPut, "/schedule/"+e.ID.String(), `{"title":"x"}`).Code)
		assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodDelete, "/schedule/"+e.ID.String(), "").Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		h := newScheduleRouter(newMemoryScheduleRepo(e), owner)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/schedule/"+uuid.NewString(), "").Code)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/schedule/not-an-id", "").Code)
	})

	t.Run("owner updates and deletes", func(t *testing.T) {
		h := newScheduleRouter(newMemoryScheduleRepo(e), owner)
		rr := do(t, h, http.MethodPut, "/schedule/"+e.ID.String(), `{"startTime":"9:30","endTime":"10:30"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"startTime":"09:30"`)

		rr = do(t, h, http.MethodDelete, "/schedule/"+e.ID.String(), "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"success":true,"data":{}}`, rr.Body.String())
	})
}
