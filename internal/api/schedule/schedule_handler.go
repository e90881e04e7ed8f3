package schedule

import (
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/habitnest-api/internal/api"
	"github.com/FACorreiaa/habitnest-api/internal/api/auth"
	"github.com/FACorreiaa/habitnest-api/internal/api/filters"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

type HandlerImpl struct {
	scheduleService ScheduleService
	logger          *slog.Logger
}

func NewHandlerImpl(scheduleService ScheduleService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		scheduleService: scheduleService,
		logger:          logger,
	}
}

// ListEntries godoc
// @Summary      List schedule entries
// @Description  Lists the caller's entries by start time, optionally for one calendar day.
// @Tags         Schedule
// @Produce      json
// @Param        date query string false "Day, YYYY-MM-DD"
// @Success      200 {object} api.SuccessEnvelope{data=[]types.ScheduleEntry}
// @Failure      400 {object} api.ErrorEnvelope
// @Failure      401 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /schedule [get]
func (h *HandlerImpl) ListEntries(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "ListEntries"))
	user, _ := auth.GetUserFromContext(r.Context())

	day, err := filters.ParseScheduleQuery(r.URL.Query())
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}

	entries, err := h.scheduleService.List(r.Context(), user, day)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.ListResponse(w, r, entries)
}

// GetEntry godoc
// @Summary      Get schedule entry
// @Tags         Schedule
// @Produce      json
// @Param        id path string true "Entry ID"
// @Success      200 {object} api.SuccessEnvelope{data=types.ScheduleEntry}
// @Failure      401 {object} api.ErrorEnvelope "Not the owner"
// @Failure      404 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /schedule/{id} [get]
func (h *HandlerImpl) GetEntry(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetEntry"))
	user, _ := auth.GetUserFromContext(r.Context())

	id, err := api.IDParam(r, "id")
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}

	entry, err := h.scheduleService.Get(r.Context(), user, id)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, entry)
}

// CreateEntry godoc
// @Summary      Create schedule entry
// @Description  Rejected with 400 when it overlaps another of the caller's entries that day.
// @Tags         Schedule
// @Accept       json
// @Produce      json
// @Param        body body types.CreateScheduleEntryRequest true "Entry"
// @Success      201 {object} api.SuccessEnvelope{data=types.ScheduleEntry}
// @Failure      400 {object} api.ErrorEnvelope "Validation failed or time conflict"
// @Failure      401 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /schedule [post]
func (h *HandlerImpl) CreateEntry(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "CreateEntry"))
	user, _ := auth.GetUserFromContext(r.Context())

	var req types.CreateScheduleEntryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.scheduleService.Create(r.Context(), user, req)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, entry)
}

// UpdateEntry godoc
// @Summary      Update schedule entry
// @Description  Partial update; moving the entry in time re-runs the conflict check.
// @Tags         Schedule
// @Accept       json
// @Produce      json
// @Param        id   path string                           true "Entry ID"
// @Param        body body types.UpdateScheduleEntryRequest true "Fields to change"
// @Success      200 {object} api.SuccessEnvelope{data=types.ScheduleEntry}
// @Failure      400 {object} api.ErrorEnvelope
// @Failure      401 {object} api.ErrorEnvelope
// @Failure      404 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /schedule/{id} [put]
func (h *HandlerImpl) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "UpdateEntry"))
	user, _ := auth.GetUserFromContext(r.Context())

	id, err := api.IDParam(r, "id")
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}

	var req types.UpdateScheduleEntryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.scheduleService.Update(r.Context(), user, id, req)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, entry)
}

// DeleteEntry godoc
// @Summary      Delete schedule entry
// @Tags         Schedule
// @Produce      json
// @Param        id path string true "Entry ID"
// @Success      200 {object} api.SuccessEnvelope
// @Failure      401 {object} api.ErrorEnvelope
// @Failure      404 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /schedule/{id} [delete]
func (h *HandlerImpl) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "DeleteEntry"))
	user, _ := auth.GetUserFromContext(r.Context())

	id, err := api.IDParam(r, "id")
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}

	if err := h.scheduleService.Delete(r.Context(), user, id); err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, struct{}{})
}
