package goals

import (
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/habitnest-api/internal/api"
	"github.com/FACorreiaa/habitnest-api/internal/api/auth"
	"github.com/FACorreiaa/habitnest-api/internal/api/filters"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

type HandlerImpl struct {
	goalService GoalService
	logger      *slog.Logger
}

func NewHandlerImpl(goalService GoalService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		goalService: goalService,
		logger:      logger,
	}
}

// ListGoals godoc
// @Summary      List goals
// @Description  Lists the caller's goals by target date. year alone selects the whole year; month needs year.
// @Tags         Goals
// @Produce      json
// @Param        month query int false "Month 1-12"
// @Param        year  query int false "Year"
// @Success      200 {object} api.SuccessEnvelope{data=[]types.Goal}
// @Failure      400 {object} api.ErrorEnvelope
// @Failure      401 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /goals [get]
func (h *HandlerImpl) ListGoals(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "ListGoals"))
	user, _ := auth.GetUserFromContext(r.Context())

	month, year, err := filters.ParseGoalQuery(r.URL.Query())
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}

	goals, err := h.goalService.List(r.Context(), user, month, year)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.ListResponse(w, r, goals)
}

// GetGoal godoc
// @Summary      Get goal
// @Tags         Goals
// @Produce      json
// @Param        id path string true "Goal ID"
// @Success      200 {object} api.SuccessEnvelope{data=types.Goal}
// @Failure      401 {object} api.ErrorEnvelope "Not the owner"
// @Failure      404 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /goals/{id} [get]
func (h *HandlerImpl) GetGoal(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetGoal"))
	user, _ := auth.GetUserFromContext(r.Context())

	id, err := api.IDParam(r, "id")
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}

	goal, err := h.goalService.Get(r.Context(), user, id)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, goal)
}

// CreateGoal godoc
// @Summary      Create goal
// @Tags         Goals
// @Accept       json
// @Produce      json
// @Param        body body types.CreateGoalRequest true "Goal"
// @Success      201 {object} api.SuccessEnvelope{data=types.Goal}
// @Failure      400 {object} api.ErrorEnvelope
// @Failure      401 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /goals [post]
func (h *HandlerImpl) CreateGoal(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "CreateGoal"))
	user, _ := auth.GetUserFromContext(r.Context())

	var req types.CreateGoalRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.goalService.Create(r.Context(), user, req)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, goal)
}

// UpdateGoal godoc
// @Summary      Update goal
// @Description  Partial update; omitted fields keep their value.
// @Tags         Goals
// @Accept       json
// @Produce      json
// @Param        id   path string                  true "Goal ID"
// @Param        body body types.UpdateGoalRequest true "Fields to change"
// @Success      200 {object} api.SuccessEnvelope{data=types.Goal}
// @Failure      400 {object} api.ErrorEnvelope
// @Failure      401 {object} api.ErrorEnvelope
// @Failure      404 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /goals/{id} [put]
func (h *HandlerImpl) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "UpdateGoal"))
	user, _ := auth.GetUserFromContext(r.Context())

	id, err := api.IDParam(r, "id")
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}

	var req types.UpdateGoalRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	goal, err := h.goalService.Update(r.Context(), user, id, req)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, goal)
}

// DeleteGoal godoc
// @Summary      Delete goal
// @Tags         Goals
// @Produce      json
// @Param        id path string true "Goal ID"
// @Success      200 {object} api.SuccessEnvelope
// @Failure      401 {object} api.ErrorEnvelope
// @Failure      404 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /goals/{id} [delete]
func (h *HandlerImpl) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "DeleteGoal"))
	user, _ := auth.GetUserFromContext(r.Context())

	id, err := api.IDParam(r, "id")
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}

	if err := h.goalService.Delete(r.Context(), user, id); err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, struct{}{})
}
