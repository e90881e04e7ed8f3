package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/habitnest-api/internal/api"
	"github.com/FACorreiaa/habitnest-api/internal/types"
)

type HandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewHandlerImpl(authService AuthService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary      Register
// @Description  Creates an account and returns an identity token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.RegisterRequest true "Account details"
// @Success      201 {object} api.SuccessEnvelope{data=types.TokenResponse}
// @Failure      400 {object} api.ErrorEnvelope "Validation failed or email taken"
// @Failure      500 {object} api.ErrorEnvelope
// @Router       /auth/register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusCreated, resp)
}

// Login godoc
// @Summary      Login
// @Description  Exchanges email and password for an identity token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body types.LoginRequest true "Credentials"
// @Success      200 {object} api.SuccessEnvelope{data=types.TokenResponse}
// @Failure      400 {object} api.ErrorEnvelope
// @Failure      401 {object} api.ErrorEnvelope "Invalid credentials"
// @Router       /auth/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(r.Context(), "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			l.WarnContext(r.Context(), "Login rejected")
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, resp)
}

// Me godoc
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Success      200 {object} api.SuccessEnvelope{data=types.User}
// @Failure      401 {object} api.ErrorEnvelope
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *HandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "Me"))

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		l.ErrorContext(r.Context(), "User not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, notAuthorizedMessage)
		return
	}

	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		api.HandleServiceError(w, r, l, err)
		return
	}
	api.SuccessResponse(w, r, http.StatusOK, user)
}

// Logout godoc
// @Summary      Logout
// @Description  Tokens are stateless; the client discards its copy.
// @Tags         Auth
// @Produce      json
// @Success      200 {object} api.SuccessEnvelope
// @Security     BearerAuth
// @Router       /auth/logout [get]
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	api.SuccessResponse(w, r, http.StatusOK, struct{}{})
}
