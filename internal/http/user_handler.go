package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaysurani18/smart-society/internal/service"

	"go.uber.org/zap"
)

// UserHandler profile and administrator account management
type UserHandler struct {
	authService    service.AuthService
	accountService service.AccountService
	maxBodyBytes   int64
	logger         *zap.Logger
}

func NewUserHandler(authService service.AuthService, accountService service.AccountService, maxBodyBytes int64, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		authService:    authService,
		accountService: accountService,
		maxBodyBytes:   maxBodyBytes,
		logger:         logger,
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accountService.GetProfile(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       *string `json:"name"`
		Wing       *string `json:"wing"`
		FlatNumber *string `json:"flatNumber"`
	}
	if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
		writeBadBody(w, err)
		return
	}

	profile, err := h.accountService.UpdateProfile(r.Context(), callerFrom(r), service.UpdateProfileRequest{
		Name:       body.Name,
		Wing:       body.Wing,
		FlatNumber: body.FlatNumber,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type inviteResponse struct {
	Message   string    `json:"message"`
	AccountID string    `json:"accountId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Invite never echoes the activation link; it goes through the configured notifier only.
func (h *UserHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Role       string `json:"role"`
		Wing       string `json:"wing"`
		FlatNumber string `json:"flatNumber"`
	}
	if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
		writeBadBody(w, err)
		return
	}

	res, err := h.authService.Invite(r.Context(), callerFrom(r), service.InviteRequest{
		Name:       body.Name,
		Email:      body.Email,
		Role:       body.Role,
		Wing:       body.Wing,
		FlatNumber: body.FlatNumber,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inviteResponse{
		Message:   "Invitation link generated",
		AccountID: res.AccountID,
		ExpiresAt: res.ExpiresAt,
	})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.accountService.ListAccounts(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.accountService.DeleteAccount(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User removed successfully")
}

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
		writeBadBody(w, err)
		return
	}

	account, err := h.accountService.ChangeRole(r.Context(), callerFrom(r), chi.URLParam(r, "id"), body.Role)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User role updated",
		"user":    account,
	})
}
