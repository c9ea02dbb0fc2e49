package httpapi

import (
	"net/http"

	"github.com/jaysurani18/smart-society/internal/metrics"
	"github.com/jaysurani18/smart-society/internal/service"

	"go.uber.org/zap"
)

// AuthHandler login, signup, invitation activation and logout
type AuthHandler struct {
	authService  service.AuthService
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewAuthHandler(authService service.AuthService, maxBodyBytes int64, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
		writeBadBody(w, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), service.LoginRequest{
		Email:     body.Email,
		Password:  body.Password,
		IPAddress: clientIP(r),
	})
	metrics.RecordAuthAttempt("login", err == nil)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		Role       string `json:"role"`
		Wing       string `json:"wing"`
		FlatNumber string `json:"flatNumber"`
	}
	if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
		writeBadBody(w, err)
		return
	}

	resp, err := h.authService.Register(r.Context(), service.RegisterRequest{
		Name:       body.Name,
		Email:      body.Email,
		Password:   body.Password,
		Role:       body.Role,
		Wing:       body.Wing,
		FlatNumber: body.FlatNumber,
	})
	metrics.RecordAuthAttempt("register", err == nil)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// SetupPassword activates an invited account.
func (h *AuthHandler) SetupPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
		writeBadBody(w, err)
		return
	}

	res, err := h.authService.Activate(r.Context(), service.ActivateRequest{
		Token:    body.Token,
		Password: body.Password,
	})
	metrics.RecordAuthAttempt("activate", err == nil)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), callerFrom(r)); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	writeMessage(w, http.StatusOK, "Logged out")
}
