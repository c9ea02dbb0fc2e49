package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jaysurani18/smart-society/internal/service"

	"go.uber.org/zap"
)

// NoticeHandler notice board
type NoticeHandler struct {
	noticeService service.NoticeService
	maxBodyBytes  int64
	logger        *zap.Logger
}

func NewNoticeHandler(noticeService service.NoticeService, maxBodyBytes int64, logger *zap.Logger) *NoticeHandler {
	return &NoticeHandler{noticeService: noticeService, maxBodyBytes: maxBodyBytes, logger: logger}
}

func (h *NoticeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.noticeService.List(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NoticeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Date        string `json:"date"`
	}
	if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
		writeBadBody(w, err)
		return
	}

	notice, err := h.noticeService.Create(r.Context(), callerFrom(r), service.CreateNoticeRequest{
		Title:       body.Title,
		Description: body.Description,
		Type:        body.Type,
		Date:        body.Date,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, notice)
}

func (h *NoticeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.noticeService.Delete(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Notice deleted")
}
