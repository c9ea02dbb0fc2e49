package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jaysurani18/smart-society/internal/service"

	"go.uber.org/zap"
)

// ComplaintHandler resident complaints
type ComplaintHandler struct {
	complaintService service.ComplaintService
	maxBodyBytes     int64
	maxUploadBytes   int64
	logger           *zap.Logger
}

func NewComplaintHandler(complaintService service.ComplaintService, maxBodyBytes, maxUploadBytes int64, logger *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		complaintService: complaintService,
		maxBodyBytes:     maxBodyBytes,
		maxUploadBytes:   maxUploadBytes,
		logger:           logger,
	}
}

// File accepts multipart/form-data (title, description, optional image) or plain JSON.
func (h *ComplaintHandler) File(w http.ResponseWriter, r *http.Request) {
	req := service.FileComplaintRequest{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+h.maxBodyBytes)
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			writeMessage(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		defer r.MultipartForm.RemoveAll()

		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")

		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			writeMessage(w, http.StatusBadRequest, "Invalid image upload")
			return
		default:
			defer closeQuietly(file)
			req.Image = file
			req.ImageName = header.Filename
		}
	} else {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
			writeBadBody(w, err)
			return
		}
		req.Title, req.Description = body.Title, body.Description
	}

	complaint, err := h.complaintService.File(r.Context(), callerFrom(r), req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Complaint filed successfully",
		"complaint": complaint,
	})
}

func closeQuietly(f multipart.File) { _ = f.Close() }

func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.complaintService.List(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
		writeBadBody(w, err)
		return
	}

	complaint, err := h.complaintService.UpdateStatus(r.Context(), callerFrom(r), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Complaint marked as " + string(complaint.Status),
		"complaint": complaint,
	})
}

func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.complaintService.Delete(r.Context(), callerFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Complaint deleted")
}
