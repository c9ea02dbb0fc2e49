package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jaysurani18/smart-society/internal/domain"
	"github.com/jaysurani18/smart-society/internal/service"

	"go.uber.org/zap"
)

// BillHandler maintenance bills
type BillHandler struct {
	billService    service.BillService
	accountService service.AccountService
	maxBodyBytes   int64
	logger         *zap.Logger
}

func NewBillHandler(billService service.BillService, accountService service.AccountService, maxBodyBytes int64, logger *zap.Logger) *BillHandler {
	return &BillHandler{
		billService:    billService,
		accountService: accountService,
		maxBodyBytes:   maxBodyBytes,
		logger:         logger,
	}
}

func (h *BillHandler) MyBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.billService.MyBills(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

// Residents feeds the bill-creation picker.
func (h *BillHandler) Residents(w http.ResponseWriter, r *http.Request) {
	list, err := h.accountService.ListResidents(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID  string       `json:"userId"`
		Amount  domain.Money `json:"amount"`
		Month   string       `json:"month"`
		DueDate string       `json:"dueDate"`
		Penalty domain.Money `json:"penalty"`
	}
	if err := readBodyJSON(r, h.maxBodyBytes, &body); err != nil {
		writeBadBody(w, err)
		return
	}

	bill, err := h.billService.Create(r.Context(), callerFrom(r), service.CreateBillRequest{
		UserID:  body.UserID,
		Amount:  body.Amount,
		Month:   body.Month,
		DueDate: body.DueDate,
		Penalty: body.Penalty,
	})
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Bill generated",
		"bill":    bill,
	})
}

func (h *BillHandler) All(w http.ResponseWriter, r *http.Request) {
	bills, err := h.billService.ListAll(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (h *BillHandler) Export(w http.ResponseWriter, r *http.Request) {
	bills, err := h.billService.ListAll(r.Context(), callerFrom(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	data, err := generateBillsExport(bills)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=maintenance-bills.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *BillHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	bill, err := h.billService.MarkPaid(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Bill marked as PAID",
		"bill":    bill,
	})
}
