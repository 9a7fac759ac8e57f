package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/allocation"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

const dateLayout = "2006-01-02"

func parseFilter(r *http.Request) (model.ApplicationFilter, bool, error) {
	q := r.URL.Query()
	f := model.ApplicationFilter{
		Department: strings.TrimSpace(q.Get("department")),
		Search:     strings.TrimSpace(q.Get("q")),
	}

	switch s := model.ApplicationStatus(strings.ToUpper(q.Get("status"))); s {
	case "", model.ApplicationStatusPending, model.ApplicationStatusApproved, model.ApplicationStatusRejected:
		f.Status = s
	default:
		return f, false, fmt.Errorf("unknown status %q", q.Get("status"))
	}

	switch g := model.Gender(strings.ToUpper(q.Get("gender"))); g {
	case "", model.GenderMale, model.GenderFemale:
		f.Gender = g
	default:
		return f, false, fmt.Errorf("unknown gender %q", q.Get("gender"))
	}

	switch q.Get("sort") {
	case "", "newest":
		return f, false, nil
	case "priority":
		return f, true, nil
	default:
		return f, false, fmt.Errorf("unknown sort %q", q.Get("sort"))
	}
}

// ListApplications возвращает заявки с фильтрами status, gender, department, q и сортировкой sort=priority.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	f, byPriority, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	apps, err := h.service.ListApplications(r.Context(), f, byPriority)
	if err != nil {
		h.writeError(w, err, "list applications")
		return
	}

	if len(apps) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

// GetApplication возвращает карточку заявки.
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := h.service.ApplicationDetail(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "get application", zap.String("application", id))
		return
	}

	writeJSON(w, http.StatusOK, d)
}

type decisionRequest struct {
	Action  string `json:"action"`
	Remarks string `json:"remarks"`
}

type decisionResponse struct {
	ApplicationID string                  `json:"application_id"`
	Status        model.ApplicationStatus `json:"status"`
	Remarks       string                  `json:"remarks,omitempty"`
	Allocation    *model.Allocation       `json:"allocation,omitempty"`
}

// DecideApplication одобряет или отклоняет заявку.
func (h *Handler) DecideApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	action := allocation.Action(strings.ToUpper(strings.TrimSpace(req.Action)))

	d, err := h.service.Decide(r.Context(), id, action, req.Remarks)
	if err != nil {
		h.writeError(w, err, "decide application", zap.String("application", id), zap.String("action", string(action)))
		return
	}

	writeJSON(w, http.StatusOK, decisionResponse{
		ApplicationID: d.ApplicationID,
		Status:        d.Status,
		Remarks:       d.Remarks,
		Allocation:    d.Allocation,
	})
}

// GetStats возвращает сводку по заявкам.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, err, "get stats")
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// ListHostels возвращает все корпуса.
func (h *Handler) ListHostels(w http.ResponseWriter, r *http.Request) {
	hostels, err := h.service.ListHostels(r.Context())
	if err != nil {
		h.writeError(w, err, "list hostels")
		return
	}

	if len(hostels) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, hostels)
}

type hostelRequest struct {
	Name       string   `json:"name"`
	Gender     string   `json:"gender"`
	TotalRooms int      `json:"total_rooms"`
	Facilities []string `json:"facilities"`
}

// CreateHostel создаёт корпус.
func (h *Handler) CreateHostel(w http.ResponseWriter, r *http.Request) {
	var req hostelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	hostel, err := h.service.CreateHostel(r.Context(), model.Hostel{
		Name:       req.Name,
		Gender:     model.Gender(req.Gender),
		TotalRooms: req.TotalRooms,
		Facilities: req.Facilities,
	})
	if err != nil {
		h.writeError(w, err, "create hostel")
		return
	}

	writeJSON(w, http.StatusCreated, hostel)
}

type feesRequest struct {
	General  *decimal.Decimal `json:"general"`
	Reserved *decimal.Decimal `json:"reserved"`
}

// SetFees сохраняет тарифы оплаты.
func (h *Handler) SetFees(w http.ResponseWriter, r *http.Request) {
	var req feesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.General == nil || req.Reserved == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	fees := model.FeeSettings{General: *req.General, Reserved: *req.Reserved}
	if err := h.service.SetFees(r.Context(), fees); err != nil {
		h.writeError(w, err, "set fees")
		return
	}

	writeJSON(w, http.StatusOK, fees)
}

type periodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// parsePeriodBound принимает RFC 3339 или дату. Дата конца окна включает весь день.
func parsePeriodBound(v string, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// SetApplicationPeriod сохраняет окно приёма заявок.
func (h *Handler) SetApplicationPeriod(w http.ResponseWriter, r *http.Request) {
	var req periodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	start, err := parsePeriodBound(req.Start, false)
	if err != nil {
		http.Error(w, "invalid start", http.StatusBadRequest)
		return
	}
	end, err := parsePeriodBound(req.End, true)
	if err != nil {
		http.Error(w, "invalid end", http.StatusBadRequest)
		return
	}

	p := model.ApplicationPeriod{Start: start, End: end}
	if err := h.service.SetApplicationPeriod(r.Context(), p); err != nil {
		h.writeError(w, err, "set application period")
		return
	}

	writeJSON(w, http.StatusOK, periodResponse{
		Start: p.Start.UTC().Format(time.RFC3339),
		End:   p.End.UTC().Format(time.RFC3339),
	})
}
