package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

// GetDashboard возвращает личный кабинет текущего студента.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	d, err := h.service.Dashboard(r.Context(), p.ID)
	if err != nil {
		h.writeError(w, err, "get dashboard", zap.String("student", p.ID))
		return
	}

	writeJSON(w, http.StatusOK, d)
}

// GetStudentHostels возвращает корпуса, доступные текущему студенту.
func (h *Handler) GetStudentHostels(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	hostels, err := h.service.HostelsForStudent(r.Context(), p.ID)
	if err != nil {
		h.writeError(w, err, "list hostels", zap.String("student", p.ID))
		return
	}

	if len(hostels) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, hostels)
}

type applicationRequest struct {
	AcademicYear     string   `json:"academic_year"`
	CurrentYear      int      `json:"current_year"`
	CGPA             *float64 `json:"cgpa"`
	HomeAddress      string   `json:"home_address"`
	DistanceKm       *float64 `json:"distance_km"`
	AnnualIncome     *float64 `json:"annual_income"`
	Category         string   `json:"category"`
	PhotoIDURL       string   `json:"photo_id_url"`
	IncomeCertURL    string   `json:"income_cert_url"`
	HostelPreference []string `json:"hostel_preference"`
}

// SubmitApplication принимает заявку текущего студента.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	app, err := h.service.SubmitApplication(r.Context(), p.ID, model.Application{
		AcademicYear:     req.AcademicYear,
		CurrentYear:      req.CurrentYear,
		CGPA:             req.CGPA,
		HomeAddress:      req.HomeAddress,
		DistanceKm:       req.DistanceKm,
		AnnualIncome:     req.AnnualIncome,
		Category:         model.Category(req.Category),
		PhotoIDURL:       req.PhotoIDURL,
		IncomeCertURL:    req.IncomeCertURL,
		HostelPreference: req.HostelPreference,
	})
	if err != nil {
		h.writeError(w, err, "submit application", zap.String("student", p.ID))
		return
	}

	writeJSON(w, http.StatusCreated, app)
}

// PayFee подтверждает оплату проживания текущим студентом.
func (h *Handler) PayFee(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	alloc, err := h.service.PayFee(r.Context(), p.ID)
	if err != nil {
		h.writeError(w, err, "pay fee", zap.String("student", p.ID))
		return
	}

	writeJSON(w, http.StatusOK, alloc)
}
