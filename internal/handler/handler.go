// Package handler содержит HTTP-обработчики API портала распределения мест в общежитиях.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/allocation"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/middleware"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/repository"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/service"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterStudent(ctx context.Context, st model.Student, password string) (*model.Student, error)
	Login(ctx context.Context, email, password string, portal model.Role) (*model.Account, error)

	Dashboard(ctx context.Context, studentID string) (*model.Dashboard, error)
	HostelsForStudent(ctx context.Context, studentID string) ([]model.Hostel, error)
	SubmitApplication(ctx context.Context, studentID string, app model.Application) (*model.Application, error)
	PayFee(ctx context.Context, studentID string) (*model.Allocation, error)
	ApplicationPeriod(ctx context.Context) (*model.ApplicationPeriod, bool, error)

	ListApplications(ctx context.Context, f model.ApplicationFilter, byPriority bool) ([]model.ScoredApplication, error)
	ApplicationDetail(ctx context.Context, id string) (*model.ApplicationDetail, error)
	Decide(ctx context.Context, applicationID string, action allocation.Action, remarks string) (*allocation.Decision, error)
	Stats(ctx context.Context) (*model.Stats, error)
	ListHostels(ctx context.Context) ([]model.Hostel, error)
	CreateHostel(ctx context.Context, h model.Hostel) (*model.Hostel, error)
	SetFees(ctx context.Context, fees model.FeeSettings) error
	SetApplicationPeriod(ctx context.Context, p model.ApplicationPeriod) error
}

// Handler реализует HTTP-обработчики API портала.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибку бизнес-логики в HTTP-статус. Неизвестные ошибки логируются.
func (h *Handler) writeError(w http.ResponseWriter, err error, op string, fields ...zap.Field) {
	var status int
	msg := ""

	switch {
	case errors.Is(err, validation.ErrValidation), errors.Is(err, allocation.ErrInvalidInput):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, allocation.ErrNoEligibleHostel):
		status, msg = http.StatusConflict, allocation.ErrNoEligibleHostel.Error()
	case errors.Is(err, allocation.ErrInvalidStateTransition),
		errors.Is(err, repository.ErrRoomUnavailable),
		errors.Is(err, repository.ErrPaymentNotPending),
		errors.Is(err, repository.ErrAccountExists),
		errors.Is(err, repository.ErrApplicationExists),
		errors.Is(err, repository.ErrHostelExists):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrApplicationPeriodClosed), errors.Is(err, service.ErrWrongPortal):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	default:
		h.logger.Error(op+" error", append(fields, zap.Error(err))...)
		status = http.StatusInternalServerError
	}

	if msg == "" {
		msg = http.StatusText(status)
	}
	http.Error(w, msg, status)
}

func principal(w http.ResponseWriter, r *http.Request) (middleware.Principal, bool) {
	p, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
	return p, ok
}

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Gender     string `json:"gender"`
	Department string `json:"department"`
	Password   string `json:"password"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	ID    string     `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	Token string     `json:"token"`
}

// Register обрабатывает регистрацию нового студента.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	st, err := h.service.RegisterStudent(r.Context(), model.Student{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Gender:     model.Gender(req.Gender),
		Department: req.Department,
	}, req.Password)
	if err != nil {
		h.writeError(w, err, "register student")
		return
	}

	token, err := h.authMiddleware.SetAuthCookie(w, st.ID, model.RoleStudent)
	if err != nil {
		h.writeError(w, err, "issue token")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{ID: st.ID, Email: st.Email, Role: model.RoleStudent, Token: token})
}

// StudentLogin выполняет вход через портал студента.
func (h *Handler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, model.RoleStudent)
}

// AdminLogin выполняет вход через портал администратора.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, model.RoleAdmin)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, portal model.Role) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	acc, err := h.service.Login(r.Context(), req.Email, req.Password, portal)
	if err != nil {
		h.writeError(w, err, "login", zap.String("portal", string(portal)))
		return
	}

	token, err := h.authMiddleware.SetAuthCookie(w, acc.ID, acc.Role)
	if err != nil {
		h.writeError(w, err, "issue token")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{ID: acc.ID, Email: acc.Email, Role: acc.Role, Token: token})
}

// Logout удаляет cookie авторизации.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
}

type periodResponse struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Active bool   `json:"active"`
}

// GetApplicationPeriod возвращает окно приёма заявок. Если окно не задано, отвечает 204.
func (h *Handler) GetApplicationPeriod(w http.ResponseWriter, r *http.Request) {
	p, active, err := h.service.ApplicationPeriod(r.Context())
	if err != nil {
		h.writeError(w, err, "get application period")
		return
	}

	if p == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, periodResponse{
		Start:  p.Start.Format(time.RFC3339),
		End:    p.End.Format(time.RFC3339),
		Active: active,
	})
}
