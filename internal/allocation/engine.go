// Package allocation реализует расчёт приоритета заявок и принятие решения о заселении.
//
// Все операции пакета не имеют побочных эффектов: они получают заявку и справочные
// данные и возвращают решение, которое вызывающая сторона сохраняет одной транзакцией.
package allocation

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

// Weights задаёт коэффициенты формулы приоритета.
type Weights struct {
	Distance      float64 `json:"distance"`
	Economic      float64 `json:"economic"`
	Academic      float64 `json:"academic"`
	MaxDistanceKm float64 `json:"max_distance_km"`
	MaxIncome     float64 `json:"max_income"`
}

// DefaultWeights возвращает коэффициенты по умолчанию: удалённость 0.4,
// доход 0.6*0.6, успеваемость 0.1.
func DefaultWeights() Weights {
	return Weights{
		Distance:      0.4,
		Economic:      0.6 * 0.6,
		Academic:      0.1,
		MaxDistanceKm: 1000,
		MaxIncome:     1_000_000,
	}
}

// Action — действие администратора над заявкой.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// Decision — результат рассмотрения заявки.
type Decision struct {
	ApplicationID string
	Status        model.ApplicationStatus
	Remarks       string
	Allocation    *model.Allocation
}

// Engine принимает решения по заявкам.
type Engine struct {
	weights Weights
	now     func() time.Time
}

// NewEngine создаёт движок с указанными коэффициентами.
func NewEngine(w Weights) *Engine {
	return &Engine{
		weights: w,
		now:     time.Now,
	}
}

// Weights возвращает текущие коэффициенты движка.
func (e *Engine) Weights() Weights {
	return e.weights
}

// ScorePriority вычисляет приоритет заявки. Чем больше значение, тем выше нуждаемость.
// Отсутствующие поля дают нулевой вклад.
func (e *Engine) ScorePriority(app model.Application) (float64, error) {
	var distanceFactor, economicFactor, academicFactor float64

	if app.DistanceKm != nil {
		d := *app.DistanceKm
		if d < 0 || math.IsNaN(d) {
			return 0, invalidField("distance_km", "must be non-negative")
		}
		distanceFactor = math.Min(d, e.weights.MaxDistanceKm) / e.weights.MaxDistanceKm * 10
	}

	if app.AnnualIncome != nil {
		inc := *app.AnnualIncome
		if inc < 0 || math.IsNaN(inc) {
			return 0, invalidField("annual_income", "must be non-negative")
		}
		economicFactor = 10 - math.Min(inc, e.weights.MaxIncome)/e.weights.MaxIncome*10
	}

	if app.CGPA != nil {
		c := *app.CGPA
		if c < 0 || c > 10 || math.IsNaN(c) {
			return 0, invalidField("cgpa", "must be within 0..10")
		}
		academicFactor = c
	}

	return distanceFactor*e.weights.Distance +
		economicFactor*e.weights.Economic +
		academicFactor*e.weights.Academic, nil
}

// Decide рассматривает заявку в статусе PENDING. При одобрении выбирается первое
// общежитие из предпочтений, подходящее по полу и со свободной комнатой.
func (e *Engine) Decide(app model.Application, hostels []model.Hostel, fees *model.FeeSettings, action Action, remarks string) (Decision, error) {
	if app.Status != model.ApplicationStatusPending {
		return Decision{}, &Error{
			Kind:  ErrInvalidStateTransition,
			Field: "status",
			Msg:   "application is " + string(app.Status),
		}
	}

	switch action {
	case ActionReject:
		return Decision{
			ApplicationID: app.ID,
			Status:        model.ApplicationStatusRejected,
			Remarks:       remarks,
		}, nil
	case ActionApprove:
	default:
		return Decision{}, invalidField("action", "unknown action "+string(action))
	}

	hostel, ok := selectHostel(app, hostels)
	if !ok {
		return Decision{}, &Error{Kind: ErrNoEligibleHostel, Field: "hostel_preference"}
	}

	if fees == nil {
		return Decision{}, &Error{Kind: ErrMissingFeeSettings, Field: "hostel_fees"}
	}

	return Decision{
		ApplicationID: app.ID,
		Status:        model.ApplicationStatusApproved,
		Remarks:       remarks,
		Allocation: &model.Allocation{
			ApplicationID: app.ID,
			HostelID:      hostel.ID,
			HostelName:    hostel.Name,
			RoomNumber:    hostel.FreeRooms[0],
			AllotmentDate: e.now().UTC(),
			PaymentStatus: model.PaymentStatusPending,
			PaymentAmount: FeeFor(app.Category, *fees),
		},
	}, nil
}

// FeeFor возвращает размер оплаты для категории: общий тариф для GENERAL, льготный для остальных.
func FeeFor(category model.Category, fees model.FeeSettings) decimal.Decimal {
	if category == model.CategoryGeneral {
		return fees.General
	}
	return fees.Reserved
}

func selectHostel(app model.Application, hostels []model.Hostel) (model.Hostel, bool) {
	byID := make(map[string]model.Hostel, len(hostels))
	for _, h := range hostels {
		byID[h.ID] = h
	}

	for _, id := range app.HostelPreference {
		h, ok := byID[id]
		if !ok {
			continue
		}
		if !strings.EqualFold(string(h.Gender), string(app.ApplicantGender)) {
			continue
		}
		if h.AvailableRooms <= 0 || len(h.FreeRooms) == 0 {
			continue
		}
		return h, true
	}

	return model.Hostel{}, false
}

// Ranked — заявка с рассчитанным приоритетом.
type Ranked struct {
	Application model.Application
	Score       *float64
}

// Rank упорядочивает заявки по убыванию приоритета, при равенстве — по времени подачи.
// Заявки с некорректными полями оказываются в конце списка без оценки.
func (e *Engine) Rank(apps []model.Application) []Ranked {
	res := make([]Ranked, 0, len(apps))
	for _, a := range apps {
		r := Ranked{Application: a}
		if s, err := e.ScorePriority(a); err == nil {
			r.Score = &s
		}
		res = append(res, r)
	}

	slices.SortStableFunc(res, func(a, b Ranked) int {
		switch {
		case a.Score == nil && b.Score == nil:
		case a.Score == nil:
			return 1
		case b.Score == nil:
			return -1
		case *a.Score != *b.Score:
			return cmp.Compare(*b.Score, *a.Score)
		}
		return a.Application.CreatedAt.Compare(b.Application.CreatedAt)
	})

	return res
}

// IsApplicationPeriodActive сообщает, попадает ли момент now в окно приёма заявок (границы включены).
func IsApplicationPeriodActive(now time.Time, window model.ApplicationPeriod) bool {
	return !now.Before(window.Start) && !now.After(window.End)
}
