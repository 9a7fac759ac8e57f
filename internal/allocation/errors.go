package allocation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput возвращается при некорректных числовых полях заявки.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidStateTransition возвращается при попытке рассмотреть заявку не в статусе PENDING.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrNoEligibleHostel возвращается, если среди предпочтений нет подходящего общежития со свободными местами.
	ErrNoEligibleHostel = errors.New("cannot approve: no eligible hostel with availability")
	// ErrMissingFeeSettings возвращается, если не настроены тарифы оплаты.
	ErrMissingFeeSettings = errors.New("fee settings are not configured")
)

// Error уточняет одну из ошибок движка полем, на котором она возникла.
type Error struct {
	Kind  error
	Field string
	Msg   string
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func invalidField(field, msg string) error {
	return &Error{Kind: ErrInvalidInput, Field: field, Msg: msg}
}
