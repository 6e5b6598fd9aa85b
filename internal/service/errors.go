package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Error kinds. Handlers map them to HTTP status with errors.Is; the message of
// the wrapping error is safe to show to the client.
var (
	ErrValidacion   = errors.New("validacion")
	ErrNoEncontrado = errors.New("no encontrado")
	ErrReglaNegocio = errors.New("regla de negocio")
)

type serviceError struct {
	kind error
	msg  string
}

func (e *serviceError) Error() string { return e.msg }
func (e *serviceError) Unwrap() error { return e.kind }

func errValidacion(format string, args ...interface{}) error {
	return &serviceError{kind: ErrValidacion, msg: fmt.Sprintf(format, args...)}
}

func errNoEncontrado(format string, args ...interface{}) error {
	return &serviceError{kind: ErrNoEncontrado, msg: fmt.Sprintf(format, args...)}
}

func errNegocio(format string, args ...interface{}) error {
	return &serviceError{kind: ErrReglaNegocio, msg: fmt.Sprintf(format, args...)}
}

// notFoundOr converts gorm.ErrRecordNotFound into a not-found error with msg.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errNoEncontrado("%s", msg)
	}
	return err
}

const fechaLayout = "2006-01-02"

// parseFecha reads a YYYY-MM-DD date and pins it to 12:00 UTC so the calendar
// day survives any client time zone.
func parseFecha(s string) (time.Time, error) {
	d, err := time.Parse(fechaLayout, s)
	if err != nil {
		return time.Time{}, errValidacion("Fecha invalida (usa YYYY-MM-DD)")
	}
	return d.Add(12 * time.Hour), nil
}
