// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

// Notifier receives occupancy changes after a check-in or check-out commits.
type Notifier interface {
	Publish(update model.OccupancyUpdate)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs the struct tags of a request DTO. The error wraps
// model.ErrValidation.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", model.ErrValidation, strings.Join(msgs, "; "))
}

// expected lists the errors callers are meant to branch on. They are passed
// through unwrapped so handlers can map them to a status.
var expected = []error{
	model.ErrVehicleAlreadyParked,
	model.ErrAreaFull,
	model.ErrAreaInactive,
	model.ErrNoTariffFound,
	model.ErrTransactionNotFound,
	model.ErrAlreadyCompleted,
	model.ErrInvalidBarcode,
	model.ErrAmbiguousTariff,
	model.ErrAreaNotFound,
	model.ErrVehicleNotFound,
	model.ErrTariffNotFound,
	model.ErrDuplicatePlate,
	model.ErrValidation,
}

func isExpected(err error) bool {
	for _, target := range expected {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// wrap adds op to unexpected errors and leaves domain outcomes as they are.
func wrap(op string, err error) error {
	if err == nil || isExpected(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
