package model

import "errors"

// Lifecycle and catalog outcomes. All of them are expected, user-facing
// rejections; callers match them with errors.Is.
var (
	ErrVehicleAlreadyParked = errors.New("vehicle already has an ongoing transaction")
	ErrAreaFull             = errors.New("parking area is full")
	ErrAreaInactive         = errors.New("parking area is not active")
	ErrNoTariffFound        = errors.New("no applicable tariff")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrAlreadyCompleted     = errors.New("transaction already completed")
	ErrInvalidBarcode       = errors.New("invalid barcode")
	ErrAmbiguousTariff      = errors.New("tariff rule overlaps an active rule")
)

// Lookup and validation errors.
var (
	ErrAreaNotFound    = errors.New("parking area not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrTariffNotFound  = errors.New("tariff not found")
	ErrDuplicatePlate  = errors.New("plate already registered")
	ErrValidation      = errors.New("validation error")
)
