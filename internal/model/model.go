// Package model defines the core domain types for the parking system.
package model

import (
	"strings"
	"time"
)

// VehicleClass is the pricing class of a vehicle.
type VehicleClass string

const (
	ClassMotorcycle VehicleClass = "motorcycle"
	ClassCar        VehicleClass = "car"
	ClassOther      VehicleClass = "other"
)

// Valid reports whether c is one of the known classes.
func (c VehicleClass) Valid() bool {
	switch c {
	case ClassMotorcycle, ClassCar, ClassOther:
		return true
	}
	return false
}

// RuleType is the shape of a tariff rule.
type RuleType string

const (
	RuleFlat        RuleType = "flat"
	RuleInterval    RuleType = "interval"
	RuleProgressive RuleType = "progressive"
)

// Valid reports whether t is one of the known rule shapes.
func (t RuleType) Valid() bool {
	switch t {
	case RuleFlat, RuleInterval, RuleProgressive:
		return true
	}
	return false
}

// Status is the lifecycle state of a parking transaction.
type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

// ParkingArea is an independently configured parking lot or zone.
type ParkingArea struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
	// DefaultRuleType is a UI hint only; pricing always goes through the tariff catalog.
	DefaultRuleType RuleType  `json:"default_rule_type,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// AreaStatus is a point-in-time occupancy view of an area.
type AreaStatus struct {
	Area      ParkingArea `json:"area"`
	Occupied  int         `json:"occupied"`
	Available int         `json:"available"`
}

// NewAreaStatus derives the available slot count from the occupancy.
func NewAreaStatus(area ParkingArea, occupied int) AreaStatus {
	available := area.Capacity - occupied
	if available < 0 {
		available = 0
	}
	return AreaStatus{Area: area, Occupied: occupied, Available: available}
}

// Vehicle is a registered vehicle. Plate is stored normalized.
type Vehicle struct {
	ID        int64        `json:"id"`
	Plate     string       `json:"plate"`
	Class     VehicleClass `json:"vehicle_class"`
	Color     string       `json:"color"`
	OwnerID   *string      `json:"owner_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// NormalizePlate upper-cases a plate and drops separators so that
// "b 1234-xyz" and "B1234XYZ" match.
func NormalizePlate(plate string) string {
	var b strings.Builder
	b.Grow(len(plate))
	for _, r := range strings.ToUpper(plate) {
		switch r {
		case ' ', '\t', '-', '.', '_', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ProgressiveStep prices every hour from HourIndex on, until a step with a
// higher HourIndex takes over.
type ProgressiveStep struct {
	HourIndex int   `json:"hour_index" validate:"gte=1"`
	Price     int64 `json:"price" validate:"gte=0"`
}

// TariffRule is a priced policy for one vehicle class in one area.
// All money amounts are integer minor currency units.
type TariffRule struct {
	ID                int64             `json:"id"`
	AreaID            int64             `json:"area_id"`
	VehicleClass      VehicleClass      `json:"vehicle_class"`
	RuleType          RuleType          `json:"rule_type"`
	BasePrice         int64             `json:"base_price"`
	ContinuationPrice *int64            `json:"continuation_price,omitempty"`
	IntervalMinutes   *int64            `json:"interval_minutes,omitempty"`
	ProgressiveSteps  []ProgressiveStep `json:"progressive_steps,omitempty"`
	DailyCap          *int64            `json:"daily_cap,omitempty"`
	ValidFrom         *TimeOfDay        `json:"valid_from,omitempty"`
	ValidTo           *TimeOfDay        `json:"valid_to,omitempty"`
	Active            bool              `json:"active"`
	CreatedAt         time.Time         `json:"created_at"`
}

// HasWindow reports whether the rule is restricted to a time-of-day window.
func (r *TariffRule) HasWindow() bool {
	return r.ValidFrom != nil && r.ValidTo != nil
}

// Transaction is one parking stay, from check-in to check-out.
type Transaction struct {
	ID              int64      `json:"id"`
	VehicleID       int64      `json:"vehicle_id"`
	AreaID          int64      `json:"area_id"`
	TariffID        int64      `json:"tariff_id"`
	ActorID         string     `json:"actor_id"`
	EntryTime       time.Time  `json:"entry_time"`
	ExitTime        *time.Time `json:"exit_time,omitempty"`
	DurationMinutes *int64     `json:"duration_minutes,omitempty"`
	TotalFee        *int64     `json:"total_fee,omitempty"`
	Status          Status     `json:"status"`
	Token           string     `json:"token"`
}

// IsOngoing returns true while the vehicle has not checked out.
func (t *Transaction) IsOngoing() bool {
	return t.Status == StatusOngoing
}

// CreateAreaRequest is the payload for creating a parking area.
type CreateAreaRequest struct {
	Name            string   `json:"name" validate:"required,max=120"`
	Location        string   `json:"location" validate:"max=255"`
	Capacity        int      `json:"capacity" validate:"gte=0"`
	DefaultRuleType RuleType `json:"default_rule_type" validate:"omitempty,oneof=flat interval progressive"`
	Active          *bool    `json:"active"`
}

// UpdateAreaRequest replaces the editable fields of an area.
type UpdateAreaRequest struct {
	Name            string   `json:"name" validate:"required,max=120"`
	Location        string   `json:"location" validate:"max=255"`
	Capacity        int      `json:"capacity" validate:"gte=0"`
	DefaultRuleType RuleType `json:"default_rule_type" validate:"omitempty,oneof=flat interval progressive"`
	Active          bool     `json:"active"`
}

// RegisterVehicleRequest is the payload for registering a vehicle.
type RegisterVehicleRequest struct {
	Plate   string       `json:"plate" validate:"required,max=20"`
	Class   VehicleClass `json:"vehicle_class" validate:"required,oneof=motorcycle car other"`
	Color   string       `json:"color" validate:"max=40"`
	OwnerID *string      `json:"owner_id" validate:"omitempty,uuid"`
}

// CreateTariffRequest is the payload for adding a rule to an area's catalog.
type CreateTariffRequest struct {
	VehicleClass      VehicleClass      `json:"vehicle_class" validate:"required,oneof=motorcycle car other"`
	RuleType          RuleType          `json:"rule_type" validate:"required,oneof=flat interval progressive"`
	BasePrice         int64             `json:"base_price" validate:"gte=0"`
	ContinuationPrice *int64            `json:"continuation_price" validate:"omitempty,gte=0"`
	IntervalMinutes   *int64            `json:"interval_minutes" validate:"omitempty,gt=0"`
	ProgressiveSteps  []ProgressiveStep `json:"progressive_steps" validate:"omitempty,dive"`
	DailyCap          *int64            `json:"daily_cap" validate:"omitempty,gte=0"`
	ValidFrom         *TimeOfDay        `json:"valid_from"`
	ValidTo           *TimeOfDay        `json:"valid_to"`
	Active            *bool             `json:"active"`
}

// UpdateTariffRequest toggles the active flag of a rule.
type UpdateTariffRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CheckInRequest is the payload for admitting a vehicle into an area.
type CheckInRequest struct {
	VehicleID int64 `json:"vehicle_id" validate:"required,gt=0"`
}

// CheckOutRequest is the payload for closing a transaction by id.
type CheckOutRequest struct {
	TransactionID int64 `json:"transaction_id" validate:"required,gt=0"`
}

// ScanRequest carries a scanned receipt barcode.
type ScanRequest struct {
	Barcode string `json:"barcode" validate:"required"`
}

// BarcodeResponse is the printable payload for an entry receipt.
type BarcodeResponse struct {
	TransactionID int64  `json:"transaction_id"`
	Payload       string `json:"payload"`
}

// QuoteResponse is a fee preview for a rule and a stay length.
type QuoteResponse struct {
	TariffID        int64 `json:"tariff_id"`
	DurationMinutes int64 `json:"duration_minutes"`
	Fee             int64 `json:"fee"`
}

// OccupancyUpdate is pushed to feed subscribers after check-in and check-out.
type OccupancyUpdate struct {
	AreaID    int64 `json:"area_id"`
	Occupied  int   `json:"occupied"`
	Capacity  int   `json:"capacity"`
	Available int   `json:"available"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
