package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

func TestVehicleRegisterNormalizesPlate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.vehicles.Register(ctx, model.RegisterVehicleRequest{Plate: "b 1234-xyz", Class: model.ClassCar, Color: " red "})
	require.NoError(t, err)
	assert.Equal(t, "B1234XYZ", v.Plate)
	assert.Equal(t, "red", v.Color)

	found, err := f.vehicles.FindByPlate(ctx, "B-1234 XYZ")
	require.NoError(t, err)
	assert.Equal(t, v.ID, found.ID)

	_, err = f.vehicles.Register(ctx, model.RegisterVehicleRequest{Plate: "B1234XYZ", Class: model.ClassMotorcycle})
	assert.ErrorIs(t, err, model.ErrDuplicatePlate)
}

func TestVehicleValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bad := "not-a-uuid"

	tests := []struct {
		name string
		req  model.RegisterVehicleRequest
	}{
		{"missing plate", model.RegisterVehicleRequest{Class: model.ClassCar}},
		{"separators only", model.RegisterVehicleRequest{Plate: " - ", Class: model.ClassCar}},
		{"unknown class", model.RegisterVehicleRequest{Plate: "A1", Class: "truck"}},
		{"owner is not a uuid", model.RegisterVehicleRequest{Plate: "A1", Class: model.ClassCar, OwnerID: &bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.vehicles.Register(ctx, tt.req)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}

	_, err := f.vehicles.FindByPlate(ctx, "")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = f.vehicles.FindByPlate(ctx, "ZZZ")
	assert.ErrorIs(t, err, model.ErrVehicleNotFound)
	_, err = f.vehicles.Get(ctx, 5)
	assert.ErrorIs(t, err, model.ErrVehicleNotFound)
}
