package fleet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo/memory"
)

func TestVehicleInput_Normalize(t *testing.T) {
	f, err := VehicleInput{
		Plate:            " 5545-jkz ",
		DriverName:       "  Ana Ruiz ",
		VestColor:        "Naranja",
		ResponsibleName:  "   ",
		DriverPhone:      "+34 600-123-456",
		ResponsiblePhone: "",
	}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "5545-JKZ", f.Plate)
	assert.Equal(t, "Ana Ruiz", f.DriverName)
	assert.Equal(t, model.VestOrange, f.VestColor)
	assert.Nil(t, f.ResponsibleName)
	require.NotNil(t, f.DriverPhone)
	assert.Equal(t, "34600123456", *f.DriverPhone)
	assert.Nil(t, f.ResponsiblePhone)
}

func TestVehicleInput_DefaultVest(t *testing.T) {
	f, err := VehicleInput{Plate: "A1", DriverName: "B"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, model.VestGreen, f.VestColor)
}

func TestVehicleInput_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		in    VehicleInput
		field string
	}{
		{"empty plate", VehicleInput{Plate: "  ", DriverName: "Ana"}, "plate"},
		{"empty driver", VehicleInput{Plate: "A1", DriverName: ""}, "driver_name"},
		{"bad vest", VehicleInput{Plate: "A1", DriverName: "Ana", VestColor: "purple"}, "vest_color"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Normalize()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestRoster_CreateRejectsBeforeStoreCall(t *testing.T) {
	store := &countingRepo{VehicleRepo: memory.NewVehicleStore()}
	r := NewRoster(store, logging.Discard())

	_, err := r.Create(context.Background(), VehicleInput{Plate: "", DriverName: "Ana"})
	require.Error(t, err)
	_, err = r.Create(context.Background(), VehicleInput{Plate: "A1", DriverName: " "})
	require.Error(t, err)
	_, err = r.Update(context.Background(), 1, VehicleInput{Plate: "A1"})
	require.Error(t, err)

	assert.Zero(t, store.calls)
}

func TestRoster_CRUD(t *testing.T) {
	ctx := context.Background()
	r := NewRoster(memory.NewVehicleStore(), logging.Discard())

	v, err := r.Create(ctx, VehicleInput{Plate: "1234abc", DriverName: "Ana", VestColor: "red"})
	require.NoError(t, err)
	assert.Equal(t, "1234ABC", v.Plate)

	v, err = r.Update(ctx, v.ID, VehicleInput{Plate: "1234ABC", DriverName: "Luis", ResponsibleName: "Marta"})
	require.NoError(t, err)
	assert.Equal(t, "Luis", v.DriverName)
	assert.Equal(t, model.VestGreen, v.VestColor)

	list, err := r.List(ctx, "marta")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, r.Delete(ctx, v.ID))
	_, err = r.Get(ctx, v.ID)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
	assert.ErrorIs(t, r.Delete(ctx, v.ID), ErrVehicleNotFound)
	_, err = r.Update(ctx, v.ID, VehicleInput{Plate: "X", DriverName: "Y"})
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}
