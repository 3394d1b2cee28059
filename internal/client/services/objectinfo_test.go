package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectInfo_TypedFieldParsing(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Catalog.ReplaceAll(ctx, testSnapshot()))

	f, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)

	require.NoError(t, f.SetField("manufacturer", "KONE"))
	assert.Equal(t, "KONE", f.Value("manufacturer"))

	require.NoError(t, f.SetField("floors", "9"))
	assert.Equal(t, float64(9), f.Value("floors"))
	assert.ErrorIs(t, f.SetField("floors", "many"), common.ErrValidation)

	require.NoError(t, f.SetField("inspected", "true"))
	assert.Equal(t, true, f.Value("inspected"))
	require.NoError(t, f.SetField("inspected", "false"))
	assert.Equal(t, false, f.Value("inspected"))
	require.NoError(t, f.SetField("inspected", ""))
	assert.Nil(t, f.Value("inspected"), "boolean fields are tri-state")

	require.NoError(t, f.SetField("install_date", "2019-05-01"))
	assert.ErrorIs(t, f.SetField("install_date", "01.05.2019"), common.ErrValidation)

	require.NoError(t, f.SetField("drive", "traction"))
	assert.ErrorIs(t, f.SetField("drive", "steam"), common.ErrValidation)

	assert.ErrorIs(t, f.SetField("serial", "x"), ErrUnknownField)
}

func TestObjectInfo_RequiredValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Catalog.ReplaceAll(ctx, testSnapshot()))

	f, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)

	f.SelectBuilding(1)
	require.NoError(t, f.SelectElevator(ctx, 11))

	err = f.Validate()
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "Manufacturer")

	require.NoError(t, f.SetField("manufacturer", "Otis"))
	assert.NoError(t, f.Validate())
}

func TestObjectInfo_ElevatorMustMatchBuilding(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Catalog.ReplaceAll(ctx, testSnapshot()))

	f, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)

	f.SelectBuilding(1)
	assert.ErrorIs(t, f.SelectElevator(ctx, 12), common.ErrValidation, "elevator 12 belongs to building 2")
	assert.ErrorIs(t, f.SelectElevator(ctx, 999), ErrUnknownElevator)
	assert.NoError(t, f.SelectElevator(ctx, 11))
}

func TestObjectInfo_ManualExcludesCatalogSelection(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Catalog.ReplaceAll(ctx, testSnapshot()))

	f, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)

	f.SelectBuilding(1)
	require.NoError(t, f.SelectElevator(ctx, 11))

	// Entering a manual building clears both catalog picks.
	require.NoError(t, f.AddManualBuilding("Jauna iela 3", "2", ""))
	require.NoError(t, f.AddManualElevator("L-7", "freight", ""))
	require.NoError(t, f.SetField("manufacturer", "Schindler"))
	require.NoError(t, f.Save(ctx))

	d, err := st.Drafts.GetByClientID(ctx, "draft-1")
	require.NoError(t, err)
	assert.Nil(t, d.BuildingID)
	assert.Nil(t, d.ElevatorID)

	adds, err := st.Additions.ListByDraft(ctx, "draft-1")
	require.NoError(t, err)
	require.Len(t, adds, 2)

	var building, elevator *models.CatalogAddition
	for i := range adds {
		switch adds[i].Type {
		case models.AdditionTypeBuilding:
			building = &adds[i]
		case models.AdditionTypeElevator:
			elevator = &adds[i]
		}
	}
	require.NotNil(t, building)
	require.NotNil(t, elevator)
	assert.Equal(t, "Jauna iela 3", building.Address)
	assert.Equal(t, building.LocalID, elevator.BuildingLocalID, "manual elevator chains to the manual building")
	assert.Nil(t, elevator.BuildingID)
}

func TestObjectInfo_CatalogSelectionReplacesManual(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Catalog.ReplaceAll(ctx, testSnapshot()))

	f, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)

	require.NoError(t, f.AddManualBuilding("Jauna iela 3", "", ""))
	require.NoError(t, f.AddManualElevator("L-7", "", ""))
	require.NoError(t, f.SetField("manufacturer", "Schindler"))
	require.NoError(t, f.Save(ctx))

	// Switching back to a catalog pick discards the manual records on the
	// next save.
	f.SelectBuilding(1)
	require.NoError(t, f.SelectElevator(ctx, 11))
	require.NoError(t, f.Save(ctx))

	adds, err := st.Additions.ListByDraft(ctx, "draft-1")
	require.NoError(t, err)
	assert.Empty(t, adds)

	d, err := st.Drafts.GetByClientID(ctx, "draft-1")
	require.NoError(t, err)
	require.NotNil(t, d.ElevatorID)
	assert.Equal(t, int64(11), *d.ElevatorID)
}

func TestObjectInfo_ManualElevatorNeedsBuilding(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Catalog.ReplaceAll(ctx, testSnapshot()))

	f, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)

	assert.ErrorIs(t, f.AddManualElevator("L-7", "", ""), ErrNoBuilding)
}

func TestObjectInfo_SaveRequiresElevator(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Catalog.ReplaceAll(ctx, testSnapshot()))

	f, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)
	require.NoError(t, f.SetField("manufacturer", "Otis"))

	assert.ErrorIs(t, f.Save(ctx), common.ErrValidation)
}

func TestObjectInfo_ReloadsPersistedState(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Catalog.ReplaceAll(ctx, testSnapshot()))

	f, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)
	f.SelectBuilding(1)
	require.NoError(t, f.SelectElevator(ctx, 11))
	require.NoError(t, f.SetField("manufacturer", "Otis"))
	require.NoError(t, f.SetPlannedDate("2026-09-15"))
	require.NoError(t, f.Save(ctx))

	f2, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)
	assert.Equal(t, "Otis", f2.Value("manufacturer"))
	assert.NoError(t, f2.Validate())
}

func TestObjectInfo_PlannedDateValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Catalog.ReplaceAll(ctx, testSnapshot()))

	f, err := NewObjectInfoForm(ctx, st, "draft-1")
	require.NoError(t, err)

	require.NoError(t, f.SetPlannedDate("2026-09-15"))
	require.NoError(t, f.SetPlannedDate(""))
	assert.ErrorIs(t, f.SetPlannedDate("15/09/2026"), common.ErrValidation)
}
