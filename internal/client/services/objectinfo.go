package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
	"github.com/dmitrijs2005/liftaudit/internal/client/store"
	"github.com/dmitrijs2005/liftaudit/internal/common"
	"github.com/google/uuid"
)

var (
	ErrUnknownField    = errors.New("unknown object-info field")
	ErrNoBuilding      = errors.New("no building selected")
	ErrUnknownElevator = errors.New("elevator not found in catalog")
)

// ObjectInfoForm edits a draft's object metadata: the building/elevator
// reference (either a catalog pick or a manual offline addition, never both)
// and the dynamic typed field values.
type ObjectInfoForm struct {
	clientID string
	st       *store.Store

	fields []models.ObjectInfoField
	byCode map[string]models.ObjectInfoField
	values map[string]any

	buildingID       *int64
	elevatorID       *int64
	manualBuilding   *models.CatalogAddition
	manualElevator   *models.CatalogAddition
	plannedDate      string
	now              func() time.Time
	persistedManuals bool
}

// NewObjectInfoForm loads field definitions from the catalog cache and the
// draft's current values from the store.
func NewObjectInfoForm(ctx context.Context, st *store.Store, clientID string) (*ObjectInfoForm, error) {
	fields, err := st.Catalog.ListFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading field definitions: %w", err)
	}

	f := &ObjectInfoForm{
		clientID: clientID,
		st:       st,
		fields:   fields,
		byCode:   make(map[string]models.ObjectInfoField, len(fields)),
		values:   make(map[string]any),
		now:      time.Now,
	}
	for _, fd := range fields {
		f.byCode[fd.Code] = fd
	}

	draft, err := st.Drafts.GetByClientID(ctx, clientID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("loading draft %s: %w", clientID, err)
	}
	if draft != nil {
		f.buildingID = draft.BuildingID
		f.elevatorID = draft.ElevatorID
		f.plannedDate = draft.PlannedDate
		for code, v := range draft.ObjectInfo {
			f.values[code] = v
		}
	}

	additions, err := st.Additions.ListByDraft(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("loading additions for %s: %w", clientID, err)
	}
	for i := range additions {
		a := additions[i]
		switch a.Type {
		case models.AdditionTypeBuilding:
			if f.manualBuilding == nil {
				f.manualBuilding = &a
			}
		case models.AdditionTypeElevator:
			if f.manualElevator == nil {
				f.manualElevator = &a
			}
		}
	}
	if f.manualBuilding != nil || f.manualElevator != nil {
		f.persistedManuals = true
	}

	return f, nil
}

// Fields returns the definitions in display order.
func (f *ObjectInfoForm) Fields() []models.ObjectInfoField {
	return f.fields
}

// Value returns the current typed value for a field code, nil when unset.
func (f *ObjectInfoForm) Value(code string) any {
	return f.values[code]
}

// SelectBuilding picks a catalog building, discarding any manual building
// (and a manual elevator chained to it).
func (f *ObjectInfoForm) SelectBuilding(id int64) {
	f.buildingID = &id
	if f.manualBuilding != nil {
		f.manualBuilding = nil
		if f.manualElevator != nil && f.manualElevator.BuildingLocalID != "" {
			f.manualElevator = nil
		}
	}
	f.elevatorID = nil
}

// AddManualBuilding records an offline building addition, discarding any
// catalog building selection.
func (f *ObjectInfoForm) AddManualBuilding(address, entrance, notes string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("%w: building address must not be empty", common.ErrValidation)
	}
	f.manualBuilding = &models.CatalogAddition{
		LocalID:   uuid.NewString(),
		Type:      models.AdditionTypeBuilding,
		ClientID:  f.clientID,
		Address:   address,
		Entrance:  strings.TrimSpace(entrance),
		Notes:     strings.TrimSpace(notes),
		CreatedAt: f.now().UTC(),
	}
	f.buildingID = nil
	f.elevatorID = nil
	return nil
}

// SelectElevator picks a catalog elevator. It must belong to the selected
// catalog building; a manual elevator selection is discarded.
func (f *ObjectInfoForm) SelectElevator(ctx context.Context, id int64) error {
	el, err := f.st.Catalog.GetElevator(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrUnknownElevator, id)
		}
		return err
	}
	if f.buildingID == nil || *f.buildingID != el.BuildingID {
		return fmt.Errorf("%w: elevator %d belongs to building %d", common.ErrValidation, id, el.BuildingID)
	}
	f.elevatorID = &id
	f.manualElevator = nil
	return nil
}

// AddManualElevator records an offline elevator addition tied to the current
// building reference (catalog or manual). A catalog elevator selection is
// discarded.
func (f *ObjectInfoForm) AddManualElevator(identifier, description, status string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return fmt.Errorf("%w: elevator identifier must not be empty", common.ErrValidation)
	}
	if f.buildingID == nil && f.manualBuilding == nil {
		return ErrNoBuilding
	}

	add := &models.CatalogAddition{
		LocalID:     uuid.NewString(),
		Type:        models.AdditionTypeElevator,
		ClientID:    f.clientID,
		Identifier:  identifier,
		Description: strings.TrimSpace(description),
		Status:      strings.TrimSpace(status),
		CreatedAt:   f.now().UTC(),
	}
	if f.manualBuilding != nil {
		add.BuildingLocalID = f.manualBuilding.LocalID
	} else {
		add.BuildingID = f.buildingID
	}
	f.manualElevator = add
	f.elevatorID = nil
	return nil
}

// SetPlannedDate stores the planned inspection date (YYYY-MM-DD, empty
// clears it).
func (f *ObjectInfoForm) SetPlannedDate(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		f.plannedDate = ""
		return nil
	}
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return fmt.Errorf("%w: planned date %q is not YYYY-MM-DD", common.ErrValidation, raw)
	}
	f.plannedDate = raw
	return nil
}

// SetField parses raw input according to the field's declared type and
// stores the typed value. An empty string clears the field; boolean fields
// are tri-state (unset, true, false).
func (f *ObjectInfoForm) SetField(code, raw string) error {
	fd, ok := f.byCode[code]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, code)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		delete(f.values, code)
		return nil
	}

	switch fd.FieldType {
	case models.FieldTypeBoolean:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false, got %q", common.ErrValidation, fd.Label, raw)
		}
		f.values[code] = v
	case models.FieldTypeNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number, got %q", common.ErrValidation, fd.Label, raw)
		}
		f.values[code] = v
	case models.FieldTypeDate:
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return fmt.Errorf("%w: %s expects YYYY-MM-DD, got %q", common.ErrValidation, fd.Label, raw)
		}
		f.values[code] = raw
	case models.FieldTypeChoice:
		if !choiceAllowed(fd.Choices, raw) {
			return fmt.Errorf("%w: %s must be one of %s", common.ErrValidation, fd.Label, strings.Join(fd.Choices, ", "))
		}
		f.values[code] = raw
	default:
		f.values[code] = raw
	}
	return nil
}

func choiceAllowed(choices []string, v string) bool {
	for _, c := range choices {
		if c == v {
			return true
		}
	}
	return false
}

// Validate checks required fields and the elevator reference.
func (f *ObjectInfoForm) Validate() error {
	if f.elevatorID == nil && f.manualElevator == nil {
		return fmt.Errorf("%w: an elevator must be selected or added", common.ErrValidation)
	}
	var missing []string
	for _, fd := range f.fields {
		if !fd.IsRequired {
			continue
		}
		if _, ok := f.values[fd.Code]; !ok {
			missing = append(missing, fd.Label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required fields missing: %s", common.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Save validates and persists the form into the draft, creating addition
// rows for manual entries. Manual additions are written once; editing after
// a save replaces the draft's addition set.
func (f *ObjectInfoForm) Save(ctx context.Context) error {
	if err := f.Validate(); err != nil {
		return err
	}

	draft, err := f.st.Drafts.GetByClientID(ctx, f.clientID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("loading draft %s: %w", f.clientID, err)
		}
		now := f.now().UTC()
		draft = &models.Draft{
			ClientID:  f.clientID,
			Status:    models.DraftStatusDraft,
			SyncState: models.SyncStatePending,
			CreatedAt: now,
		}
	}

	draft.BuildingID = f.buildingID
	draft.ElevatorID = f.elevatorID
	draft.PlannedDate = f.plannedDate
	draft.ObjectInfo = make(map[string]any, len(f.values))
	for code, v := range f.values {
		draft.ObjectInfo[code] = v
	}
	draft.UpdatedAt = f.now().UTC()

	if err := f.st.Drafts.CreateOrUpdate(ctx, draft); err != nil {
		return fmt.Errorf("saving draft %s: %w", f.clientID, err)
	}

	if f.persistedManuals {
		if err := f.st.Additions.DeleteByDraft(ctx, f.clientID); err != nil {
			return fmt.Errorf("replacing additions for %s: %w", f.clientID, err)
		}
		f.persistedManuals = false
	}
	for _, add := range []*models.CatalogAddition{f.manualBuilding, f.manualElevator} {
		if add == nil {
			continue
		}
		if err := f.st.Additions.Create(ctx, add); err != nil {
			return fmt.Errorf("saving addition %s: %w", add.LocalID, err)
		}
		f.persistedManuals = true
	}
	return nil
}
