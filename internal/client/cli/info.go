package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/liftaudit/internal/client/services"
)

// Info runs the interactive object-info editor for the open draft: building
// and elevator selection (catalog pick or manual addition), planned date and
// the dynamic typed fields.
func (a *App) Info(ctx context.Context) error {
	if !a.hasDraft() {
		return errNoOpenDraft
	}

	f, err := services.NewObjectInfoForm(ctx, a.st, a.draftID)
	if err != nil {
		return err
	}

	if err := a.pickBuilding(ctx, f); err != nil {
		return err
	}
	if err := a.pickElevator(ctx, f); err != nil {
		return err
	}

	date, err := GetSimpleText(a.reader, "Planned date (YYYY-MM-DD, empty to skip)", os.Stdout)
	if err != nil {
		return err
	}
	if err := f.SetPlannedDate(date); err != nil {
		printlnFn(err.Error())
	}

	for _, fd := range f.Fields() {
		prompt := fd.Label
		if fd.IsRequired {
			prompt += " (required)"
		}
		if cur := f.Value(fd.Code); cur != nil {
			prompt += fmt.Sprintf(" [current: %v]", cur)
		}
		raw, err := GetSimpleText(a.reader, prompt, os.Stdout)
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		if err := f.SetField(fd.Code, raw); err != nil {
			printlnFn(err.Error())
		}
	}

	if err := f.Save(ctx); err != nil {
		return err
	}
	printlnFn("Object info saved.")
	return nil
}

func (a *App) pickBuilding(ctx context.Context, f *services.ObjectInfoForm) error {
	buildings, err := a.st.Catalog.ListBuildings(ctx)
	if err != nil {
		return err
	}
	for _, b := range buildings {
		printlnFn(fmt.Sprintf("  %d: %s", b.ID, b.Label))
	}

	choice, err := GetSimpleText(a.reader, "Building id ('new' to add one, empty to keep current)", os.Stdout)
	if err != nil {
		return err
	}
	switch choice {
	case "":
		return nil
	case "new":
		address, err := GetSimpleText(a.reader, "Address", os.Stdout)
		if err != nil {
			return err
		}
		entrance, err := GetSimpleText(a.reader, "Entrance (optional)", os.Stdout)
		if err != nil {
			return err
		}
		notes, err := GetSimpleText(a.reader, "Notes (optional)", os.Stdout)
		if err != nil {
			return err
		}
		return f.AddManualBuilding(address, entrance, notes)
	default:
		id, err := strconv.ParseInt(choice, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid building id %q", choice)
		}
		f.SelectBuilding(id)
		elevators, err := a.st.Catalog.ListElevatorsByBuilding(ctx, id)
		if err != nil {
			return err
		}
		for _, el := range elevators {
			printlnFn(fmt.Sprintf("  %d: %s", el.ID, el.Label))
		}
		return nil
	}
}

func (a *App) pickElevator(ctx context.Context, f *services.ObjectInfoForm) error {
	choice, err := GetSimpleText(a.reader, "Elevator id ('new' to add one, empty to keep current)", os.Stdout)
	if err != nil {
		return err
	}
	switch choice {
	case "":
		return nil
	case "new":
		identifier, err := GetSimpleText(a.reader, "Identifier", os.Stdout)
		if err != nil {
			return err
		}
		description, err := GetSimpleText(a.reader, "Description (optional)", os.Stdout)
		if err != nil {
			return err
		}
		return f.AddManualElevator(identifier, description, "")
	default:
		id, err := strconv.ParseInt(choice, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid elevator id %q", choice)
		}
		return f.SelectElevator(ctx, id)
	}
}
