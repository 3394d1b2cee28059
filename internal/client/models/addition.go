package models

import "time"

// AdditionType distinguishes offline-added buildings from elevators.
type AdditionType string

const (
	AdditionTypeBuilding AdditionType = "building"
	AdditionTypeElevator AdditionType = "elevator"
)

// CatalogAddition is a building or elevator entered while offline, pending
// promotion to a server-known entity. It lives only until the owning draft
// syncs successfully, at which point the server-assigned numeric id
// supersedes it and the record is deleted locally.
type CatalogAddition struct {
	// LocalID is the locally-generated identifier, also used as the
	// correlation client_id on the wire.
	LocalID string

	Type AdditionType

	// ClientID is the owning draft's client identifier.
	ClientID string

	// Building fields.
	Address  string
	Entrance string
	Notes    string

	// Elevator fields.
	Identifier  string
	Description string
	Status      string

	// BuildingLocalID links an elevator addition to the building addition
	// created in the same session, when the building itself is offline-added.
	BuildingLocalID string

	// BuildingID references a server-known building for an elevator addition
	// attached to an existing building.
	BuildingID *int64

	CreatedAt time.Time
}
