package models

// Building is a catalog snapshot record, read-mostly reference data.
type Building struct {
	ID           int64  `json:"id"`
	Address      string `json:"address"`
	Entrance     string `json:"entrance"`
	Notes        string `json:"notes"`
	Label        string `json:"label"`
	ReviewStatus string `json:"review_status"`
}

// Elevator always carries a building reference; the UI never lists elevators
// for an unselected building.
type Elevator struct {
	ID            int64  `json:"id"`
	BuildingID    int64  `json:"building_id"`
	Identifier    string `json:"identifier"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	Label         string `json:"label"`
	BuildingLabel string `json:"building_label"`
	ReviewStatus  string `json:"review_status"`
}

// FieldType enumerates object-info field kinds.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeChoice  FieldType = "choice"
)

// ObjectInfoField is a dynamic object-info field definition.
type ObjectInfoField struct {
	Code       string    `json:"code"`
	Label      string    `json:"label"`
	FieldType  FieldType `json:"field_type"`
	IsRequired bool      `json:"is_required"`
	Order      int       `json:"order"`
	Choices    []string  `json:"choices"`
}

// Snapshot is the catalog snapshot payload served by the backend.
type Snapshot struct {
	GeneratedAt  string            `json:"generated_at"`
	Buildings    []Building        `json:"buildings"`
	Elevators    []Elevator        `json:"elevators"`
	ObjectFields []ObjectInfoField `json:"object_fields"`
}
