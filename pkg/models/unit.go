package models

// Unit is a piece on the map. It moves along paths found for it and acts as
// a viewer in its owner's fog of war.
type Unit struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	// Cell is the dense index of the hex the unit stands on.
	Cell int `json:"cell"`

	VisionRange int `json:"vision_range"`
	// Speed is the movement points per turn of open-world travel.
	Speed int `json:"speed"`
	// ActionPoints is the cost ceiling of one tactical move.
	ActionPoints int `json:"action_points"`
}
