package model

// Location types.
const (
	LocationTypeFreezer = "freezer"
	LocationTypeFridge  = "fridge"
	LocationTypePantry  = "pantry"
)

// LocationTypes lists the allowed location types.
var LocationTypes = []string{LocationTypeFreezer, LocationTypeFridge, LocationTypePantry}
