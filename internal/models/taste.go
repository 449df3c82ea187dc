// internal/models/taste.go
package models

// TasteTag is a cultural interest the user asserted, either typed by the
// client or extracted from free text.
type TasteTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Color string `json:"color,omitempty"`
}

// Taste categories used when grouping tags and when labelling matches.
const (
	TasteFoodBeverage    = "food_beverage"
	TasteVisualArts      = "visual_arts"
	TasteMusic           = "music"
	TasteGeneralCultural = "general_cultural"
)
