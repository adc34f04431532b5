package models

import "time"

// Category groups devices for the dashboard (e.g. "Office", "Lab bench").
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"` // hex, e.g. "#22c55e"
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
