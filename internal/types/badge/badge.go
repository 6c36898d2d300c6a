package badge

import "quitPathAPI/internal/types/icon"

// Badge is a coarse achievement derived from a stats snapshot on every read.
// Badges are never stored; whether one shows is always recomputed, so the IDs
// must stay stable because clients key off them.
type Badge struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Icon        icon.Icon `json:"icon"`
}
