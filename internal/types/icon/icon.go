package icon

import "fmt"

// Icon is the closed set of icons the catalog may reference. Catalog data
// carrying a name outside this set is rejected at load time instead of
// silently rendering a default.
type Icon string

const (
	IconDefault     Icon = "default"
	IconCigarette   Icon = "cigarette"
	IconLungs       Icon = "lungs"
	IconHeart       Icon = "heart"
	IconBrain       Icon = "brain"
	IconTrophy      Icon = "trophy"
	IconMedal       Icon = "medal"
	IconStar        Icon = "star"
	IconCalendar    Icon = "calendar"
	IconLeaf        Icon = "leaf"
	IconShield      Icon = "shield"
	IconFlame       Icon = "flame"
	IconDrop        Icon = "drop"
	IconScale       Icon = "scale"
	IconStethoscope Icon = "stethoscope"
)

var known = map[Icon]bool{
	IconDefault:     true,
	IconCigarette:   true,
	IconLungs:       true,
	IconHeart:       true,
	IconBrain:       true,
	IconTrophy:      true,
	IconMedal:       true,
	IconStar:        true,
	IconCalendar:    true,
	IconLeaf:        true,
	IconShield:      true,
	IconFlame:       true,
	IconDrop:        true,
	IconScale:       true,
	IconStethoscope: true,
}

// Parse resolves a catalog icon name. Unknown names are an error so bad
// catalog files fail at load time.
func Parse(name string) (Icon, error) {
	ic := Icon(name)
	if !known[ic] {
		return IconDefault, fmt.Errorf("unknown icon %q", name)
	}
	return ic, nil
}
