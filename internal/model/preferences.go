package model

// Defaults mirror the companion app: Dakar, Umm Al-Qura method,
// notifications off until the user opts in.
const (
	DefaultCity   = "Dakar"
	DefaultMethod = 4 // Umm Al-Qura, recommended for Senegal
)

type NotificationSettings struct {
	Suhoor bool `json:"suhoor"`
	Iftar  bool `json:"iftar"`
	Daily  bool `json:"daily"`
}

// Preferences is the single user-preferences document. It is always
// written as a full snapshot; missing keys are filled with defaults
// on load.
type Preferences struct {
	City                 string               `json:"city"`
	UseManualDay         bool                 `json:"use_manual_day"`
	ManualDay            int                  `json:"manual_day"`
	NotificationsEnabled bool                 `json:"notifications_enabled"`
	NotificationSettings NotificationSettings `json:"notification_settings"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		City:                 DefaultCity,
		UseManualDay:         false,
		ManualDay:            1,
		NotificationsEnabled: false,
		NotificationSettings: NotificationSettings{
			Suhoor: true,
			Iftar:  true,
			Daily:  true,
		},
	}
}

// WithDefaults fills zero-valued fields that can only be zero when the
// stored document predates them.
func (p Preferences) WithDefaults() Preferences {
	if p.City == "" {
		p.City = DefaultCity
	}
	if p.ManualDay < 1 {
		p.ManualDay = 1
	}
	if p.ManualDay > 30 {
		p.ManualDay = 30
	}
	return p
}
