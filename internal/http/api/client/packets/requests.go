package packets

type RegisterDeviceRequest struct {
	Name   string `json:"name" binding:"required"`
	Secret string `json:"secret" binding:"required,min=8"`
}

type PairDeviceRequest struct {
	PairingCode string `json:"code" binding:"required"`
	Secret      string `json:"secret" binding:"required"`
}

// UpdatePreferencesRequest carries the full preferences snapshot; the
// stored document is replaced, never patched.
type UpdatePreferencesRequest struct {
	City                 string `json:"city" binding:"required"`
	UseManualDay         bool   `json:"use_manual_day"`
	ManualDay            int    `json:"manual_day" binding:"omitempty,min=1,max=30"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	NotificationSettings struct {
		Suhoor bool `json:"suhoor"`
		Iftar  bool `json:"iftar"`
		Daily  bool `json:"daily"`
	} `json:"notification_settings"`
}

type ReportPermissionRequest struct {
	State string `json:"state" binding:"required,oneof=granted denied default"`
}

type NotificationClickedRequest struct {
	Tag    string `json:"tag"`
	Action string `json:"action" binding:"required"`
}

type SetSoundRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}
