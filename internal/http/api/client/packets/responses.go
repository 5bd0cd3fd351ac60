package packets

// returned by device registration
type RegisterDeviceResponse struct {
	DeviceID    int    `json:"device_id"`
	PairingCode string `json:"pairing_code"`
}

type PairDeviceResponse struct {
	Token string `json:"token"`
}

type AudioResponse struct {
	URL string `json:"url"`
}
