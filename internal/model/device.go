package model

import "time"

// Device is a paired client (the installable app on a phone or tablet).
// Pairing follows the code-exchange flow: the device registers, receives
// a one-time pairing code, and trades it plus its secret for a JWT.
type Device struct {
	ID          int             `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	SecretHash  string          `db:"secret_hash" json:"-"`
	PairingCode *string         `db:"pairing_code" json:"-"`
	Paired      bool            `db:"paired" json:"paired"`
	Permission  PermissionState `db:"permission" json:"permission"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
