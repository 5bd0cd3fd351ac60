// exposes a Store interface that is passed to the API and the workers
package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/teranga-labs/rappel/internal/model"
)

type Store interface {
	// preference document (full snapshot on every write)
	LoadPreferences() (model.Preferences, error)
	SavePreferences(p model.Preferences) error

	// trigger ledger document
	LoadTriggerLedger() (*model.TriggerLedgerDoc, error)
	SaveTriggerLedger(doc model.TriggerLedgerDoc) error

	// pending notification schedule, owned by the worker
	LoadSchedule() ([]model.ScheduledNotification, error)
	SaveSchedule(entries []model.ScheduledNotification) error

	// paired devices
	CreateDevice(name, secretHash, pairingCode string) (model.Device, error)
	GetDeviceByID(id int) (*model.Device, error)
	GetDeviceByPairingCode(code string) (*model.Device, error)
	MarkDevicePaired(id int) error
	SetDevicePermission(id int, state model.PermissionState) error
	ListPairedDevices() ([]model.Device, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}
