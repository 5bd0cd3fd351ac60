package db

import (
	"errors"
	"sync"
	"time"

	"github.com/teranga-labs/rappel/internal/model"
)

// memoryStore is an in-memory Store used by tests and by local runs
// without a database.
type memoryStore struct {
	mu          sync.Mutex
	preferences *model.Preferences
	ledger      *model.TriggerLedgerDoc
	schedule    []model.ScheduledNotification
	devices     map[int]model.Device
	nextID      int
}

var _ Store = (*memoryStore)(nil)

func NewMemoryStore() Store {
	return &memoryStore{devices: map[int]model.Device{}, nextID: 1}
}

func (m *memoryStore) LoadPreferences() (model.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.preferences == nil {
		return model.DefaultPreferences(), nil
	}
	return m.preferences.WithDefaults(), nil
}

func (m *memoryStore) SavePreferences(p model.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.preferences = &cp
	return nil
}

func (m *memoryStore) LoadTriggerLedger() (*model.TriggerLedgerDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ledger == nil {
		return nil, nil
	}
	cp := *m.ledger
	cp.TriggeredKeys = append([]string(nil), m.ledger.TriggeredKeys...)
	return &cp, nil
}

func (m *memoryStore) SaveTriggerLedger(doc model.TriggerLedgerDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := doc
	cp.TriggeredKeys = append([]string(nil), doc.TriggeredKeys...)
	m.ledger = &cp
	return nil
}

func (m *memoryStore) LoadSchedule() ([]model.ScheduledNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ScheduledNotification(nil), m.schedule...), nil
}

func (m *memoryStore) SaveSchedule(entries []model.ScheduledNotification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule = append([]model.ScheduledNotification(nil), entries...)
	return nil
}

func (m *memoryStore) CreateDevice(name, secretHash, pairingCode string) (model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	code := pairingCode
	d := model.Device{
		ID:          m.nextID,
		Name:        name,
		SecretHash:  secretHash,
		PairingCode: &code,
		Permission:  model.PermissionDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.devices[d.ID] = d
	m.nextID++
	return d, nil
}

func (m *memoryStore) GetDeviceByID(id int) (*model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[id]
	if !ok {
		return nil, errors.New("device not found")
	}
	cp := d
	return &cp, nil
}

func (m *memoryStore) GetDeviceByPairingCode(code string) (*model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.devices {
		if d.PairingCode != nil && *d.PairingCode == code {
			cp := d
			return &cp, nil
		}
	}
	return nil, errors.New("unknown pairing code")
}

func (m *memoryStore) MarkDevicePaired(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[id]
	if !ok {
		return errors.New("device not found")
	}
	d.Paired = true
	d.PairingCode = nil
	d.UpdatedAt = time.Now()
	m.devices[id] = d
	return nil
}

func (m *memoryStore) SetDevicePermission(id int, state model.PermissionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[id]
	if !ok {
		return errors.New("device not found")
	}
	d.Permission = state
	d.UpdatedAt = time.Now()
	m.devices[id] = d
	return nil
}

func (m *memoryStore) ListPairedDevices() ([]model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Device
	for i := 1; i < m.nextID; i++ {
		if d, ok := m.devices[i]; ok && d.Paired {
			out = append(out, d)
		}
	}
	return out, nil
}
