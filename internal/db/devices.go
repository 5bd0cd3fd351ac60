package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/model"
)

const deviceColumns = `id, name, secret_hash, pairing_code, paired, permission, created_at, updated_at`

func (s *pgStore) CreateDevice(name, secretHash, pairingCode string) (model.Device, error) {
	var d model.Device
	const q = `
	INSERT INTO devices (name, secret_hash, pairing_code, paired, permission, created_at, updated_at)
	VALUES ($1, $2, $3, false, 'default', now(), now())
	RETURNING ` + deviceColumns + `;`
	if err := s.db.Get(&d, q, name, secretHash, pairingCode); err != nil {
		log.Error().Err(err).Msg("CreateDevice failed")
		return model.Device{}, err
	}
	return d, nil
}

func (s *pgStore) GetDeviceByID(id int) (*model.Device, error) {
	var d model.Device
	err := s.db.Get(&d, `SELECT `+deviceColumns+` FROM devices WHERE id = $1;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("device not found")
	}
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("GetDeviceByID failed")
		return nil, err
	}
	return &d, nil
}

func (s *pgStore) GetDeviceByPairingCode(code string) (*model.Device, error) {
	var d model.Device
	err := s.db.Get(&d, `SELECT `+deviceColumns+` FROM devices WHERE pairing_code = $1;`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("unknown pairing code")
	}
	if err != nil {
		log.Error().Err(err).Msg("GetDeviceByPairingCode failed")
		return nil, err
	}
	return &d, nil
}

func (s *pgStore) MarkDevicePaired(id int) error {
	_, err := s.db.Exec(`
	UPDATE devices SET paired = true, pairing_code = NULL, updated_at = now()
	WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("MarkDevicePaired failed")
	}
	return err
}

func (s *pgStore) SetDevicePermission(id int, state model.PermissionState) error {
	_, err := s.db.Exec(`
	UPDATE devices SET permission = $2, updated_at = now()
	WHERE id = $1;`, id, state)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("SetDevicePermission failed")
	}
	return err
}

func (s *pgStore) ListPairedDevices() ([]model.Device, error) {
	var out []model.Device
	err := s.db.Select(&out, `
	SELECT `+deviceColumns+` FROM devices WHERE paired = true ORDER BY id;`)
	if err != nil {
		log.Error().Err(err).Msg("ListPairedDevices failed")
		return nil, err
	}
	return out, nil
}
