package db

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/model"
)

// Fixed keys in the documents table. Each document is one JSON blob,
// always re-serialized as a complete snapshot by its single writer.
const (
	docPreferences = "preferences"
	docLedger      = "trigger-ledger"
	docSchedule    = "pending-schedule"
)

func (s *pgStore) loadDocument(key string, out any) (bool, error) {
	var body []byte
	err := s.db.Get(&body, `SELECT body FROM documents WHERE key = $1;`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("loadDocument failed")
		return false, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		// corrupt persisted state: treat as absent, never propagate
		log.Error().Err(err).Str("key", key).Msg("corrupt document, falling back to defaults")
		return false, nil
	}
	return true, nil
}

func (s *pgStore) saveDocument(key string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
	INSERT INTO documents (key, body, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now();`,
		key, body)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("saveDocument failed")
	}
	return err
}

func (s *pgStore) LoadPreferences() (model.Preferences, error) {
	prefs := model.DefaultPreferences()
	ok, err := s.loadDocument(docPreferences, &prefs)
	if err != nil {
		return model.DefaultPreferences(), err
	}
	if !ok {
		return model.DefaultPreferences(), nil
	}
	return prefs.WithDefaults(), nil
}

func (s *pgStore) SavePreferences(p model.Preferences) error {
	return s.saveDocument(docPreferences, p)
}

func (s *pgStore) LoadTriggerLedger() (*model.TriggerLedgerDoc, error) {
	var doc model.TriggerLedgerDoc
	ok, err := s.loadDocument(docLedger, &doc)
	if err != nil || !ok {
		return nil, err
	}
	return &doc, nil
}

func (s *pgStore) SaveTriggerLedger(doc model.TriggerLedgerDoc) error {
	return s.saveDocument(docLedger, doc)
}

func (s *pgStore) LoadSchedule() ([]model.ScheduledNotification, error) {
	var entries []model.ScheduledNotification
	ok, err := s.loadDocument(docSchedule, &entries)
	if err != nil || !ok {
		return nil, err
	}
	return entries, nil
}

func (s *pgStore) SaveSchedule(entries []model.ScheduledNotification) error {
	if entries == nil {
		entries = []model.ScheduledNotification{}
	}
	return s.saveDocument(docSchedule, entries)
}
