package model

// TriggerLedgerSchemaVersion guards the persisted ledger document.
// Bump it when the triggering logic changes shape; a mismatch on load
// wipes the old document instead of misreading it.
const TriggerLedgerSchemaVersion = "v2"

// TriggerLedgerDoc records which (prayer, day) alerts already fired.
// Entries for past days are pruned opportunistically on load and at
// day rollover.
type TriggerLedgerDoc struct {
	SchemaVersion string   `json:"schema_version"`
	Day           string   `json:"day"` // calendar day, YYYY-MM-DD
	TriggeredKeys []string `json:"triggered_keys"`
}
