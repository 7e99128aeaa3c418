package v1

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// CurrentSchemaVersion is the envelope version emitted by K-Dom services.
const CurrentSchemaVersion = 1

var (
	ErrEnvelopeIDRequired   = errors.New("envelope event_id is required")
	ErrEnvelopeTypeRequired = errors.New("envelope event_type is required")
	ErrEnvelopeKeyRequired  = errors.New("envelope partition_key is required")
	ErrEnvelopeVersion      = errors.New("envelope schema_version is not supported")
)

// Envelope is the versioned event shape shared by the governance outbox,
// the notification stream and downstream consumers. Fields are append-only.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Validate rejects envelopes a consumer could not route or deduplicate.
func (e Envelope) Validate() error {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return ErrEnvelopeIDRequired
	case strings.TrimSpace(e.EventType) == "":
		return ErrEnvelopeTypeRequired
	case strings.TrimSpace(e.PartitionKey) == "":
		return ErrEnvelopeKeyRequired
	case e.SchemaVersion < 1 || e.SchemaVersion > CurrentSchemaVersion:
		return ErrEnvelopeVersion
	}
	return nil
}

// Attributes decodes Data as a flat string map. Governance events only
// carry string attributes; an empty payload yields an empty map.
func (e Envelope) Attributes() (map[string]string, error) {
	attributes := map[string]string{}
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return attributes, nil
	}
	if err := json.Unmarshal(e.Data, &attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}
