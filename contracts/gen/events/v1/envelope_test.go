package v1

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEnvelopeValidate(t *testing.T) {
	valid := Envelope{EventID: "evt-1", EventType: "kdom.item.created", PartitionKey: "item-1", SchemaVersion: CurrentSchemaVersion}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid envelope, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Envelope)
		want   error
	}{
		{"missing id", func(e *Envelope) { e.EventID = " " }, ErrEnvelopeIDRequired},
		{"missing type", func(e *Envelope) { e.EventType = "" }, ErrEnvelopeTypeRequired},
		{"missing key", func(e *Envelope) { e.PartitionKey = "" }, ErrEnvelopeKeyRequired},
		{"future version", func(e *Envelope) { e.SchemaVersion = CurrentSchemaVersion + 1 }, ErrEnvelopeVersion},
		{"zero version", func(e *Envelope) { e.SchemaVersion = 0 }, ErrEnvelopeVersion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			envelope := valid
			tc.mutate(&envelope)
			if err := envelope.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestEnvelopeAttributes(t *testing.T) {
	raw, _ := json.Marshal(map[string]string{"actor_id": "7", "title": "Graph Theory"})
	attributes, err := Envelope{Data: raw}.Attributes()
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	if attributes["actor_id"] != "7" || attributes["title"] != "Graph Theory" {
		t.Fatalf("unexpected attributes %v", attributes)
	}

	empty, err := Envelope{}.Attributes()
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty attributes, got %v %v", empty, err)
	}
	if _, err := (Envelope{Data: json.RawMessage(`[1,2]`)}).Attributes(); err == nil {
		t.Fatalf("expected decode error for non-object payload")
	}
}
