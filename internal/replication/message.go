package replication

import "encoding/json"

// Target names who a replication message is meant for.
type Target string

const (
	// ToAuthority routes a replica-side change to the authoritative
	// instance.
	ToAuthority Target = "authority"

	// ToAllReplicas routes an authoritative change to every replica.
	ToAllReplicas Target = "replicas"
)

// Message is one replication payload. Single-field updates carry
// Key/Value; init-sync snapshots carry Fields. Immutable once built;
// the topic it travels on is the NATS subject itself.
type Message struct {
	EntityId uint32 `json:"entity_id"`
	Target   Target `json:"target"`

	Key   string `json:"key,omitempty"`
	Value any    `json:"value,omitempty"`

	Fields map[string]any `json:"fields,omitempty"`
}

// Payload returns the field map this message merges into the target
// entity's state.
func (m *Message) Payload() map[string]any {
	if m.Fields != nil {
		return m.Fields
	}
	return map[string]any{m.Key: m.Value}
}

func (m *Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func UnmarshalMessage(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
