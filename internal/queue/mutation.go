package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Mutation operations.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// Mutation records a change to one entity.
type Mutation struct {
	Entity string    `json:"entity"`
	Op     string    `json:"op"`
	ID     int       `json:"id"`
	At     time.Time `json:"at"`
}

// Type is the message type for m, e.g. "student.deleted".
func (m Mutation) Type() string {
	return m.Entity + "." + m.Op
}

// Message encodes m as a queue message.
func (m Mutation) Message() (Message, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: m.Type(), Body: body}, nil
}

// DecodeMutation parses a message produced by Mutation.Message.
func DecodeMutation(msg Message) (Mutation, error) {
	var m Mutation
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		return m, fmt.Errorf("decode %q: %w", msg.Type, err)
	}
	if m.Entity == "" || m.Op == "" {
		entity, op, ok := strings.Cut(msg.Type, ".")
		if !ok {
			return m, fmt.Errorf("decode %q: missing entity or op", msg.Type)
		}
		m.Entity, m.Op = entity, op
	}
	return m, nil
}
