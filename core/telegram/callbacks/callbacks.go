// Package callbacks encodes and parses inline button data of the form action|payload.
package callbacks

import (
	"strings"

	"github.com/google/uuid"
)

// Callback actions understood by the bot.
const (
	ActionShow         = "show"
	ActionAddList      = "addlist"
	ActionDeleteList   = "deletelist"
	ActionSkip         = "skip"
	ActionCompleteTask = "completetask"
	ActionDeleteTask   = "deletetask"
	ActionYes          = "yes"
	ActionNo           = "no"
)

// NullPayload marks the absence of an id, e.g. tasks outside any list.
const NullPayload = "null"

// Data joins action and payload into button data.
func Data(action string, payload ...string) string {
	if len(payload) == 0 || payload[0] == "" {
		return action
	}
	return action + "|" + payload[0]
}

// Parse splits button data into action and payload (may be empty).
// Telebot's \f<unique>|<payload> encoding is accepted as well.
func Parse(data string) (string, string) {
	raw := strings.TrimPrefix(data, "\f")
	parts := strings.SplitN(raw, "|", 2)
	action := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = strings.TrimSpace(parts[1])
	}
	return action, payload
}

// ListID encodes an optional list id as payload.
func ListID(id *uuid.UUID) string {
	if id == nil {
		return NullPayload
	}
	return id.String()
}

// PayloadUUID parses a required id payload.
func PayloadUUID(payload string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(payload))
}

// PayloadOptionalUUID parses an id payload where "null" means no id.
func PayloadOptionalUUID(payload string) (*uuid.UUID, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" || payload == NullPayload {
		return nil, nil
	}
	id, err := uuid.Parse(payload)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
