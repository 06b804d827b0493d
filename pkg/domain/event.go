package domain

import (
	"encoding/json"
	"fmt"
)

// EventKindInteractionCreate is the kind of an interactive command invocation.
const EventKindInteractionCreate = "DISCORD_INTERACTION_CREATE"

// Event is one record delivered by the host.
type Event struct {
	// ID correlates logs and responses. Assigned on dispatch when empty.
	ID      string          `json:"id,omitempty"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Error codes reported through EventResponse.
const (
	CodeNoHandler         = "no_handler"
	CodeRecursionLimit    = "recursion_limit"
	CodeUnimplementedMode = "unimplemented_mode"
	CodeUnknown           = "unknown"
	// CodeInvalidEvent reports an event rejected before dispatch.
	CodeInvalidEvent      = "invalid_event"
)

// ModuleError is the structured failure carried by an EventResponse.
type ModuleError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// EventResponse is sent back to the host once per event.
type EventResponse struct {
	Success bool         `json:"success"`
	Error   *ModuleError `json:"error,omitempty"`
}

// EventSuccess returns a successful response.
func EventSuccess() EventResponse {
	return EventResponse{Success: true}
}

// EventFailure returns a failed response with the given code.
func EventFailure(code, message string) EventResponse {
	return EventResponse{Error: &ModuleError{Code: code, Message: message}}
}
