// Package dto holds the payloads shared by the HTTP and MCP surfaces.
package dto

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/kiteflow"
	"github.com/aretw0/kiteflow/pkg/domain"
)

// DispatchRequest is one event submitted by a remote host.
// Payload may be any JSON value; a string is taken as an encoded document.
type DispatchRequest struct {
	ID      string `json:"id,omitempty" mapstructure:"id"`
	Kind    string `json:"kind" mapstructure:"kind"`
	Payload any    `json:"payload,omitempty" mapstructure:"payload"`
}

// DispatchResponse reports the outcome of a DispatchRequest.
type DispatchResponse struct {
	EventID  string                `json:"event_id"`
	Response domain.EventResponse  `json:"response"`
	Matched  []string              `json:"matched"`
	Effects  []domain.Effect       `json:"effects"`
	Options  []domain.OptionRecord `json:"options,omitempty"`
}

// Manifest describes what a flow subscribes to.
type Manifest struct {
	Name     string                 `json:"name,omitempty"`
	Events   []string               `json:"events"`
	Commands []kiteflow.CommandSpec `json:"commands,omitempty"`
}

// ErrMissingKind is returned for a request without an event kind.
var ErrMissingKind = errors.New("event kind is required")

// DecodeDispatchRequest decodes loosely typed tool arguments.
func DecodeDispatchRequest(args map[string]any) (DispatchRequest, error) {
	var req DispatchRequest
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		return req, err
	}
	if err := dec.Decode(args); err != nil {
		return req, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}

// Event converts the request into a domain event.
func (r DispatchRequest) Event() (domain.Event, error) {
	if r.Kind == "" {
		return domain.Event{}, ErrMissingKind
	}
	ev := domain.Event{ID: r.ID, Kind: r.Kind}

	switch p := r.Payload.(type) {
	case nil:
	case string:
		if p == "" {
			break
		}
		if !json.Valid([]byte(p)) {
			return domain.Event{}, fmt.Errorf("payload is not valid JSON")
		}
		ev.Payload = json.RawMessage(p)
	case json.RawMessage:
		ev.Payload = p
	default:
		raw, err := json.Marshal(p)
		if err != nil {
			return domain.Event{}, fmt.Errorf("failed to encode payload: %w", err)
		}
		ev.Payload = raw
	}
	return ev, nil
}

// NewDispatchResponse builds the wire form of a dispatch outcome.
func NewDispatchResponse(res kiteflow.Result, resp domain.EventResponse) DispatchResponse {
	out := DispatchResponse{
		EventID:  res.EventID,
		Response: resp,
		Matched:  res.Matched,
		Effects:  res.Effects,
		Options:  res.Options,
	}
	if out.Matched == nil {
		out.Matched = []string{}
	}
	if out.Effects == nil {
		out.Effects = []domain.Effect{}
	}
	return out
}

// NewManifest describes eng.
func NewManifest(eng *kiteflow.Engine) Manifest {
	events := eng.Events()
	if events == nil {
		events = []string{}
	}
	return Manifest{Name: eng.Name, Events: events, Commands: eng.Commands()}
}
