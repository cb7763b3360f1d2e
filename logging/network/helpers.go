// Package network provides typed helpers for observer connection events.
package network

import (
	"context"

	"deepwarren/server/logging"
)

const (
	// EventObserverConnected is emitted when a websocket observer attaches.
	EventObserverConnected logging.EventType = "network.observer_connected"
	// EventObserverDisconnected is emitted when an observer drops.
	EventObserverDisconnected logging.EventType = "network.observer_disconnected"
)

// Payload identifies the observer connection.
type Payload struct {
	ClientID   string `json:"clientId"`
	RemoteAddr string `json:"remoteAddr,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ObserverConnected publishes an observer attach.
func ObserverConnected(ctx context.Context, pub logging.Publisher, turn uint64, payload Payload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventObserverConnected,
		Turn:     turn,
		Severity: logging.SeverityInfo,
		Category: "system",
		Payload:  payload,
	})
}

// ObserverDisconnected publishes an observer drop.
func ObserverDisconnected(ctx context.Context, pub logging.Publisher, turn uint64, payload Payload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventObserverDisconnected,
		Turn:     turn,
		Severity: logging.SeverityInfo,
		Category: "system",
		Payload:  payload,
	})
}
