// Package protocol implements the live session channel to the backend.
//
// A Client dials through a ports.Dialer, decodes inbound {type, data}
// messages into domain events and dispatches them, in arrival order, to a
// domain.EventHandler. Outbound actions are encoded as {action, payload} and
// are dropped while the channel is not open. Whenever the channel closes or
// fails the Client waits a fixed delay and dials again, forever.
package protocol
