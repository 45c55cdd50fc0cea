// Package bridge keeps a remote micro-frontend in sync with the data its host
// shares.
//
// A Consumer reads an initial snapshot from every source the host exposes,
// normalises it into hostdata.BridgeData and then follows the host either
// through its push subscription or, when the host has none, by polling. UI
// code reads the state through the Consumer's getters or attaches a reader
// with SubscribeToState; it never touches the host sources directly.
package bridge
