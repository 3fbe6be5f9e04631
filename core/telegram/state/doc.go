// Package state provides a lightweight in-memory FSM/session manager for Telegram bots.
// Sessions are keyed by Telegram user ID and live for the process lifetime
// unless a TTL is configured.
package state
