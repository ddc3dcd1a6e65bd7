// Package store defines the persistence interfaces for decks, cards, and
// review logs, together with the transactional unit-of-work abstraction the
// service layer depends on. Concrete implementations live under
// internal/platform.
package store
