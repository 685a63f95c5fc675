package model

import "time"

// ProviderKind identifies which account-data provider backs a connection.
type ProviderKind string

// Provider kinds.
const (
	ProviderPlaid     ProviderKind = "plaid"
	ProviderSimpleFIN ProviderKind = "simplefin"
)

// Connection is a linked institution whose balances can be fetched on demand.
// AccessToken is a provider secret and is never serialized.
type Connection struct {
	CreatedAt       time.Time    `json:"createdAt"`
	LastSyncedAt    *time.Time   `json:"lastSyncedAt,omitempty"`
	ID              string       `json:"id"`
	Provider        ProviderKind `json:"provider"`
	AccessToken     string       `json:"-"`
	InstitutionID   string       `json:"institutionId,omitempty"`
	InstitutionName string       `json:"institutionName,omitempty"`
}
