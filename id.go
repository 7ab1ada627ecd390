package storefront

import "github.com/xraph/storefront/id"

// ID is the primary identifier type for generated Storefront entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// ClientID is the validated external client identifier.
type ClientID = id.ClientID

// Re-export identifier parsers for convenience.
var (
	ParseClientID  = id.ParseClientID
	ParseSessionID = id.ParseSessionID
	ParseEntryID   = id.ParseEntryID
)
