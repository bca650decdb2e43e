// Package common holds shared value types used across the OncoPurpose
// platform: identifiers, pagination, and API envelope helpers.
package common

import (
	"time"

	"github.com/google/uuid"
)

// ID is a string alias for UUID v4.
type ID string

// UserID is a string alias for a user identifier.
type UserID string

// SessionID is a string alias for an opaque client session identifier.
type SessionID string

// Metadata is an open-ended key-value bag.
type Metadata map[string]interface{}

// NewID generates a fresh UUID v4 identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Pagination defines parameters for paginated requests.  Offset/Limit match
// the query-engine contract; Total is populated on responses.
type Pagination struct {
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Total  int64 `json:"total,omitempty"`
}

const (
	// DefaultPageLimit is applied when a request omits limit.
	DefaultPageLimit = 50
	// MaxPageLimit is the hard upper bound; larger requests are rejected.
	MaxPageLimit = 200
)

// SortOrder defines the direction of sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DateRange defines a time interval.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ErrorDetail provides structured error information for API responses.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ProducerMessage is the transport-neutral message shape handed to the
// event producer.
type ProducerMessage struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}
