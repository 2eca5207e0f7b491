package realtime

import (
	"time"

	"github.com/wonny/dropscout/internal/contracts"
)

// EventType names a live feed message
type EventType string

const (
	EventValidation EventType = "validation"
	EventSnapshot   EventType = "snapshot"
)

// Event is one message on the live validation feed
// ⭐ SSOT: wire format of /ws/validations
type Event struct {
	Type      EventType                    `json:"type"`
	Result    *contracts.ValidationResult  `json:"result,omitempty"`
	Results   []contracts.ValidationResult `json:"results,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}
