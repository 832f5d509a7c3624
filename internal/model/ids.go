package model

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator returns a globally unique identifier on every call.
type IDGenerator func() string

// Clock returns the current wall-clock time as a string. Successive calls must
// not go backwards.
type Clock func() string

// NewID is the default IDGenerator (random UUID v4).
func NewID() string { return uuid.NewString() }

// TimeLayout is RFC 3339 in UTC with a fixed nine-digit fraction, so stamps
// compare lexically in time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Now is the default Clock.
func Now() string { return FormatTime(time.Now()) }

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }
