package handler

import (
	"time"

	"github.com/google/uuid"
)

// dateLayout is the wire format of batch dates
const dateLayout = "2006-01-02"

// parseDate parses an optional calendar date; binding has already checked
// the layout with the datetime tag
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

// parseOptionalUUID parses a validated optional UUID string
func parseOptionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id := uuid.MustParse(*s)
	return &id
}
