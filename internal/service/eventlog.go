package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vz415/BridgeVentilator/internal/models"
	"github.com/vz415/BridgeVentilator/internal/repository"
)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// EventLogService answers audit-trail queries. It owns filter hygiene so
// the repository only ever sees UTC bounds and canonical type names.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// List returns events matching the filter in chronological order.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.VentEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, from, to, typ)
}

// normalizeAndValidateFilter brings the bounds to UTC, canonicalizes the
// type and rejects inverted ranges. Zero bounds mean "unbounded" and pass
// through untouched.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from, to := normalizeToUTC(f.From), normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}
	return from, to, normalizeEventType(f.Type), nil
}

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
