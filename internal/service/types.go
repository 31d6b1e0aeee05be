package service

import "time"

// LogFilter narrows audit log queries by time range and event type.
// Zero times mean no bound on that side, an empty type matches every event.
type LogFilter struct {
	From time.Time
	To   time.Time
	Type string
}
