package reports

import "time"

// Report lists the members absent from a group on one local date.
type Report struct {
	ID        int64
	GroupID   int64
	Date      time.Time
	Members   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
