package users

import "time"

// DefaultUTCOffset is UTC+3 in seconds.
const DefaultUTCOffset = 10800

type User struct {
	ID            int64
	TelegramID    int64
	UTCOffset     int
	FeedbackCount int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
