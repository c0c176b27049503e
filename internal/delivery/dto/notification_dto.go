package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        int64      `json:"id"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
}
