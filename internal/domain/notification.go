package domain

import "time"

const (
	NotificationTypeInfoRequest  = "adoption_info_request"
	NotificationTypeInfoResponse = "adoption_info_response"
	NotificationTypeStatusUpdate = "adoption_status_update"
)

const (
	EmailTemplateInfoRequest  = "adoption_info_request"
	EmailTemplateStatusUpdate = "adoption_status_update"
)

// Notification is one in-app notification row. Data carries the ids the
// recipient UI needs to deep-link back to the request.
type Notification struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	ActorUserID *string        `json:"actorUserId,omitempty"`
	Title       string         `json:"title"`
	Body        string         `json:"body,omitempty"`
	Type        string         `json:"type"`
	Data        map[string]any `json:"data"`
	ReadAt      *time.Time     `json:"readAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// EmailQueueEntry is one durable email-queue row, delivered by an external
// worker. Delivery status and attempt counters default server-side.
type EmailQueueEntry struct {
	UserID   *string        `json:"userId,omitempty"`
	ToEmail  string         `json:"toEmail"`
	Template string         `json:"template"`
	Payload  map[string]any `json:"payload"`
}
