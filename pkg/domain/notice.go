package domain

import "time"

// NoticeKind selects how a notice is styled.
type NoticeKind string

const (
	NoticeSuccess  NoticeKind = "success"
	NoticeError    NoticeKind = "error"
	NoticeInfo     NoticeKind = "info"
	NoticeProgress NoticeKind = "progress"
)

// Notice is one live element of the notification feed.
type Notice struct {
	ID      string     `json:"id"`
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`

	// Progress is set for progress notices, in [0,1].
	Progress *float64 `json:"progress,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is zero for notices that persist until cleared.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Dialog is a blocking message the front-end must acknowledge.
type Dialog struct {
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Buttons []string `json:"buttons"`
}
