package domain

import "time"

type NoticeType string

const (
	NoticeEvent       NoticeType = "event"
	NoticeMaintenance NoticeType = "maintenance"
	NoticeAlert       NoticeType = "alert"
)

func ParseNoticeType(s string) (NoticeType, bool) {
	switch NoticeType(s) {
	case NoticeEvent, NoticeMaintenance, NoticeAlert:
		return NoticeType(s), true
	}
	return "", false
}

// Notice maps the notices table.
type Notice struct {
	ID          string     `db:"id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Type        NoticeType `db:"type"`
	Date        time.Time  `db:"date"`
	CreatedAt   time.Time  `db:"created_at"`
}
