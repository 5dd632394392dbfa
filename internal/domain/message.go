package domain

import "time"

type InboundMessage struct {
	Channel   string
	ChatID    string
	SenderID  string
	Content   string
	Timestamp time.Time
}

// OutboundMessage carries one or more content units plus an optional
// quick-reply keyboard rendered alongside them.
type OutboundMessage struct {
	Channel  string
	ChatID   string
	Units    []ContentUnit
	Keyboard *Keyboard
}
