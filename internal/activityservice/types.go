package activityservice

import (
	"context"

	"github.com/hlumme/bloglist/internal/common"
)

type ActivityService struct {
	mb     common.MessageConsumer
	logger ActivityLogger
	ctx    context.Context
	cancel context.CancelFunc
}

type ActivityLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

// Event is the wire form of an activity message. Producers fill the fields
// relevant to their event kind.
type Event struct {
	Event    string `json:"event"`
	Username string `json:"username,omitempty"`
	BlogID   int    `json:"blog_id,omitempty"`
	Title    string `json:"title,omitempty"`
}
