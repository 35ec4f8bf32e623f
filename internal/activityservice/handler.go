package activityservice

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hlumme/bloglist/internal/common"
)

func NewActivityService(mb common.MessageConsumer, logger ActivityLogger) *ActivityService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ActivityService{
		mb:     mb,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run consumes the activity queue and writes one structured log line per
// event. Deliveries are acknowledged after processing; malformed payloads
// are acknowledged too so they do not requeue forever.
func (s *ActivityService) Run() {
	msgs, err := s.mb.Consume("", common.ActivityExchange, common.ActivityQueue)
	if err != nil {
		s.logger.Error("could not consume activity messages", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					s.logger.Error("could not unmarshal activity event", slog.String("error", err.Error()))
					msg.Ack(false)
					continue
				}

				switch event.Event {
				case string(common.UserCreatedKey):
					s.logger.Info("user created", slog.String("username", event.Username))
				case string(common.BlogCreatedKey):
					s.logger.Info("blog created", slog.Int("blog_id", event.BlogID), slog.String("title", event.Title), slog.String("username", event.Username))
				default:
					s.logger.Info("activity", slog.String("event", event.Event))
				}

				msg.Ack(false)

			case <-s.ctx.Done():
				s.logger.Info("stopping activity consumer due to context cancellation")
				return
			}
		}
	}()
}

func (s *ActivityService) Close() {
	s.cancel()
}
