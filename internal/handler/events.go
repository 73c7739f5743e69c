package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-sharing-api/internal/queue"
	"github.com/iliyamo/recipe-sharing-api/internal/service"
)

// emitter publishes activity events off the request path.  A slow or
// missing broker never delays or fails the response.
type emitter struct {
	pub service.Publisher
	log zerolog.Logger
}

func (e emitter) emit(ctx context.Context, ev queue.ActivityEvent) {
	if e.pub == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.OccurredAt = time.Now().UTC()
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := e.pub.Publish(ctx, ev); err != nil {
			e.log.Debug().Err(err).Str("type", ev.Type).Msg("activity event dropped")
		}
	}()
}
