package worker

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mentorbot/internal/models"
	"mentorbot/internal/services"
)

var eventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mentorbot_worker_events_total",
	Help: "Events consumed by the progress worker, by outcome",
}, []string{"outcome"})

// ProgressEngine is the part of the progress tracking engine the worker
// drives. Satisfied by *services.ProgressService.
type ProgressEngine interface {
	Update(ctx context.Context, userID, replyText string) (*models.ConceptProgress, error)
}

// Worker consumes reply-completion events and recomputes learning progress.
// One worker instance processes events sequentially; running several
// instances trades ordering for throughput with no cross-worker
// coordination.
type Worker struct {
	bus    services.EventBus
	engine ProgressEngine
}

// New creates a progress worker.
func New(bus services.EventBus, engine ProgressEngine) *Worker {
	return &Worker{bus: bus, engine: engine}
}

// Run subscribes to the event channel and processes events until ctx is
// cancelled. Each event is handled fully before the next is awaited.
func (w *Worker) Run(ctx context.Context) error {
	events, err := w.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	log.Println("👂 [WORKER] Listening for events...")

	for event := range events {
		w.handle(ctx, event)
	}
	return nil
}

func (w *Worker) handle(ctx context.Context, event models.Event) {
	// Unknown event types are ignored, not fatal.
	if event.Type != models.EventHistorySaved {
		eventsProcessed.WithLabelValues("ignored").Inc()
		return
	}

	if _, err := w.engine.Update(ctx, event.UserID, event.Message); err != nil {
		log.Printf("❌ [WORKER] Progress update failed for %s: %v", event.UserID, err)
		eventsProcessed.WithLabelValues("error").Inc()
		return
	}
	eventsProcessed.WithLabelValues("ok").Inc()
}
