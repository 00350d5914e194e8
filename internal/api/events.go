package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/camtune/internal/events"
)

// registerEventRoutes registers the status event stream.
func (s *Server) registerEventRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Camera status, weak resolution, tier progress, negotiation results and device presence as they change",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"camera-status":         events.CameraStatusChangedEvent{},
		"weak-resolution":       events.WeakResolutionChangedEvent{},
		"negotiation-progress":  events.NegotiationProgressEvent{},
		"negotiation-completed": events.NegotiationCompletedEvent{},
		"stream-released":       events.StreamReleasedEvent{},
		"device-presence":       events.DevicePresenceEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		defer events.SubscribeCameraEvents(s.eventBus, eventCh)()

		// New clients start from the current camera status.
		snap := s.controller.Snapshot()
		if err := send.Data(events.CameraStatusChangedEvent{
			Status:    string(snap.Camera),
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
