package events

// Event type constants for kelindar/event.
const (
	TypeCameraStatusChanged uint32 = iota + 1
	TypeWeakResolutionChanged
	TypeNegotiationProgress
	TypeNegotiationCompleted
	TypeStreamReleased
	TypeDevicePresence
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// CameraStatusChangedEvent reports a change of the camera permission status.
type CameraStatusChangedEvent struct {
	Status    string `json:"status" example:"granted" doc:"Camera status: granted, denied, prompt, not-supported"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CameraStatusChangedEvent.
func (e CameraStatusChangedEvent) Type() uint32 { return TypeCameraStatusChanged }

// WeakResolutionChangedEvent reports that the weak resolution flag flipped.
type WeakResolutionChangedEvent struct {
	Weak      bool   `json:"weak" example:"true" doc:"True when no verified stream could be negotiated"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for WeakResolutionChangedEvent.
func (e WeakResolutionChangedEvent) Type() uint32 { return TypeWeakResolutionChanged }

// NegotiationProgressEvent reports which tier is being attempted.
type NegotiationProgressEvent struct {
	Position  int    `json:"position" example:"3" doc:"1-based tier position, 0 when idle"`
	Total     int    `json:"total" example:"14" doc:"Number of tiers, 0 when idle"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for NegotiationProgressEvent.
func (e NegotiationProgressEvent) Type() uint32 { return TypeNegotiationProgress }

// NegotiationCompletedEvent reports the terminal outcome of a negotiation.
type NegotiationCompletedEvent struct {
	SessionID string `json:"session_id" example:"0b6f1c9e-3f0e-4a57-9d0c-2d1c1f6e5a10" doc:"Negotiation session identifier"`
	Facing    string `json:"facing" example:"environment" doc:"Requested facing mode"`
	Outcome   string `json:"outcome" example:"succeeded" doc:"succeeded or the failure reason"`
	Tier      string `json:"tier,omitempty" example:"min:1920" doc:"Winning tier, empty for fallback or failure"`
	Width     int    `json:"width,omitempty" example:"1920" doc:"Negotiated width"`
	Height    int    `json:"height,omitempty" example:"1080" doc:"Negotiated height"`
	Duration  string `json:"duration" example:"1.42s" doc:"Negotiation duration"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for NegotiationCompletedEvent.
func (e NegotiationCompletedEvent) Type() uint32 { return TypeNegotiationCompleted }

// StreamReleasedEvent reports that the held verified stream was stopped.
type StreamReleasedEvent struct {
	Facing    string `json:"facing" example:"environment" doc:"Facing mode of the released stream"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamReleasedEvent.
func (e StreamReleasedEvent) Type() uint32 { return TypeStreamReleased }

// DevicePresenceEvent reports whether any capture device is present.
type DevicePresenceEvent struct {
	HasCamera bool   `json:"has_camera" example:"true" doc:"True when at least one capture device exists"`
	Count     int    `json:"count" example:"1" doc:"Number of capture devices"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DevicePresenceEvent.
func (e DevicePresenceEvent) Type() uint32 { return TypeDevicePresence }

// LogEntryEvent carries one log line to log stream subscribers.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-27T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"negotiate" doc:"Logging module"`
	Message    string         `json:"message" example:"Stream negotiated" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
