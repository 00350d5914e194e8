package models

import "time"

// Negotiation request
type NegotiateRequestData struct {
	Facing   string `json:"facing" example:"environment" doc:"Facing mode: front, back, user or environment"`
	Platform string `json:"platform,omitempty" example:"desktop" doc:"Platform class (ios, mobile, desktop); from an iOS or Android User-Agent when empty, else the configured default"`
}

type NegotiateRequest struct {
	UserAgent string `header:"User-Agent" doc:"Used to classify the platform when none is given"`
	Body      NegotiateRequestData
}

// StreamData describes the held verified stream.
type StreamData struct {
	SessionID string    `json:"session_id" example:"0b6f1c9e-3f0e-4a57-9d0c-2d1c1f6e5a10" doc:"Negotiation session identifier"`
	Facing    string    `json:"facing" example:"environment" doc:"Requested facing mode"`
	Platform  string    `json:"platform" example:"desktop" doc:"Platform class used for negotiation"`
	Tier      string    `json:"tier,omitempty" example:"min:1920" doc:"Winning tier, empty for the fallback stream"`
	Fallback  bool      `json:"fallback" example:"false" doc:"True when only the facing-only fallback delivered frames"`
	Width     int       `json:"width" example:"1920" doc:"Delivered width"`
	Height    int       `json:"height" example:"1080" doc:"Delivered height"`
	Since     time.Time `json:"since" doc:"When the stream was negotiated"`
}

type StreamResponse struct {
	Body StreamData
}

// Status models
type ProgressData struct {
	Position int `json:"position" example:"3" doc:"1-based tier position, 0 when idle"`
	Total    int `json:"total" example:"14" doc:"Number of tiers, 0 when idle"`
}

type StatusData struct {
	Camera         string       `json:"camera" example:"granted" doc:"Camera status: granted, denied, prompt, not-supported"`
	WeakResolution bool         `json:"weak_resolution" example:"false" doc:"True when the last negotiation produced no verified stream"`
	Progress       ProgressData `json:"progress" doc:"Tier progress"`
	State          string       `json:"state" example:"succeeded" doc:"State of the current or last negotiation"`
	Reason         string       `json:"reason,omitempty" example:"exhausted" doc:"Failure reason of the last negotiation"`
	Negotiating    bool         `json:"negotiating" example:"false" doc:"True while a negotiation runs"`
	HasCamera      bool         `json:"has_camera" example:"true" doc:"True when a capture device is present"`
	Stream         *StreamData  `json:"stream,omitempty" doc:"Held stream, absent when none"`
}

type StatusResponse struct {
	Body StatusData
}
