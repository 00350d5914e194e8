package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camtune/internal/api/models"
	"github.com/smazurov/camtune/internal/capture"
	"github.com/smazurov/camtune/internal/media"
	"github.com/smazurov/camtune/internal/negotiate"
)

func (s *Server) registerCameraRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Camera status",
		Description: "Camera permission status, weak resolution flag, tier progress and the held stream",
		Tags:        []string{"camera"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		return &models.StatusResponse{Body: s.statusData()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "negotiate-stream",
		Method:        http.MethodPost,
		Path:          "/api/stream",
		Summary:       "Negotiate stream",
		Description:   "Negotiate the highest resolution the camera delivers live frames at and hold the resulting stream. A held stream is replaced.",
		Tags:          []string{"camera"},
		DefaultStatus: http.StatusCreated,
		Security:      withAuth(),
		Errors:        []int{400, 401, 403, 422, 503},
	}, func(ctx context.Context, input *models.NegotiateRequest) (*models.StreamResponse, error) {
		facing, err := media.ParseFacing(input.Body.Facing)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid facing mode", err)
		}

		platform := s.platform
		switch {
		case input.Body.Platform != "":
			platform, err = media.ParsePlatform(input.Body.Platform)
			if err != nil {
				return nil, huma.Error400BadRequest("Invalid platform", err)
			}
		case input.UserAgent != "":
			// Only a mobile marker overrides the configured default; curl and
			// other tools look like desktop browsers.
			if c := media.ClassifyUserAgent(input.UserAgent); c != media.PlatformDesktop {
				platform = c
			}
		}

		info, err := s.controller.Negotiate(ctx, facing, platform)
		if err != nil {
			return nil, negotiationError(err)
		}
		return &models.StreamResponse{Body: streamData(info)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-stream",
		Method:      http.MethodGet,
		Path:        "/api/stream",
		Summary:     "Held stream",
		Description: "Describe the verified stream currently held",
		Tags:        []string{"camera"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, _ *struct{}) (*models.StreamResponse, error) {
		snap := s.controller.Snapshot()
		if snap.Stream == nil {
			return nil, huma.Error404NotFound("No stream is held")
		}
		return &models.StreamResponse{Body: streamData(*snap.Stream)}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "release-stream",
		Method:      http.MethodDelete,
		Path:        "/api/stream",
		Summary:     "Release stream",
		Description: "Stop the held stream and free the camera",
		Tags:        []string{"camera"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, _ *struct{}) (*models.StreamResponse, error) {
		info, err := s.controller.Release()
		if err != nil {
			if capture.IsNoStream(err) {
				return nil, huma.Error404NotFound("No stream is held")
			}
			return nil, huma.Error500InternalServerError("Failed to release stream", err)
		}
		return &models.StreamResponse{Body: streamData(info)}, nil
	})
}

func (s *Server) statusData() models.StatusData {
	snap := s.controller.Snapshot()
	data := models.StatusData{
		Camera:         string(snap.Camera),
		WeakResolution: snap.WeakResolution,
		Progress: models.ProgressData{
			Position: snap.Progress.Position,
			Total:    snap.Progress.Total,
		},
		State:       string(snap.State),
		Reason:      string(snap.Reason),
		Negotiating: snap.Negotiating,
	}
	if s.devices != nil {
		data.HasCamera = s.devices.Current().HasCamera
	}
	if snap.Stream != nil {
		stream := streamData(*snap.Stream)
		data.Stream = &stream
	}
	return data
}

func streamData(info capture.StreamInfo) models.StreamData {
	return models.StreamData{
		SessionID: info.SessionID,
		Facing:    string(info.Facing),
		Platform:  string(info.Platform),
		Tier:      info.Tier,
		Fallback:  info.Fallback,
		Width:     info.Width,
		Height:    info.Height,
		Since:     info.Since,
	}
}

// negotiationError maps a failed negotiation to an HTTP error.
func negotiationError(err error) error {
	var ce *capture.Error
	if errors.As(err, &ce) {
		switch ce.Code {
		case capture.ErrCodeClosed:
			return huma.Error503ServiceUnavailable("Service is shutting down")
		case capture.ErrCodeInvalidParams:
			return huma.Error400BadRequest(ce.Message)
		}
	}

	reason := negotiate.ReasonOf(err)
	msg := "Stream negotiation failed: " + string(reason)
	switch reason {
	case negotiate.ReasonDenied:
		return huma.Error403Forbidden(msg)
	case negotiate.ReasonUnsupported, negotiate.ReasonCancelled:
		return huma.Error503ServiceUnavailable(msg)
	case negotiate.ReasonNoTrack, negotiate.ReasonReacquireFailed, negotiate.ReasonExhausted:
		return huma.Error422UnprocessableEntity(msg)
	default:
		return huma.Error500InternalServerError("Stream negotiation failed", err)
	}
}
