package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camtune/internal/api/models"
	"github.com/smazurov/camtune/internal/devices"
)

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List devices",
		Description: "List V4L2 capture devices. Presence is informational and never blocks negotiation.",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(_ context.Context, input *models.RefreshDevicesRequest) (*models.DeviceResponse, error) {
		if s.devices == nil {
			return &models.DeviceResponse{Body: models.DeviceData{Devices: []models.DeviceInfo{}}}, nil
		}

		presence := s.devices.Current()
		if input.Refresh {
			var err error
			presence, err = s.devices.Refresh()
			if err != nil {
				return nil, huma.Error500InternalServerError("Failed to enumerate devices", err)
			}
		}
		return &models.DeviceResponse{Body: deviceData(presence)}, nil
	})
}

func deviceData(p devices.Presence) models.DeviceData {
	data := models.DeviceData{
		Devices:   make([]models.DeviceInfo, 0, len(p.Devices)),
		Count:     p.Count,
		HasCamera: p.HasCamera,
	}
	for _, d := range p.Devices {
		data.Devices = append(data.Devices, models.DeviceInfo{
			DevicePath: d.Path,
			DeviceName: d.Name,
			DeviceID:   d.ID,
			Caps:       d.Caps,
		})
	}
	return data
}
