package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camtune/internal/api/models"
)

func (s *Server) registerHintRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-hints",
		Method:      http.MethodGet,
		Path:        "/api/hints",
		Summary:     "Capability hints",
		Description: "Last tier that produced a verified stream, per facing mode",
		Tags:        []string{"camera"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.HintsResponse, error) {
		data := models.HintsData{Hints: []models.HintData{}}
		if s.hints == nil {
			return &models.HintsResponse{Body: data}, nil
		}

		for facing, h := range s.hints.All() {
			data.Hints = append(data.Hints, models.HintData{
				Facing:     string(facing),
				Tier:       h.Tier.String(),
				IdealWidth: h.Tier.Ideal,
				MinWidth:   h.Tier.Min,
				UpdatedAt:  h.UpdatedAt,
			})
		}
		sort.Slice(data.Hints, func(i, j int) bool {
			return data.Hints[i].Facing < data.Hints[j].Facing
		})
		return &models.HintsResponse{Body: data}, nil
	})
}
