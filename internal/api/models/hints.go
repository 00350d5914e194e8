package models

import "time"

// Capability hint models
type HintData struct {
	Facing     string    `json:"facing" example:"environment" doc:"Facing mode the hint was recorded for"`
	Tier       string    `json:"tier" example:"min:1920" doc:"Last tier that produced a verified stream"`
	IdealWidth int       `json:"ideal_width,omitempty" example:"3840" doc:"Ideal width of the tier"`
	MinWidth   int       `json:"min_width,omitempty" example:"1920" doc:"Minimum width of the tier"`
	UpdatedAt  time.Time `json:"updated_at" doc:"When the hint was written"`
}

type HintsData struct {
	Hints []HintData `json:"hints" doc:"Recorded hints, one per facing mode"`
}

type HintsResponse struct {
	Body HintsData
}
