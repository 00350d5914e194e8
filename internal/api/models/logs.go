package models

// Log history models
type LogsRequest struct {
	Module string `query:"module" doc:"Only return entries of this module"`
	Limit  int    `query:"limit" minimum:"0" maximum:"1000" doc:"Return at most this many of the newest entries, 0 for all"`
}

type LogEntryData struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-27T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"negotiate" doc:"Logging module"`
	Message    string         `json:"message" example:"Stream negotiated" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

type LogsData struct {
	Entries []LogEntryData `json:"entries" doc:"Log entries, oldest first"`
	Count   int            `json:"count" example:"42" doc:"Number of entries returned"`
}

type LogsResponse struct {
	Body LogsData
}

// Log level models
type LogLevelsData struct {
	Levels map[string]string `json:"levels" doc:"Level per logging module"`
}

type LogLevelsResponse struct {
	Body LogLevelsData
}

type SetLogLevelRequest struct {
	Module string `path:"module" example:"negotiate" doc:"Logging module"`
	Body   struct {
		Level string `json:"level" example:"debug" doc:"New level: debug, info, warn or error"`
	}
}
