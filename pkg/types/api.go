package types

// Record is the JSON form of a model: its domain fields plus the id,
// modelName and createTime metadata keys.
type Record map[string]any

// ModelsResponse lists the model names served by GET /models.
type ModelsResponse struct {
	// Registered model names, upper-cased and sorted.
	// example: ["MODEL1","MODEL2"]
	Models []string `json:"models" example:"MODEL1,MODEL2"`
}

// RecordsResponse wraps a list of stored models.
type RecordsResponse struct {
	// Model name the records belong to.
	// example: MODEL1
	Model string `json:"model" example:"MODEL1"`
	// Records in listing order.
	Items []Record `json:"items"`
}

// RelatedResponse is returned by GET /models/{model}/{id}/relations/{relation}.
type RelatedResponse struct {
	// Model name of the source model.
	// example: MODEL1
	Model string `json:"model" example:"MODEL1"`
	// Id of the source model.
	// example: 0b6f1c1e-7f2a-4d43-9d8e-5f8f0c3d2a10
	ID string `json:"id" example:"0b6f1c1e-7f2a-4d43-9d8e-5f8f0c3d2a10"`
	// Relation name as declared.
	// example: model2s
	Relation string `json:"relation" example:"model2s"`
	// Related records; empty when nothing is related.
	Items []Record `json:"items"`
}

// EventMessage is one event pushed over the /events websocket.
type EventMessage struct {
	// example: 9d1c7e44-3a38-4d7b-a1c4-1f7b6b0e2e11
	ID string `json:"id" example:"9d1c7e44-3a38-4d7b-a1c4-1f7b6b0e2e11"`
	// example: UPDATE
	EventType string `json:"eventType" example:"UPDATE"`
	// example: MODEL1
	ModelName string `json:"modelName" example:"MODEL1"`
	// example: UPDATEMODEL1
	EventName string `json:"eventName" example:"UPDATEMODEL1"`
	// example: 2024-01-01T00:00:00Z
	EventTime string `json:"eventTime" example:"2024-01-01T00:00:00Z"`
	// Event payload, e.g. {updated, changes}.
	Payload map[string]any `json:"payload"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
