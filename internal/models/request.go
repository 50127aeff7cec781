package models

// ToolCallRequest for POST /api/v1/tools/{name}
type ToolCallRequest struct {
	Arguments map[string]interface{} `json:"arguments"`
}
