package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ToolInfo describes a registered tool for GET /api/v1/tools
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolListResponse is returned by GET /api/v1/tools
type ToolListResponse struct {
	Status string     `json:"status"`
	Tools  []ToolInfo `json:"tools"`
	Count  int        `json:"count"`
}

// ContentItem is one {type, text} record of a tool response.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCallResponse is returned by POST /api/v1/tools/{name}
type ToolCallResponse struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError"`
}
