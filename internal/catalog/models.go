package catalog

// ModelInfo is one entry of the OpenAI-compatible model list.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the GET /v1/models response body.
type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

var models = []ModelInfo{
	{ID: "claude-sonnet-4-20250514", Object: "model", Created: 1717200000, OwnedBy: "anthropic"},
	{ID: "claude-3-5-sonnet-20241022", Object: "model", Created: 1713830400, OwnedBy: "anthropic"},
	{ID: "claude-3-haiku-20240307", Object: "model", Created: 1709769600, OwnedBy: "anthropic"},
	{ID: "claude-3-opus-20240229", Object: "model", Created: 1709164800, OwnedBy: "anthropic"},
	{ID: "claude-3-5-haiku-20241022", Object: "model", Created: 1713830400, OwnedBy: "anthropic"},
}

// ListModels returns the models available through the proxy. The slice is a
// copy; callers may modify it.
func ListModels() ModelList {
	data := make([]ModelInfo, len(models))
	copy(data, models)
	return ModelList{Object: "list", Data: data}
}
