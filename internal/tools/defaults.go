package tools

// NewDefaultRegistry builds the standard tool set. The OpenSearch tools are
// registered when cluster is non-nil and the weather tool when weather is.
func NewDefaultRegistry(cluster OpenSearch, weather WeatherClient) (*Registry, error) {
	var list []Tool
	if cluster != nil {
		list = append(list,
			ListIndicesTool(cluster),
			IndexMappingTool(cluster),
			SearchIndexTool(cluster),
			GetShardsTool(cluster),
		)
	}
	if weather != nil {
		list = append(list, GetWeatherTool(weather))
	}
	return NewRegistry(list...)
}
