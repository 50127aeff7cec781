package models

// ShardsResult is the output of a cat shards call: either the shard rows in
// the order the cluster returned them, or the error the cluster reported.
type ShardsResult struct {
	Shards []map[string]interface{} `json:"shards,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// HasError reports whether the cluster answered with an error body.
func (r ShardsResult) HasError() bool {
	return r.Error != ""
}

// ForecastOverview holds the fields read from a JMA overview_forecast document.
// Empty fields were absent from the document.
type ForecastOverview struct {
	PublishingOffice string `json:"publishingOffice,omitempty"`
	ReportDatetime   string `json:"reportDatetime,omitempty"`
	Text             string `json:"text,omitempty"`
}
