package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	// ReasonCollaborator marks transport or cluster faults raised by an
	// outbound call. Their message is shown to the caller verbatim.
	ReasonCollaborator ReasonCode = "collaborator"
	// ReasonClusterReported marks logical errors the cluster returned in an
	// otherwise successful response.
	ReasonClusterReported ReasonCode = "cluster_reported"
	// ReasonWeather marks weather provider faults. Their detail is hidden.
	ReasonWeather ReasonCode = "weather"
	// ReasonUnsupportedInput marks arguments rejected before any network call.
	ReasonUnsupportedInput ReasonCode = "unsupported_input"
	// ReasonMalformed marks collaborator output missing an expected field.
	ReasonMalformed ReasonCode = "malformed_response"
	ReasonPanic     ReasonCode = "panic"
)
