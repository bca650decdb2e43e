// Package kafka publishes platform events.  Only the producer side lives in
// this service; downstream analytics consume the topics elsewhere.
package kafka

// Topic names.  Keep in sync with the consumer deployments.
const (
	// TopicAnalysisCreated carries one event per persisted analysis
	// artifact.
	TopicAnalysisCreated = "oncopurpose.analysis.created"

	// TopicSearchExecuted carries aggregated search telemetry.
	TopicSearchExecuted = "oncopurpose.search.executed"
)
