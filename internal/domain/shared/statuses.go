package shared

// ReconStatus defines reconciliation job processing states
type ReconStatus string

const (
	ReconStatusAccepted  ReconStatus = "ACCEPTED"
	ReconStatusCompleted ReconStatus = "COMPLETED"
	ReconStatusFailed    ReconStatus = "FAILED"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
