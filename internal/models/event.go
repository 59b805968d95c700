package models

// ObjectCreatedEvent is the object-storage notification that triggers a send
// workflow. Field layout follows the EventBridge "Object Created" detail
// shape so the event router can forward notifications unmodified.
type ObjectCreatedEvent struct {
	Source     string `json:"source"`
	DetailType string `json:"detail-type"`
	Detail     struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size int64  `json:"size"`
		} `json:"object"`
	} `json:"detail"`
}

// TransferEvent is a connector-emitted transfer notification. The event sink
// only acknowledges these; reconciliation remains the source of truth for
// status updates.
type TransferEvent struct {
	Source     string `json:"source"`
	DetailType string `json:"detail-type"`
	Detail     struct {
		TransferID  string `json:"transferId"`
		ConnectorID string `json:"connectorId"`
	} `json:"detail"`
}
