package domain

import "time"

// TransferCreatedEvent is published to the message broker when a transfer record is
// persisted, regardless of whether the real-provider path or the simulated fallback
// produced it.
type TransferCreatedEvent struct {
	TransferID     string         `json:"transfer_id"`
	SourceAmount   float64        `json:"source_amount"`
	SourceCurrency string         `json:"source_currency"`
	TargetCurrency string         `json:"target_currency"`
	Status         TransferStatus `json:"status"`
	IsRealTransfer bool           `json:"is_real_transfer"`
	Timestamp      time.Time      `json:"timestamp"`
}

// TransferStatusChangedEvent is published when a status check advances a transfer.
type TransferStatusChangedEvent struct {
	TransferID string         `json:"transfer_id"`
	OldStatus  TransferStatus `json:"old_status"`
	NewStatus  TransferStatus `json:"new_status"`
	Timestamp  time.Time      `json:"timestamp"`
}

// ScheduleCreatedEvent is published when a recurring transfer schedule is created.
type ScheduleCreatedEvent struct {
	ScheduleID      string            `json:"schedule_id"`
	Frequency       ScheduleFrequency `json:"frequency"`
	NextExecutionAt time.Time         `json:"next_execution_at"`
	Timestamp       time.Time         `json:"timestamp"`
}
