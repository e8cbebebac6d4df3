package domain

import "time"

// ScheduleFrequency is the cadence of a recurring transfer.
type ScheduleFrequency string

const (
	FrequencyWeekly    ScheduleFrequency = "weekly"
	FrequencyBiWeekly  ScheduleFrequency = "biweekly"
	FrequencyMonthly   ScheduleFrequency = "monthly"
	FrequencyQuarterly ScheduleFrequency = "quarterly"
)

// KnownFrequencies lists the frequencies the date generator advances. An unknown
// frequency repeats the start date without advancing, so schedule creation validates
// against this list.
var KnownFrequencies = []ScheduleFrequency{
	FrequencyWeekly,
	FrequencyBiWeekly,
	FrequencyMonthly,
	FrequencyQuarterly,
}

// ScheduleStatus is the lifecycle state of a scheduled transfer.
type ScheduleStatus string

const (
	ScheduleActive    ScheduleStatus = "active"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

// ScheduledTransfer is a recurring transfer instruction. The engine computes execution
// dates; the cron runner consumes NextExecutionAt and performs the actual submission.
// Status only ever transitions active -> cancelled.
type ScheduledTransfer struct {
	ID               string            `json:"id"`
	RecipientName    string            `json:"recipient_name"`
	RecipientCountry string            `json:"recipient_country"`
	Amount           float64           `json:"amount"`
	CurrencyFrom     string            `json:"currency_from"`
	CurrencyTo       string            `json:"currency_to"`
	Frequency        ScheduleFrequency `json:"frequency"`
	NextExecutionAt  time.Time         `json:"next_execution_at"`
	Status           ScheduleStatus    `json:"status"`
	ExecutionCount   int               `json:"execution_count"`
	CreatedAt        time.Time         `json:"created_at"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
}

// CreateScheduleRequest is the DTO for the create-schedule operation. StartDate is
// optional; when zero the first execution is scheduled from the current time.
type CreateScheduleRequest struct {
	RecipientName      string            `json:"recipient_name"`
	DestinationCountry string            `json:"destination_country"`
	Amount             float64           `json:"amount"`
	Frequency          ScheduleFrequency `json:"frequency"`
	StartDate          time.Time         `json:"start_date,omitempty"`
}

// SchedulePreview pairs a created schedule with its next few execution dates for
// display purposes.
type SchedulePreview struct {
	Schedule      *ScheduledTransfer `json:"schedule"`
	UpcomingDates []time.Time        `json:"upcoming_dates"`
}
