package domain

// EventType identifies a real-time report mutation event.
type EventType string

const (
	EventNewReport     EventType = "new_report"
	EventReportUpdated EventType = "report_updated"
	EventReportDeleted EventType = "report_deleted"
)

// TopicReports is the topic all report mutation events are published to.
const TopicReports = "reports"

// Event is the unit of real-time distribution. Payload carries the full
// enriched report for create/update, or a DeletedReport for deletions.
// Delivery is best-effort, at-most-once; there is no event log.
type Event struct {
	Type    EventType `json:"event"`
	Payload any       `json:"data"`
}

// DeletedReport is the payload of a report_deleted event.
type DeletedReport struct {
	ReportID string `json:"report_id"`
}
