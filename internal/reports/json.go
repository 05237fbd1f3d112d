package reports

import (
	"encoding/json"
	"fmt"
)

// Report kinds in the JSON envelope.
const (
	KindDaily  = "daily"
	KindWeekly = "weekly"
)

// document is the JSON envelope. Durations inside the report are encoded as
// integer nanoseconds, the way time.Duration marshals.
type document struct {
	Kind   string `json:"kind"`
	Report any    `json:"report"`
}

// FormatDailyJSON formats a daily report as an indented JSON document.
func FormatDailyJSON(report *DailyReport) ([]byte, error) {
	return marshalReport(KindDaily, report)
}

// FormatWeeklyJSON formats a weekly report as an indented JSON document.
func FormatWeeklyJSON(report *WeeklyReport) ([]byte, error) {
	return marshalReport(KindWeekly, report)
}

func marshalReport(kind string, report any) ([]byte, error) {
	data, err := json.MarshalIndent(document{Kind: kind, Report: report}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s report: %w", kind, err)
	}
	return append(data, '\n'), nil
}
