package types

import "testing"

func TestReportStatusTransitions(t *testing.T) {
	tests := []struct {
		from     ReportStatus
		to       ReportStatus
		allowed  bool
		terminal bool
	}{
		{ReportStatusPending, ReportStatusAccepted, true, false},
		{ReportStatusPending, ReportStatusDeclined, true, false},
		{ReportStatusPending, ReportStatusPending, false, false},
		{ReportStatusAccepted, ReportStatusDeclined, false, true},
		{ReportStatusDeclined, ReportStatusAccepted, false, true},
		{ReportStatus("archived"), ReportStatusAccepted, false, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
		if got := tt.from.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.from, got, tt.terminal)
		}
	}
}
