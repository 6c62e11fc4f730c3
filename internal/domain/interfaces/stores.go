package interfaces

import (
	"context"

	domaintypes "copresence/internal/domain/types"
)

// IdentityStore persists the single user-entered identifier string.
type IdentityStore interface {
	GetIdentifier() (string, bool, error)
	SetIdentifier(value string) error
}

// AttendanceStore keeps the anchor's scan reports.
type AttendanceStore interface {
	SaveReport(ctx context.Context, report domaintypes.ScanReport) error
	LoadReport(ctx context.Context, id domaintypes.ReportID) (domaintypes.ScanReport, bool, error)
	ListReports(ctx context.Context, limit int) ([]domaintypes.ScanReport, error)
}
