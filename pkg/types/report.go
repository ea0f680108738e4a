package types

import (
	"fmt"
	"time"
)

type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusAccepted ReportStatus = "accepted"
	ReportStatusDeclined ReportStatus = "declined"
)

// reportTransitions is the full set of legal status changes. Anything not
// listed here is rejected.
var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusPending: {ReportStatusAccepted, ReportStatusDeclined},
}

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusAccepted, ReportStatusDeclined:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s ReportStatus) Terminal() bool {
	return s.Valid() && len(reportTransitions[s]) == 0
}

func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range reportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ReportStatus) Label() string {
	switch s {
	case ReportStatusPending:
		return "Pending"
	case ReportStatusAccepted:
		return "Accepted"
	case ReportStatusDeclined:
		return "Declined"
	}
	return string(s)
}

func ParseReportStatus(v string) (ReportStatus, error) {
	s := ReportStatus(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown report status %q", v)
	}
	return s, nil
}

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

type Report struct {
	ID          string       `db:"id" json:"id"`
	Description string       `db:"description" json:"description"`
	Latitude    *float64     `db:"latitude" json:"latitude"`
	Longitude   *float64     `db:"longitude" json:"longitude"`
	ImageURL    string       `db:"image_url" json:"imageUrl"`
	Status      ReportStatus `db:"status" json:"status"`
	NgoID       *string      `db:"ngo_id" json:"ngoId,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   *time.Time   `db:"updated_at" json:"updatedAt,omitempty"`
}

// Coordinate returns the report location, or false when either half is missing.
func (r *Report) Coordinate() (Coordinate, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}, true
}

// ReportDecision holds the review fields written when a reviewer decides on a
// pending report.
type ReportDecision struct {
	Status    ReportStatus `db:"status"`
	NgoID     string       `db:"ngo_id"`
	UpdatedAt time.Time    `db:"updated_at"`
}
