package propertyreg

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Registration is the loosely-typed precursor a seller submits before a
// listing exists. Staff approval maps it onto a full Property.
type Registration struct {
	ID              string
	CustomerName    string
	PropertyName    string
	PhoneNumber     string
	Email           string
	Place           string
	CategoryName    string
	SqYards         float64
	Price           float64
	Location        string
	City            string
	State           string
	Country         string
	FacingDirection string
	RoadWidth       float64

	Status          Status
	RejectionReason *string
	PropertyID      *string
	ReviewedBy      *string
	ReviewDate      *time.Time
	SubmittedAt     time.Time
	UpdatedAt       time.Time
}

// SubmitRequest contains the seller-supplied registration data.
type SubmitRequest struct {
	CustomerName    string  `json:"customer_name"`
	PropertyName    string  `json:"property_name"`
	PhoneNumber     string  `json:"phone_number"`
	Email           string  `json:"email"`
	Place           string  `json:"place"`
	CategoryName    string  `json:"category"`
	SqYards         float64 `json:"sq_yards"`
	Price           float64 `json:"price"`
	Location        string  `json:"location"`
	City            string  `json:"city"`
	State           string  `json:"state"`
	Country         string  `json:"country"`
	FacingDirection string  `json:"facing_direction"`
	RoadWidth       float64 `json:"road_width"`
}
