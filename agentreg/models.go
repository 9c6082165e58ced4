package agentreg

import (
	"time"

	"estately/agent"
)

type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// Document records metadata for an uploaded supporting file. The blob
// itself lives in object storage keyed by StorageKey.
type Document struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `json:"storage_key"`
}

// Registration is a prospective agent's application. It holds the raw
// submission until staff approve it into an agent profile or reject it.
// Transitions run forward only; approved and rejected are terminal.
type Registration struct {
	ID              string
	RegistrationNo  string
	Name            string
	Email           string
	Phone           string
	Whatsapp        *string
	Designation     agent.Designation
	ExpertiseLevel  agent.ExpertiseLevel
	LicenseNumber   *string
	ExperienceYears int
	City            string
	State           string
	ZipCode         string
	Country         string
	ShortBio        string
	DetailedBio     string
	Qualifications  *string
	LanguagesSpoken []string
	LinkedinURL     *string
	FacebookURL     *string
	Specializations []string
	Documents       []Document

	Status          Status
	RejectionReason *string
	AgentID         *string
	ReviewedBy      *string
	ReviewDate      *time.Time
	SubmittedAt     time.Time
	UpdatedAt       time.Time
}

// SubmitRequest contains the applicant-supplied registration data.
type SubmitRequest struct {
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Whatsapp        *string    `json:"whatsapp"`
	Designation     string     `json:"designation"`
	ExpertiseLevel  string     `json:"expertise_level"`
	LicenseNumber   *string    `json:"license_number"`
	ExperienceYears int        `json:"experience_years"`
	City            string     `json:"city"`
	State           string     `json:"state"`
	ZipCode         string     `json:"zip_code"`
	Country         string     `json:"country"`
	ShortBio        string     `json:"short_bio"`
	DetailedBio     string     `json:"detailed_bio"`
	Qualifications  *string    `json:"qualifications"`
	LanguagesSpoken []string   `json:"languages_spoken"`
	LinkedinURL     *string    `json:"linkedin_url"`
	FacebookURL     *string    `json:"facebook_url"`
	Specializations []string   `json:"specializations"`
	Documents       []Document `json:"documents"`
}
