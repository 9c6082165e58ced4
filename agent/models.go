package agent

import "time"

type Designation string

const (
	DesignationAgent     Designation = "agent"
	DesignationSenior    Designation = "senior_agent"
	DesignationPrincipal Designation = "principal_agent"
	DesignationBroker    Designation = "broker"
)

type ExpertiseLevel string

const (
	ExpertiseStandard ExpertiseLevel = "standard"
	ExpertiseLuxury   ExpertiseLevel = "luxury"
)

// Agent is the public profile of an approved real estate agent. Profiles
// are created by the registration approval flow, never directly.
type Agent struct {
	ID              string
	Name            string
	Email           string
	Phone           string
	Whatsapp        *string
	Designation     Designation
	ExpertiseLevel  ExpertiseLevel
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

	TotalSalesVolume float64
	TotalDeals       int
	AvgRating        float64
	ReviewCount      int

	Active       bool
	AcceptingNew bool
	PortalUserID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpdateProfileRequest carries the agent-editable profile fields.
type UpdateProfileRequest struct {
	Phone        *string `json:"phone"`
	Whatsapp     *string `json:"whatsapp"`
	ShortBio     *string `json:"short_bio"`
	DetailedBio  *string `json:"detailed_bio"`
	AcceptingNew *bool   `json:"is_accepting_clients"`
}
