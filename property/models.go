package property

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
	StatusRented    Status = "rented"
)

// Property is a listing. Derived fields (price_per_sqft,
// registration_amount, coordinates, ribbon) are recomputed on every
// write to their inputs, before the row is considered durable.
type Property struct {
	ID               string
	Name             string
	ShortDescription string
	Description      string
	CategoryID       *string
	IsFeatured       bool

	Price               float64
	PlotArea            float64
	PricePerSqft        float64
	RegistrationCharges float64
	RegistrationAmount  float64
	EMIAvailable        bool

	FacingDirection string
	RoadWidth       float64
	TitleStatus     string

	Status      Status
	IsPublished bool

	Street  string
	Street2 string
	City    string
	ZipCode string
	State   string
	Country string

	Latitude   *float64
	Longitude  *float64
	GeocodedAt *time.Time

	ContactName  string
	ContactPhone string
	ContactEmail string

	SEOTitle        string
	SEODescription  string
	NearbyLandmarks string

	AgentID *string
	Views   int64

	KeyHighlights      string
	InvestmentData     string
	NearbyPlaces       string
	UniqueFeatures     string
	LifestyleBenefits  string
	AIContentGenerated bool
	AIGeneratedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateRequest carries the fields accepted when creating a listing.
type CreateRequest struct {
	Name             string   `json:"name"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	CategoryID       *string  `json:"category_id"`
	Price            float64  `json:"price"`
	PlotArea         float64  `json:"plot_area"`
	FacingDirection  string   `json:"facing_direction"`
	RoadWidth        float64  `json:"road_width"`
	TitleStatus      string   `json:"title_status"`
	EMIAvailable     bool     `json:"emi_available"`
	Street           string   `json:"street"`
	Street2          string   `json:"street2"`
	City             string   `json:"city"`
	ZipCode          string   `json:"zip_code"`
	State            string   `json:"state"`
	Country          string   `json:"country"`
	ContactName      string   `json:"contact_name"`
	ContactPhone     string   `json:"contact_phone"`
	ContactEmail     string   `json:"contact_email"`
	SEOTitle         string   `json:"seo_title"`
	SEODescription   string   `json:"seo_description"`
	NearbyLandmarks  string   `json:"nearby_landmarks"`
	RegistrationPct  *float64 `json:"registration_charges"`
}

// UpdateRequest carries partial updates; nil fields are left unchanged.
type UpdateRequest struct {
	Name             *string  `json:"name"`
	ShortDescription *string  `json:"short_description"`
	Description      *string  `json:"description"`
	CategoryID       *string  `json:"category_id"`
	Price            *float64 `json:"price"`
	PlotArea         *float64 `json:"plot_area"`
	FacingDirection  *string  `json:"facing_direction"`
	RoadWidth        *float64 `json:"road_width"`
	TitleStatus      *string  `json:"title_status"`
	EMIAvailable     *bool    `json:"emi_available"`
	Street           *string  `json:"street"`
	Street2          *string  `json:"street2"`
	City             *string  `json:"city"`
	ZipCode          *string  `json:"zip_code"`
	State            *string  `json:"state"`
	Country          *string  `json:"country"`
	ContactName      *string  `json:"contact_name"`
	ContactPhone     *string  `json:"contact_phone"`
	ContactEmail     *string  `json:"contact_email"`
	SEOTitle         *string  `json:"seo_title"`
	SEODescription   *string  `json:"seo_description"`
	NearbyLandmarks  *string  `json:"nearby_landmarks"`
	RegistrationPct  *float64 `json:"registration_charges"`
	IsFeatured       *bool    `json:"is_featured"`
}

// ListFilter narrows the public listing query.
type ListFilter struct {
	Search string
	City   string
	Zip    string
}
