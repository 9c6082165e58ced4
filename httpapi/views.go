package httpapi

import (
	"time"

	"estately/agent"
	"estately/agentreg"
	"estately/insight"
	"estately/property"
	"estately/propertyreg"
)

type propertyView struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	ShortDescription string  `json:"short_description"`
	Description      string  `json:"description"`
	CategoryID       *string `json:"category_id"`
	IsFeatured       bool    `json:"is_featured"`

	Price               float64 `json:"price"`
	PlotArea            float64 `json:"plot_area"`
	PricePerSqft        float64 `json:"price_per_sqft"`
	RegistrationCharges float64 `json:"registration_charges"`
	RegistrationAmount  float64 `json:"registration_amount"`
	EMIAvailable        bool    `json:"emi_available"`

	FacingDirection string  `json:"facing_direction"`
	RoadWidth       float64 `json:"road_width"`
	TitleStatus     string  `json:"title_status"`

	Status       string `json:"status"`
	StatusRibbon string `json:"status_ribbon"`
	IsPublished  bool   `json:"is_published"`

	Street  string `json:"street"`
	Street2 string `json:"street2"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
	State   string `json:"state"`
	Country string `json:"country"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`

	SEOTitle        string `json:"seo_title"`
	SEODescription  string `json:"seo_description"`
	NearbyLandmarks string `json:"nearby_landmarks"`

	AgentID *string `json:"agent_id"`
	Views   int64   `json:"views"`

	KeyHighlights      string `json:"key_highlights,omitempty"`
	InvestmentData     string `json:"investment_data,omitempty"`
	NearbyPlaces       string `json:"nearby_places,omitempty"`
	UniqueFeatures     string `json:"unique_features,omitempty"`
	LifestyleBenefits  string `json:"lifestyle_benefits,omitempty"`
	AIContentGenerated bool   `json:"ai_content_generated"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPropertyView(p property.Property) propertyView {
	return propertyView{
		ID:                  p.ID,
		Name:                p.Name,
		ShortDescription:    p.ShortDescription,
		Description:         p.Description,
		CategoryID:          p.CategoryID,
		IsFeatured:          p.IsFeatured,
		Price:               p.Price,
		PlotArea:            p.PlotArea,
		PricePerSqft:        p.PricePerSqft,
		RegistrationCharges: p.RegistrationCharges,
		RegistrationAmount:  p.RegistrationAmount,
		EMIAvailable:        p.EMIAvailable,
		FacingDirection:     p.FacingDirection,
		RoadWidth:           p.RoadWidth,
		TitleStatus:         p.TitleStatus,
		Status:              string(p.Status),
		StatusRibbon:        property.StatusRibbon(p.Status),
		IsPublished:         p.IsPublished,
		Street:              p.Street,
		Street2:             p.Street2,
		City:                p.City,
		ZipCode:             p.ZipCode,
		State:               p.State,
		Country:             p.Country,
		Latitude:            p.Latitude,
		Longitude:           p.Longitude,
		ContactName:         p.ContactName,
		ContactPhone:        p.ContactPhone,
		ContactEmail:        p.ContactEmail,
		SEOTitle:            p.SEOTitle,
		SEODescription:      p.SEODescription,
		NearbyLandmarks:     p.NearbyLandmarks,
		AgentID:             p.AgentID,
		Views:               p.Views,
		KeyHighlights:       p.KeyHighlights,
		InvestmentData:      p.InvestmentData,
		NearbyPlaces:        p.NearbyPlaces,
		UniqueFeatures:      p.UniqueFeatures,
		LifestyleBenefits:   p.LifestyleBenefits,
		AIContentGenerated:  p.AIContentGenerated,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func toPropertyViews(props []property.Property) []propertyView {
	views := make([]propertyView, 0, len(props))
	for _, p := range props {
		views = append(views, toPropertyView(p))
	}
	return views
}

type agentView struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Whatsapp        *string  `json:"whatsapp"`
	Designation     string   `json:"designation"`
	ExpertiseLevel  string   `json:"expertise_level"`
	LicenseNumber   *string  `json:"license_number"`
	ExperienceYears int      `json:"experience_years"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	ZipCode         string   `json:"zip_code"`
	Country         string   `json:"country"`
	ShortBio        string   `json:"short_bio"`
	DetailedBio     string   `json:"detailed_bio"`
	Qualifications  *string  `json:"qualifications"`
	LanguagesSpoken []string `json:"languages_spoken"`
	LinkedinURL     *string  `json:"linkedin_url"`
	FacebookURL     *string  `json:"facebook_url"`
	Specializations []string `json:"specializations"`

	TotalSalesVolume float64 `json:"total_sales_volume"`
	TotalDeals       int     `json:"total_deals"`
	AvgRating        float64 `json:"avg_rating"`
	ReviewCount      int     `json:"review_count"`

	Active       bool      `json:"is_active"`
	AcceptingNew bool      `json:"is_accepting_clients"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAgentView(a agent.Agent) agentView {
	return agentView{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		Phone:            a.Phone,
		Whatsapp:         a.Whatsapp,
		Designation:      string(a.Designation),
		ExpertiseLevel:   string(a.ExpertiseLevel),
		LicenseNumber:    a.LicenseNumber,
		ExperienceYears:  a.ExperienceYears,
		City:             a.City,
		State:            a.State,
		ZipCode:          a.ZipCode,
		Country:          a.Country,
		ShortBio:         a.ShortBio,
		DetailedBio:      a.DetailedBio,
		Qualifications:   a.Qualifications,
		LanguagesSpoken:  a.LanguagesSpoken,
		LinkedinURL:      a.LinkedinURL,
		FacebookURL:      a.FacebookURL,
		Specializations:  a.Specializations,
		TotalSalesVolume: a.TotalSalesVolume,
		TotalDeals:       a.TotalDeals,
		AvgRating:        a.AvgRating,
		ReviewCount:      a.ReviewCount,
		Active:           a.Active,
		AcceptingNew:     a.AcceptingNew,
		CreatedAt:        a.CreatedAt,
	}
}

func toAgentViews(agents []agent.Agent) []agentView {
	views := make([]agentView, 0, len(agents))
	for _, a := range agents {
		views = append(views, toAgentView(a))
	}
	return views
}

type agentRegistrationView struct {
	ID              string              `json:"id"`
	RegistrationNo  string              `json:"registration_no"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone"`
	Designation     string              `json:"designation"`
	ExpertiseLevel  string              `json:"expertise_level"`
	ExperienceYears int                 `json:"experience_years"`
	City            string              `json:"city"`
	State           string              `json:"state"`
	Country         string              `json:"country"`
	Documents       []agentreg.Document `json:"documents"`
	Status          string              `json:"status"`
	RejectionReason *string             `json:"rejection_reason"`
	AgentID         *string             `json:"agent_id"`
	ReviewedBy      *string             `json:"reviewed_by"`
	ReviewDate      *time.Time          `json:"review_date"`
	SubmittedAt     time.Time           `json:"submitted_at"`
}

func toAgentRegistrationView(reg agentreg.Registration) agentRegistrationView {
	return agentRegistrationView{
		ID:              reg.ID,
		RegistrationNo:  reg.RegistrationNo,
		Name:            reg.Name,
		Email:           reg.Email,
		Phone:           reg.Phone,
		Designation:     string(reg.Designation),
		ExpertiseLevel:  string(reg.ExpertiseLevel),
		ExperienceYears: reg.ExperienceYears,
		City:            reg.City,
		State:           reg.State,
		Country:         reg.Country,
		Documents:       reg.Documents,
		Status:          string(reg.Status),
		RejectionReason: reg.RejectionReason,
		AgentID:         reg.AgentID,
		ReviewedBy:      reg.ReviewedBy,
		ReviewDate:      reg.ReviewDate,
		SubmittedAt:     reg.SubmittedAt,
	}
}

type propertyRegistrationView struct {
	ID              string     `json:"id"`
	CustomerName    string     `json:"customer_name"`
	PropertyName    string     `json:"property_name"`
	PhoneNumber     string     `json:"phone_number"`
	Email           string     `json:"email"`
	Place           string     `json:"place"`
	CategoryName    string     `json:"category"`
	SqYards         float64    `json:"sq_yards"`
	Price           float64    `json:"price"`
	Location        string     `json:"location"`
	City            string     `json:"city"`
	State           string     `json:"state"`
	Country         string     `json:"country"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejection_reason"`
	PropertyID      *string    `json:"property_id"`
	ReviewedBy      *string    `json:"reviewed_by"`
	ReviewDate      *time.Time `json:"review_date"`
	SubmittedAt     time.Time  `json:"submitted_at"`
}

func toPropertyRegistrationView(reg propertyreg.Registration) propertyRegistrationView {
	return propertyRegistrationView{
		ID:              reg.ID,
		CustomerName:    reg.CustomerName,
		PropertyName:    reg.PropertyName,
		PhoneNumber:     reg.PhoneNumber,
		Email:           reg.Email,
		Place:           reg.Place,
		CategoryName:    reg.CategoryName,
		SqYards:         reg.SqYards,
		Price:           reg.Price,
		Location:        reg.Location,
		City:            reg.City,
		State:           reg.State,
		Country:         reg.Country,
		Status:          string(reg.Status),
		RejectionReason: reg.RejectionReason,
		PropertyID:      reg.PropertyID,
		ReviewedBy:      reg.ReviewedBy,
		ReviewDate:      reg.ReviewDate,
		SubmittedAt:     reg.SubmittedAt,
	}
}

type cityInsightView struct {
	City              string    `json:"city"`
	InvestmentReasons string    `json:"investment_reasons"`
	GrowthPotential   string    `json:"growth_potential"`
	Infrastructure    string    `json:"infrastructure"`
	MarketTrends      string    `json:"market_trends"`
	GeneratedAt       time.Time `json:"generated_at"`
}

func toCityInsightView(ci insight.CityInsight) cityInsightView {
	return cityInsightView{
		City:              ci.City,
		InvestmentReasons: ci.InvestmentReasons,
		GrowthPotential:   ci.GrowthPotential,
		Infrastructure:    ci.Infrastructure,
		MarketTrends:      ci.MarketTrends,
		GeneratedAt:       ci.GeneratedAt,
	}
}
