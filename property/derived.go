package property

import "math"

// PricePerSqft computes the unit price, 0 when there is no plot area.
func PricePerSqft(price, plotArea float64) float64 {
	if plotArea <= 0 {
		return 0
	}
	return math.Round(price/plotArea*100) / 100
}

// RegistrationAmount computes the registration fee from the price and
// the configured percentage, 0 when the price is unset.
func RegistrationAmount(price, chargePercent float64) float64 {
	if price <= 0 {
		return 0
	}
	return price * chargePercent / 100
}

// StatusRibbon returns the badge markup for the listing status, or an
// empty string for anything unrecognized.
func StatusRibbon(status Status) string {
	switch status {
	case StatusAvailable:
		return `<span class="ribbon ribbon-available">Available</span>`
	case StatusSold:
		return `<span class="ribbon ribbon-sold">Sold Out</span>`
	case StatusRented:
		return `<span class="ribbon ribbon-rented">Rented</span>`
	default:
		return ""
	}
}

// recomputeFinancials refreshes the money-derived columns in place.
func (p *Property) recomputeFinancials() {
	p.PricePerSqft = PricePerSqft(p.Price, p.PlotArea)
	p.RegistrationAmount = RegistrationAmount(p.Price, p.RegistrationCharges)
}

// addressEmpty reports whether every geocodable component is blank.
func (p *Property) addressEmpty() bool {
	return p.Street == "" && p.Street2 == "" && p.ZipCode == "" && p.City == ""
}
