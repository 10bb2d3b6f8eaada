package domain

// BusinessType classifies the producer's line of business. Conditional
// field requirements key off this value: food businesses must hold an
// FSSAI license, pharmaceutical businesses a drug license.
//
// Unknown values are tolerated; the registry simply applies no
// conditional requirements for them, so new business types can be
// introduced as data without code changes.
type BusinessType string

const (
	BusinessTypeFoodManufacturing BusinessType = "food_manufacturing"
	BusinessTypeFoodTrading       BusinessType = "food_trading"
	BusinessTypeManufacturing     BusinessType = "manufacturing"
	BusinessTypeTrading           BusinessType = "trading"
	BusinessTypeServices          BusinessType = "services"
	BusinessTypePharmaceuticals   BusinessType = "pharmaceuticals"
)

// IsFoodBusiness reports whether FSSAI licensing applies.
func (b BusinessType) IsFoodBusiness() bool {
	return b == BusinessTypeFoodManufacturing || b == BusinessTypeFoodTrading
}

// IsPharma reports whether drug licensing applies.
func (b BusinessType) IsPharma() bool {
	return b == BusinessTypePharmaceuticals
}
