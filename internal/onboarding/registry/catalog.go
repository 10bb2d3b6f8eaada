package registry

import (
	id "onboard/pkg/domain"
)

// Field names used across the engine. The catalog is the single source
// of truth for what gets collected and in which order.
const (
	FieldBusinessName = "business_name"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldBusinessType = "business_type"
	FieldAddress      = "address"
	FieldPincode      = "pincode"
	FieldState        = "state"
	FieldGST          = "gst_number"
	FieldPAN          = "pan_number"
	FieldFSSAI        = "fssai_license"
	FieldDrugLicense  = "drug_license"
)

// Default returns the standard producer field catalog. Contact and
// identity fields come first, compliance documents last so the
// conversation starts light and the business type is known before any
// conditional document is requested.
func Default() *Registry {
	return New([]FieldSpec{
		{Name: FieldBusinessName, Kind: id.KindGeneric, AlwaysRequired: true, OrderPriority: 10},
		{Name: FieldEmail, Kind: id.KindEmail, AlwaysRequired: true, OrderPriority: 20},
		{Name: FieldPhone, Kind: id.KindPhone, AlwaysRequired: true, OrderPriority: 30},
		{Name: FieldBusinessType, Kind: id.KindGeneric, AlwaysRequired: true, OrderPriority: 40},
		{Name: FieldAddress, Kind: id.KindGeneric, AlwaysRequired: true, OrderPriority: 50},
		{Name: FieldPincode, Kind: id.KindPincode, AlwaysRequired: true, OrderPriority: 60},
		{Name: FieldState, Kind: id.KindGeneric, AlwaysRequired: true, OrderPriority: 70},
		{Name: FieldGST, Kind: id.KindGST, AlwaysRequired: true, OrderPriority: 80},
		{Name: FieldPAN, Kind: id.KindPAN, AlwaysRequired: true, OrderPriority: 90},
		{Name: FieldFSSAI, Kind: id.KindFSSAI, Condition: requiresFSSAI, OrderPriority: 100},
		{Name: FieldDrugLicense, Kind: id.KindGeneric, Condition: requiresDrugLicense, OrderPriority: 110},
	})
}

func requiresFSSAI(collected map[string]string) bool {
	return id.BusinessType(collected[FieldBusinessType]).IsFoodBusiness()
}

func requiresDrugLicense(collected map[string]string) bool {
	return id.BusinessType(collected[FieldBusinessType]).IsPharma()
}
