package domain

// FieldKind selects the validation rule applied to a raw answer.
type FieldKind string

const (
	KindGST     FieldKind = "gst_number"
	KindPAN     FieldKind = "pan_number"
	KindFSSAI   FieldKind = "fssai_license"
	KindPhone   FieldKind = "phone"
	KindPincode FieldKind = "pincode"
	KindEmail   FieldKind = "email"
	KindGeneric FieldKind = "generic"
)

// ExpectedFormat returns a short, user-renderable description of the
// kind's accepted shape. Surfaced alongside validation failures so the
// boundary layer can build a helpful re-prompt.
func (k FieldKind) ExpectedFormat() string {
	switch k {
	case KindGST:
		return "15 characters: 2-digit state code, 10-character PAN, entity digit, 'Z', checksum (e.g. 27AAPFU0939F1ZV)"
	case KindPAN:
		return "10 characters: 5 letters, 4 digits, 1 letter (e.g. ABCDE1234F)"
	case KindFSSAI:
		return "14 digits starting with 1 or 2"
	case KindPhone:
		return "10-digit Indian mobile number starting with 6-9, optional +91 prefix"
	case KindPincode:
		return "6-digit Indian PIN code (e.g. 400001)"
	case KindEmail:
		return "a valid email address (local@domain.tld)"
	default:
		return "free text between 2 and 100 characters"
	}
}
