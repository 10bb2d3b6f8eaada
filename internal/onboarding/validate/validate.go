// Package validate implements the per-kind field validators. Each
// validator is a pure function: raw answer in, normalized value or one
// structured issue out. The first failing rule wins.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
)

var (
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	gstPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)
	fssaiPattern = regexp.MustCompile(`^[12][0-9]{13}$`)
	phonePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	pinPattern   = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// Result is a successful validation: the normalized value to store,
// presentational enrichment details, and any soft warnings (accepted
// but flagged).
type Result struct {
	Value    string
	Details  map[string]string
	Warnings []models.ValidationIssue
}

// Field validates a raw answer against a field's kind. On failure the
// returned issue names the field and describes the first rule broken.
func Field(kind id.FieldKind, field, raw string) (Result, *models.ValidationIssue) {
	switch kind {
	case id.KindGST:
		return gst(field, raw)
	case id.KindPAN:
		return pan(field, raw)
	case id.KindFSSAI:
		return fssai(field, raw)
	case id.KindPhone:
		return phone(field, raw)
	case id.KindPincode:
		return pincode(field, raw)
	case id.KindEmail:
		return email(field, raw)
	default:
		return generic(field, raw)
	}
}

// CrossCheckGSTState compares the GST state code against the declared
// state. A mismatch is a soft issue: the value stays collected but the
// discrepancy feeds the risk score.
func CrossCheckGSTState(gstNumber, declaredState string) *models.ValidationIssue {
	if len(gstNumber) < 2 || declaredState == "" {
		return nil
	}
	code := gstNumber[:2]
	if stateMatches(code, declaredState) {
		return nil
	}
	name, ok := StateNameForCode(code)
	if !ok {
		name = "an unknown state"
	}
	return &models.ValidationIssue{
		Field:       "gst_number",
		IssueType:   models.IssueCrossFieldMismatch,
		Description: fmt.Sprintf("GST state code %s belongs to %s, but the declared state is %q", code, name, declaredState),
		Severity:    0.6,
	}
}

func gst(field, raw string) (Result, *models.ValidationIssue) {
	clean := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))

	if len(clean) != 15 {
		return Result{}, invalidFormat(field, "GST number must be exactly 15 characters")
	}
	if !gstPattern.MatchString(clean) {
		return Result{}, invalidFormat(field, "GST number must be a 2-digit state code, a 10-character PAN, an entity digit, 'Z', and a checksum")
	}
	code := clean[:2]
	stateName, ok := StateNameForCode(code)
	if !ok {
		return Result{}, invalidFormat(field, fmt.Sprintf("invalid GST state code %s", code))
	}

	return Result{
		Value: clean,
		Details: map[string]string{
			"state_code": code,
			"state":      stateName,
			"pan":        clean[2:12],
		},
	}, nil
}

func pan(field, raw string) (Result, *models.ValidationIssue) {
	clean := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))

	if !panPattern.MatchString(clean) {
		return Result{}, invalidFormat(field, "PAN must be 10 characters: 5 letters, 4 digits, 1 letter")
	}

	return Result{
		Value: clean,
		Details: map[string]string{
			"holder_type": panHolderTypes[clean[3]],
		},
	}, nil
}

// panHolderTypes decodes the 4th PAN character. Unknown codes map to
// the empty string and are simply omitted from details.
var panHolderTypes = map[byte]string{
	'P': "Individual",
	'C': "Company",
	'H': "Hindu Undivided Family",
	'F': "Firm",
	'A': "Association of Persons",
	'T': "Trust",
	'B': "Body of Individuals",
	'L': "Local Authority",
	'J': "Artificial Juridical Person",
	'G': "Government",
}

func fssai(field, raw string) (Result, *models.ValidationIssue) {
	clean := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")

	if len(clean) != 14 || !digitsOnly(clean) {
		return Result{}, invalidFormat(field, "FSSAI license must be exactly 14 digits")
	}
	if !fssaiPattern.MatchString(clean) {
		return Result{}, invalidFormat(field, "FSSAI license must start with 1 (central) or 2 (state)")
	}

	res := Result{
		Value: clean,
		Details: map[string]string{
			"license_type": fssaiLicenseType(clean[0]),
		},
	}
	if issue := suspiciousDigits(field, clean); issue != nil {
		res.Warnings = append(res.Warnings, *issue)
	}
	return res, nil
}

func fssaiLicenseType(first byte) string {
	if first == '1' {
		return "Central License"
	}
	return "State License"
}

func phone(field, raw string) (Result, *models.ValidationIssue) {
	clean := phoneSeparators.Replace(strings.TrimSpace(raw))
	clean = strings.TrimPrefix(clean, "+")
	if strings.HasPrefix(clean, "91") && len(clean) == 12 {
		clean = clean[2:]
	}

	if len(clean) != 10 || !digitsOnly(clean) {
		return Result{}, invalidFormat(field, "phone must be a 10-digit Indian mobile number, optionally prefixed with +91")
	}
	if !phonePattern.MatchString(clean) {
		return Result{}, invalidFormat(field, "Indian mobile numbers start with 6, 7, 8 or 9")
	}

	res := Result{
		Value: clean,
		Details: map[string]string{
			"formatted": "+91-" + clean[:5] + "-" + clean[5:],
		},
	}
	if issue := suspiciousDigits(field, clean); issue != nil {
		res.Warnings = append(res.Warnings, *issue)
	}
	return res, nil
}

func pincode(field, raw string) (Result, *models.ValidationIssue) {
	clean := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")

	if len(clean) != 6 || !digitsOnly(clean) {
		return Result{}, invalidFormat(field, "PIN code must be exactly 6 digits")
	}
	if !pinPattern.MatchString(clean) {
		return Result{}, invalidFormat(field, "PIN codes cannot start with 0")
	}

	return Result{
		Value: clean,
		Details: map[string]string{
			"region": pinRegions[clean[0]],
		},
	}, nil
}

// pinRegions decodes the leading PIN digit into the postal region.
var pinRegions = map[byte]string{
	'1': "Northern",
	'2': "Northern",
	'3': "Western",
	'4': "Western",
	'5': "Southern",
	'6': "Southern",
	'7': "Eastern",
	'8': "Eastern",
	'9': "Army Postal Service",
}

func email(field, raw string) (Result, *models.ValidationIssue) {
	clean := strings.ToLower(strings.TrimSpace(raw))

	if !emailPattern.MatchString(clean) {
		return Result{}, invalidFormat(field, "email must look like local@domain.tld")
	}

	return Result{
		Value: clean,
		Details: map[string]string{
			"domain": clean[strings.IndexByte(clean, '@')+1:],
		},
	}, nil
}

func generic(field, raw string) (Result, *models.ValidationIssue) {
	clean := strings.TrimSpace(raw)

	if clean == "" {
		return Result{}, &models.ValidationIssue{
			Field:       field,
			IssueType:   models.IssueMissingData,
			Description: "a value is required",
			Severity:    1,
		}
	}
	if len(clean) < 2 || len(clean) > 100 {
		return Result{}, invalidFormat(field, "value must be between 2 and 100 characters")
	}

	return Result{Value: clean}, nil
}

// suspiciousDigits flags all-identical or fully sequential digit runs in
// account-like fields. The value is accepted; the flag feeds the risk
// score with the suspicious_pattern weight.
func suspiciousDigits(field, digits string) *models.ValidationIssue {
	if len(digits) < 4 {
		return nil
	}
	identical, ascending, descending := true, true, true
	for i := 1; i < len(digits); i++ {
		prev, cur := int(digits[i-1]-'0'), int(digits[i]-'0')
		if cur != prev {
			identical = false
		}
		if cur != (prev+1)%10 {
			ascending = false
		}
		if cur != (prev+9)%10 {
			descending = false
		}
	}
	if !identical && !ascending && !descending {
		return nil
	}
	kind := "sequential"
	if identical {
		kind = "repeated"
	}
	return &models.ValidationIssue{
		Field:       field,
		IssueType:   models.IssueSuspiciousPattern,
		Description: fmt.Sprintf("value is a %s digit pattern", kind),
		Severity:    1,
	}
}

func invalidFormat(field, description string) *models.ValidationIssue {
	return &models.ValidationIssue{
		Field:       field,
		IssueType:   models.IssueInvalidFormat,
		Description: description,
		Severity:    1,
	}
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}
