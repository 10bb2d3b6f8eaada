package validate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
)

func TestGST_AcceptsAndNormalizes(t *testing.T) {
	cases := []struct {
		raw   string
		want  string
		state string
	}{
		{"27AAPFU0939F1ZV", "27AAPFU0939F1ZV", "Maharashtra"},
		{"27aapfu0939f1zv", "27AAPFU0939F1ZV", "Maharashtra"},
		{"  29AABCT1332L1ZT  ", "29AABCT1332L1ZT", "Karnataka"},
		{"07 AABCU 9603R 1ZM", "07AABCU9603R1ZM", "Delhi"},
		// pre-merger code, still on issued registrations
		{"25AAPFU0939F1ZV", "25AAPFU0939F1ZV", "Daman and Diu"},
	}
	for _, tc := range cases {
		res, issue := Field(id.KindGST, "gst_number", tc.raw)
		require.Nil(t, issue, "raw %q", tc.raw)
		assert.Equal(t, tc.want, res.Value)
		assert.Equal(t, tc.state, res.Details["state"])
		assert.Equal(t, tc.want[2:12], res.Details["pan"])
	}
}

func TestGST_RejectsWrongLength(t *testing.T) {
	for _, raw := range []string{
		"",
		"27AAPFU0939F1Z",    // 14
		"27AAPFU0939F1ZVX",  // 16
		"27AAPFU0939F1ZVXY", // 17
	} {
		_, issue := Field(id.KindGST, "gst_number", raw)
		require.NotNil(t, issue, "raw %q", raw)
		assert.Equal(t, models.IssueInvalidFormat, issue.IssueType)
	}
}

func TestGST_RejectsStructuralViolations(t *testing.T) {
	cases := map[string]string{
		"no Z at position 13":   "27AAPFU0939F1XV",
		"digits where letters":  "27AAP1U0939F1ZV",
		"letters in state code": "AAAAPFU0939F1ZV",
		"unassigned state code": "99AAPFU0939F1ZV",
		"zero state code":       "00AAPFU0939F1ZV",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, issue := Field(id.KindGST, "gst_number", raw)
			require.NotNil(t, issue)
			assert.Equal(t, models.IssueInvalidFormat, issue.IssueType)
			assert.Equal(t, "gst_number", issue.Field)
		})
	}
}

func TestPAN(t *testing.T) {
	res, issue := Field(id.KindPAN, "pan_number", "aapfu0939f")
	require.Nil(t, issue)
	assert.Equal(t, "AAPFU0939F", res.Value)
	assert.Equal(t, "Firm", res.Details["holder_type"])

	res, issue = Field(id.KindPAN, "pan_number", "ABCPD1234E")
	require.Nil(t, issue)
	assert.Equal(t, "Individual", res.Details["holder_type"])

	for _, raw := range []string{"AAPFU0939", "AAPFU0939FF", "12345ABCDE", "AAPFUX939F"} {
		_, issue := Field(id.KindPAN, "pan_number", raw)
		require.NotNil(t, issue, "raw %q", raw)
		assert.Equal(t, models.IssueInvalidFormat, issue.IssueType)
	}
}

func TestFSSAI(t *testing.T) {
	res, issue := Field(id.KindFSSAI, "fssai_license", "10012031000359")
	require.Nil(t, issue)
	assert.Equal(t, "10012031000359", res.Value)
	assert.Equal(t, "Central License", res.Details["license_type"])
	assert.Empty(t, res.Warnings)

	res, issue = Field(id.KindFSSAI, "fssai_license", "20012031000359")
	require.Nil(t, issue)
	assert.Equal(t, "State License", res.Details["license_type"])

	for _, raw := range []string{
		"1001203100035",   // 13 digits
		"100120310003591", // 15 digits
		"30012031000359",  // bad leading digit
		"1001203100035A",  // non-digit
	} {
		_, issue := Field(id.KindFSSAI, "fssai_license", raw)
		require.NotNil(t, issue, "raw %q", raw)
		assert.Equal(t, models.IssueInvalidFormat, issue.IssueType)
	}
}

func TestFSSAI_FlagsRepeatedDigits(t *testing.T) {
	res, issue := Field(id.KindFSSAI, "fssai_license", "11111111111111")
	require.Nil(t, issue)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.IssueSuspiciousPattern, res.Warnings[0].IssueType)
}

func TestPhone_Normalization(t *testing.T) {
	cases := []string{
		"9876543210",
		"+919876543210",
		"919876543210",
		"+91 98765 43210",
		"98765-43210",
		"(987) 654-3210",
	}
	for _, raw := range cases {
		res, issue := Field(id.KindPhone, "phone", raw)
		require.Nil(t, issue, "raw %q", raw)
		assert.Equal(t, "9876543210", res.Value, "raw %q", raw)
	}
}

func TestPhone_Rejections(t *testing.T) {
	for _, raw := range []string{
		"12345",
		"5876543210",  // bad leading digit
		"98765432101", // 11 digits, no country code
		"abcdefghij",
	} {
		_, issue := Field(id.KindPhone, "phone", raw)
		require.NotNil(t, issue, "raw %q", raw)
		assert.Equal(t, models.IssueInvalidFormat, issue.IssueType)
	}
}

func TestPhone_FlagsSequentialDigits(t *testing.T) {
	res, issue := Field(id.KindPhone, "phone", "9876543210")
	require.Nil(t, issue)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.IssueSuspiciousPattern, res.Warnings[0].IssueType)
	assert.Contains(t, res.Warnings[0].Description, "sequential")

	res, issue = Field(id.KindPhone, "phone", "9812374650")
	require.Nil(t, issue)
	assert.Empty(t, res.Warnings)
}

func TestPincode(t *testing.T) {
	res, issue := Field(id.KindPincode, "pincode", "400001")
	require.Nil(t, issue)
	assert.Equal(t, "400001", res.Value)
	assert.Equal(t, "Western", res.Details["region"])

	for _, raw := range []string{"040001", "4000011", "40001", "4000a1"} {
		_, issue := Field(id.KindPincode, "pincode", raw)
		require.NotNil(t, issue, "raw %q", raw)
	}
}

func TestEmail(t *testing.T) {
	res, issue := Field(id.KindEmail, "email", "  Ramesh@ABCfoods.IN ")
	require.Nil(t, issue)
	assert.Equal(t, "ramesh@abcfoods.in", res.Value)
	assert.Equal(t, "abcfoods.in", res.Details["domain"])

	for _, raw := range []string{"not-an-email", "a@b", "@domain.com", "user@.com"} {
		_, issue := Field(id.KindEmail, "email", raw)
		require.NotNil(t, issue, "raw %q", raw)
	}
}

func TestGeneric(t *testing.T) {
	res, issue := Field(id.KindGeneric, "business_name", "  ABC Foods  ")
	require.Nil(t, issue)
	assert.Equal(t, "ABC Foods", res.Value)

	_, issue = Field(id.KindGeneric, "business_name", "   ")
	require.NotNil(t, issue)
	assert.Equal(t, models.IssueMissingData, issue.IssueType)

	_, issue = Field(id.KindGeneric, "business_name", "x")
	require.NotNil(t, issue)
	assert.Equal(t, models.IssueInvalidFormat, issue.IssueType)

	_, issue = Field(id.KindGeneric, "business_name", strings.Repeat("a", 101))
	require.NotNil(t, issue)
	assert.Equal(t, models.IssueInvalidFormat, issue.IssueType)
}

func TestCrossCheckGSTState(t *testing.T) {
	assert.Nil(t, CrossCheckGSTState("27AAPFU0939F1ZV", "Maharashtra"))
	assert.Nil(t, CrossCheckGSTState("27AAPFU0939F1ZV", "  maharashtra "))

	issue := CrossCheckGSTState("27AAPFU0939F1ZV", "Karnataka")
	require.NotNil(t, issue)
	assert.Equal(t, models.IssueCrossFieldMismatch, issue.IssueType)
	assert.Equal(t, 0.6, issue.Severity)
	assert.Contains(t, issue.Description, "Maharashtra")

	// Either side missing means nothing to compare.
	assert.Nil(t, CrossCheckGSTState("", "Karnataka"))
	assert.Nil(t, CrossCheckGSTState("27AAPFU0939F1ZV", ""))
}

// Every assigned state code must round-trip through a well-formed GST
// number, and every unassigned two-digit code must be rejected.
func TestGST_StateCodeCoverage(t *testing.T) {
	for code := 0; code < 100; code++ {
		raw := fmt.Sprintf("%02dAAPFU0939F1ZV", code)
		_, issue := Field(id.KindGST, "gst_number", raw)
		_, assigned := StateNameForCode(raw[:2])
		if assigned {
			assert.Nil(t, issue, "code %02d should be accepted", code)
		} else {
			assert.NotNil(t, issue, "code %02d should be rejected", code)
		}
	}
}
