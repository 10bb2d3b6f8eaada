package validate

import "strings"

// gstStates maps the 2-digit GST state code to the state name, codes
// 01-37 per the GST council allocation. 25 remains valid for
// registrations issued before the Daman and Diu merger into 26.
var gstStates = map[string]string{
	"01": "Jammu and Kashmir",
	"02": "Himachal Pradesh",
	"03": "Punjab",
	"04": "Chandigarh",
	"05": "Uttarakhand",
	"06": "Haryana",
	"07": "Delhi",
	"08": "Rajasthan",
	"09": "Uttar Pradesh",
	"10": "Bihar",
	"11": "Sikkim",
	"12": "Arunachal Pradesh",
	"13": "Nagaland",
	"14": "Manipur",
	"15": "Mizoram",
	"16": "Tripura",
	"17": "Meghalaya",
	"18": "Assam",
	"19": "West Bengal",
	"20": "Jharkhand",
	"21": "Odisha",
	"22": "Chhattisgarh",
	"23": "Madhya Pradesh",
	"24": "Gujarat",
	"25": "Daman and Diu",
	"26": "Dadra and Nagar Haveli and Daman and Diu",
	"27": "Maharashtra",
	"28": "Andhra Pradesh",
	"29": "Karnataka",
	"30": "Goa",
	"31": "Lakshadweep",
	"32": "Kerala",
	"33": "Tamil Nadu",
	"34": "Puducherry",
	"35": "Andaman and Nicobar Islands",
	"36": "Telangana",
	"37": "Andhra Pradesh",
}

// StateNameForCode returns the state name for a GST state code.
func StateNameForCode(code string) (string, bool) {
	name, ok := gstStates[code]
	return name, ok
}

// stateMatches compares a declared state name against the table entry
// for a code, ignoring case and surrounding whitespace.
func stateMatches(code, declared string) bool {
	name, ok := gstStates[code]
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(declared), name)
}
