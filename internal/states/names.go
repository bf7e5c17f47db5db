// Package states rolls classified ZIPs up into per-state affordability and
// holds the fixed state abbreviation table.
package states

import "strings"

// State is one entry of the fixed lookup table.
type State struct {
	Abbr string `json:"abbr"`
	Name string `json:"name"`
	FIPS string `json:"fips"`
}

// All lists the 50 states, the District of Columbia and Puerto Rico.
var All = []State{
	{"AL", "Alabama", "01"},
	{"AK", "Alaska", "02"},
	{"AZ", "Arizona", "04"},
	{"AR", "Arkansas", "05"},
	{"CA", "California", "06"},
	{"CO", "Colorado", "08"},
	{"CT", "Connecticut", "09"},
	{"DE", "Delaware", "10"},
	{"DC", "District of Columbia", "11"},
	{"FL", "Florida", "12"},
	{"GA", "Georgia", "13"},
	{"HI", "Hawaii", "15"},
	{"ID", "Idaho", "16"},
	{"IL", "Illinois", "17"},
	{"IN", "Indiana", "18"},
	{"IA", "Iowa", "19"},
	{"KS", "Kansas", "20"},
	{"KY", "Kentucky", "21"},
	{"LA", "Louisiana", "22"},
	{"ME", "Maine", "23"},
	{"MD", "Maryland", "24"},
	{"MA", "Massachusetts", "25"},
	{"MI", "Michigan", "26"},
	{"MN", "Minnesota", "27"},
	{"MS", "Mississippi", "28"},
	{"MO", "Missouri", "29"},
	{"MT", "Montana", "30"},
	{"NE", "Nebraska", "31"},
	{"NV", "Nevada", "32"},
	{"NH", "New Hampshire", "33"},
	{"NJ", "New Jersey", "34"},
	{"NM", "New Mexico", "35"},
	{"NY", "New York", "36"},
	{"NC", "North Carolina", "37"},
	{"ND", "North Dakota", "38"},
	{"OH", "Ohio", "39"},
	{"OK", "Oklahoma", "40"},
	{"OR", "Oregon", "41"},
	{"PA", "Pennsylvania", "42"},
	{"RI", "Rhode Island", "44"},
	{"SC", "South Carolina", "45"},
	{"SD", "South Dakota", "46"},
	{"TN", "Tennessee", "47"},
	{"TX", "Texas", "48"},
	{"UT", "Utah", "49"},
	{"VT", "Vermont", "50"},
	{"VA", "Virginia", "51"},
	{"WA", "Washington", "53"},
	{"WV", "West Virginia", "54"},
	{"WI", "Wisconsin", "55"},
	{"WY", "Wyoming", "56"},
	{"PR", "Puerto Rico", "72"},
}

var byAbbr = func() map[string]State {
	m := make(map[string]State, len(All))
	for _, s := range All {
		m[s.Abbr] = s
	}
	return m
}()

// Lookup finds a state by abbreviation, case-insensitively.
func Lookup(abbr string) (State, bool) {
	s, ok := byAbbr[strings.ToUpper(strings.TrimSpace(abbr))]
	return s, ok
}

// Name returns the full name for an abbreviation, or the abbreviation itself
// when it is not in the table.
func Name(abbr string) string {
	if s, ok := Lookup(abbr); ok {
		return s.Name
	}
	return abbr
}
