// Package mains resolves the mains hum frequency to notch out of click
// recordings, using the system timezone when none is configured.
package mains

import (
	"fmt"
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// DefaultHz is used when the timezone gives no answer
const DefaultHz = 50

// Detection records where a hum frequency came from
type Detection struct {
	Hz         int
	Timezone   string
	Country    string
	Configured bool
}

// String describes the detection for logs and reports
func (d Detection) String() string {
	switch {
	case d.Configured:
		return fmt.Sprintf("%d Hz (configured)", d.Hz)
	case d.Country != "":
		return fmt.Sprintf("%d Hz (%s, %s)", d.Hz, d.Country, d.Timezone)
	case d.Timezone != "":
		return fmt.Sprintf("%d Hz (%s)", d.Hz, d.Timezone)
	default:
		return fmt.Sprintf("%d Hz (default)", d.Hz)
	}
}

// Detect looks up the mains frequency for the local timezone
func Detect() Detection {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return Detection{Hz: DefaultHz}
	}
	return ForTimezone(timezone)
}

// ForTimezone looks up the mains frequency for an IANA timezone name
func ForTimezone(timezone string) Detection {
	d := Detection{Hz: DefaultHz, Timezone: timezone}
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return d
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return d
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return d
	}
	d.Country = country
	d.Hz = forCountry(country)
	return d
}

// Resolve returns configured when it is positive, otherwise the detected
// local frequency.
func Resolve(configured float64) (float64, Detection) {
	if configured > 0 {
		return configured, Detection{Hz: int(configured), Configured: true}
	}
	d := Detect()
	return float64(d.Hz), d
}

func forCountry(country string) int {
	// Japan is split by region; the Tokyo side runs at 50 Hz
	if country != "Japan" && sixtyHz[country] {
		return 60
	}
	return DefaultHz
}

// sixtyHz lists the countries on 60 Hz mains
var sixtyHz = map[string]bool{
	"United States": true, "Canada": true, "Mexico": true,

	"Belize": true, "Costa Rica": true, "El Salvador": true, "Guatemala": true,
	"Honduras": true, "Nicaragua": true, "Panama": true,

	"Bahamas": true, "Barbados": true, "Cayman Islands": true, "Cuba": true,
	"Dominican Republic": true, "Haiti": true, "Jamaica": true, "Puerto Rico": true,
	"Trinidad and Tobago": true, "U.S. Virgin Islands": true,

	// Brazil runs both; 60 Hz covers most of the population
	"Brazil": true, "Colombia": true, "Ecuador": true, "Guyana": true,
	"Peru": true, "Suriname": true, "Venezuela": true,

	"South Korea": true, "Taiwan": true, "Philippines": true, "Saudi Arabia": true,

	"Guam": true, "American Samoa": true, "Marshall Islands": true,
	"Micronesia": true, "Palau": true,
}
