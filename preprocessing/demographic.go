// Package preprocessing turns demographic records into fixed-schema
// feature vectors: cleaning, one-hot encoding, age binning, age scaling and
// train/test splitting.
package preprocessing

import (
	"strings"

	"github.com/YuminosukeSato/nameml/pkg/errors"
)

// Gender values.
type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "nonbinary"
	GenderOther     Gender = "other"
)

// EducationLevel values.
type EducationLevel string

const (
	EducationHighSchool  EducationLevel = "high-school"
	EducationSomeCollege EducationLevel = "some-college"
	EducationBachelors   EducationLevel = "bachelors"
	EducationMasters     EducationLevel = "masters"
	EducationDoctorate   EducationLevel = "doctorate"
	EducationOther       EducationLevel = "other"
)

// Known regions. Location is free-form; anything else sets no region flag.
const (
	RegionNortheast = "Northeast"
	RegionMidwest   = "Midwest"
	RegionSouth     = "South"
	RegionWest      = "West"
)

// Known ethnicities. Anything else sets the "other" flag.
const (
	EthnicityWhite         = "White"
	EthnicityBlack         = "Black"
	EthnicityHispanic      = "Hispanic"
	EthnicityAsian         = "Asian"
	EthnicityMiddleEastern = "Middle Eastern"
)

var (
	genders    = []Gender{GenderMale, GenderFemale, GenderNonBinary, GenderOther}
	educations = []EducationLevel{EducationHighSchool, EducationSomeCollege, EducationBachelors,
		EducationMasters, EducationDoctorate, EducationOther}
	regions     = []string{RegionNortheast, RegionMidwest, RegionSouth, RegionWest}
	ethnicities = []string{EthnicityWhite, EthnicityBlack, EthnicityHispanic, EthnicityAsian, EthnicityMiddleEastern}
)

// DemographicRecord describes one person. It is treated as immutable.
type DemographicRecord struct {
	Age            int            `json:"age"`
	Gender         Gender         `json:"gender"`
	Location       string         `json:"location"`
	EducationLevel EducationLevel `json:"educationLevel"`
	Ethnicity      string         `json:"ethnicity"`
}

// LabeledExample pairs a record with its target name.
type LabeledExample struct {
	Demographic DemographicRecord `json:"demographic"`
	Name        string            `json:"name"`
}

// Complete reports whether every field is present. A negative age counts
// as missing.
func (r DemographicRecord) Complete() bool {
	return r.Age >= 0 &&
		r.Gender != "" &&
		strings.TrimSpace(r.Location) != "" &&
		r.EducationLevel != "" &&
		strings.TrimSpace(r.Ethnicity) != ""
}

// KnownFields counts how many of age, gender, location, education and
// ethnicity fall inside the known vocabularies. Age counts when it is at
// least 18, the lower bound of the first age bin.
func (r DemographicRecord) KnownFields() int {
	n := 0
	if r.Age >= 18 {
		n++
	}
	if contains(genders, r.Gender) {
		n++
	}
	if contains(regions, r.Location) {
		n++
	}
	if contains(educations, r.EducationLevel) {
		n++
	}
	if contains(ethnicities, r.Ethnicity) {
		n++
	}
	return n
}

// Validate reports the first field outside its known vocabulary. Unknown
// values are still encodable, so callers use this for diagnostics only.
func (r DemographicRecord) Validate() error {
	switch {
	case r.Age < 0:
		return errors.NewValidationError("age", "must be non-negative", r.Age)
	case !contains(genders, r.Gender):
		return errors.NewValidationError("gender", "unknown gender", r.Gender)
	case !contains(regions, r.Location):
		return errors.NewValidationError("location", "unknown region", r.Location)
	case !contains(educations, r.EducationLevel):
		return errors.NewValidationError("educationLevel", "unknown education level", r.EducationLevel)
	}
	return nil
}

func contains[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Genders returns the known genders in schema order.
func Genders() []Gender { return append([]Gender(nil), genders...) }

// EducationLevels returns the known education levels in schema order.
func EducationLevels() []EducationLevel { return append([]EducationLevel(nil), educations...) }

// Regions returns the known regions in schema order.
func Regions() []string { return append([]string(nil), regions...) }

// Ethnicities returns the named ethnicities in schema order. Other values
// share the catch-all flag.
func Ethnicities() []string { return append([]string(nil), ethnicities...) }
