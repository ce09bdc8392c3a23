package dataset

import (
	"strings"

	"github.com/YuminosukeSato/nameml/preprocessing"
)

// Field names used as keys of Stats.MissingValues.
const (
	FieldAge            = "age"
	FieldGender         = "gender"
	FieldLocation       = "location"
	FieldEducationLevel = "educationLevel"
	FieldEthnicity      = "ethnicity"
)

// Stats summarizes a set of labeled examples. Distributions count present
// values only and always list every known category, with zero counts where
// nothing matched; other observed values get their own key.
type Stats struct {
	TotalRecords          int            `json:"totalRecords"`
	UniqueNames           int            `json:"uniqueNames"`
	MissingValues         map[string]int `json:"missingValues"`
	AgeDistribution       map[string]int `json:"ageDistribution"`
	GenderDistribution    map[string]int `json:"genderDistribution"`
	LocationDistribution  map[string]int `json:"locationDistribution"`
	EducationDistribution map[string]int `json:"educationDistribution"`
	EthnicityDistribution map[string]int `json:"ethnicityDistribution"`
}

// ComputeStats counts records, distinct names, missing fields and category
// distributions. A negative age is missing; an under-18 age is counted
// under its own bin.
func ComputeStats(examples []preprocessing.LabeledExample) Stats {
	s := Stats{
		TotalRecords: len(examples),
		MissingValues: map[string]int{
			FieldAge: 0, FieldGender: 0, FieldLocation: 0, FieldEducationLevel: 0, FieldEthnicity: 0,
		},
		AgeDistribution:       zeroed(preprocessing.AgeBins()),
		GenderDistribution:    zeroed(preprocessing.Genders()),
		LocationDistribution:  zeroed(preprocessing.Regions()),
		EducationDistribution: zeroed(preprocessing.EducationLevels()),
		EthnicityDistribution: zeroed(preprocessing.Ethnicities()),
	}

	names := make(map[string]struct{}, len(examples))
	for _, e := range examples {
		if name := strings.TrimSpace(e.Name); name != "" {
			names[name] = struct{}{}
		}
		r := e.Demographic
		if r.Age < 0 {
			s.MissingValues[FieldAge]++
		} else {
			s.AgeDistribution[preprocessing.AgeBin(r.Age)]++
		}
		count(s.MissingValues, FieldGender, s.GenderDistribution, string(r.Gender))
		count(s.MissingValues, FieldLocation, s.LocationDistribution, r.Location)
		count(s.MissingValues, FieldEducationLevel, s.EducationDistribution, string(r.EducationLevel))
		count(s.MissingValues, FieldEthnicity, s.EthnicityDistribution, r.Ethnicity)
	}
	s.UniqueNames = len(names)
	return s
}

func count(missing map[string]int, field string, dist map[string]int, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		missing[field]++
		return
	}
	dist[value]++
}

func zeroed[T ~string](keys []T) map[string]int {
	m := make(map[string]int, len(keys))
	for _, k := range keys {
		m[string(k)] = 0
	}
	return m
}
