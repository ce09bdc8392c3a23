// Package dataset holds the built-in demographic/name examples and computes
// summary statistics over any set of labeled examples.
package dataset

import (
	"github.com/YuminosukeSato/nameml/preprocessing"
)

func ex(age int, gender preprocessing.Gender, location string, edu preprocessing.EducationLevel, ethnicity, name string) preprocessing.LabeledExample {
	return preprocessing.LabeledExample{
		Demographic: preprocessing.DemographicRecord{
			Age:            age,
			Gender:         gender,
			Location:       location,
			EducationLevel: edu,
			Ethnicity:      ethnicity,
		},
		Name: name,
	}
}

var sample = []preprocessing.LabeledExample{
	ex(25, preprocessing.GenderMale, preprocessing.RegionNortheast, preprocessing.EducationBachelors, preprocessing.EthnicityWhite, "Michael"),
	ex(32, preprocessing.GenderFemale, preprocessing.RegionMidwest, preprocessing.EducationMasters, preprocessing.EthnicityBlack, "Michelle"),
	ex(45, preprocessing.GenderMale, preprocessing.RegionSouth, preprocessing.EducationHighSchool, preprocessing.EthnicityHispanic, "Robert"),
	ex(67, preprocessing.GenderFemale, preprocessing.RegionWest, preprocessing.EducationDoctorate, preprocessing.EthnicityAsian, "Elizabeth"),
	ex(29, preprocessing.GenderNonBinary, preprocessing.RegionNortheast, preprocessing.EducationBachelors, preprocessing.EthnicityMiddleEastern, "Taylor"),
	ex(52, preprocessing.GenderFemale, preprocessing.RegionMidwest, preprocessing.EducationBachelors, preprocessing.EthnicityWhite, "Karen"),
	ex(38, preprocessing.GenderMale, preprocessing.RegionSouth, preprocessing.EducationSomeCollege, preprocessing.EthnicityBlack, "James"),
	ex(41, preprocessing.GenderFemale, preprocessing.RegionWest, preprocessing.EducationMasters, preprocessing.EthnicityAsian, "Jennifer"),
	ex(19, preprocessing.GenderMale, preprocessing.RegionNortheast, preprocessing.EducationSomeCollege, preprocessing.EthnicityHispanic, "Carlos"),
	ex(73, preprocessing.GenderFemale, preprocessing.RegionSouth, preprocessing.EducationHighSchool, preprocessing.EthnicityWhite, "Betty"),
}

var extension = []preprocessing.LabeledExample{
	ex(28, preprocessing.GenderMale, preprocessing.RegionWest, preprocessing.EducationBachelors, preprocessing.EthnicityAsian, "David"),
	ex(35, preprocessing.GenderFemale, preprocessing.RegionNortheast, preprocessing.EducationMasters, preprocessing.EthnicityBlack, "Latisha"),
	ex(42, preprocessing.GenderMale, preprocessing.RegionSouth, preprocessing.EducationSomeCollege, preprocessing.EthnicityHispanic, "Miguel"),
	ex(31, preprocessing.GenderFemale, preprocessing.RegionMidwest, preprocessing.EducationBachelors, preprocessing.EthnicityWhite, "Sarah"),
	ex(27, preprocessing.GenderNonBinary, preprocessing.RegionWest, preprocessing.EducationMasters, preprocessing.EthnicityMiddleEastern, "Sam"),
	ex(55, preprocessing.GenderMale, preprocessing.RegionNortheast, preprocessing.EducationDoctorate, preprocessing.EthnicityWhite, "Richard"),
	ex(48, preprocessing.GenderFemale, preprocessing.RegionSouth, preprocessing.EducationBachelors, preprocessing.EthnicityBlack, "Keisha"),
	ex(33, preprocessing.GenderMale, preprocessing.RegionMidwest, preprocessing.EducationHighSchool, preprocessing.EthnicityHispanic, "Jose"),
	ex(40, preprocessing.GenderFemale, preprocessing.RegionWest, preprocessing.EducationSomeCollege, preprocessing.EthnicityAsian, "Kim"),
	ex(22, preprocessing.GenderMale, preprocessing.RegionNortheast, preprocessing.EducationSomeCollege, preprocessing.EthnicityMiddleEastern, "Ali"),
}

// Sample returns the ten base examples. The slice is a fresh copy.
func Sample() []preprocessing.LabeledExample {
	return append([]preprocessing.LabeledExample(nil), sample...)
}

// Extended returns the base examples followed by ten more.
func Extended() []preprocessing.LabeledExample {
	out := make([]preprocessing.LabeledExample, 0, len(sample)+len(extension))
	out = append(out, sample...)
	return append(out, extension...)
}
