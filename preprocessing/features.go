package preprocessing

// Feature indices. The order is the schema order and fixes the network's
// input layout.
const (
	FeatureGenderMale = iota
	FeatureGenderFemale
	FeatureGenderNonBinary
	FeatureGenderOther
	FeatureRegionNortheast
	FeatureRegionMidwest
	FeatureRegionSouth
	FeatureRegionWest
	FeatureEducationHighSchool
	FeatureEducationSomeCollege
	FeatureEducationBachelors
	FeatureEducationMasters
	FeatureEducationDoctorate
	FeatureEducationOther
	FeatureAgeGroup18To24
	FeatureAgeGroup25To34
	FeatureAgeGroup35To44
	FeatureAgeGroup45To54
	FeatureAgeGroup55To64
	FeatureAgeGroup65Plus
	FeatureEthnicityWhite
	FeatureEthnicityBlack
	FeatureEthnicityHispanic
	FeatureEthnicityAsian
	FeatureEthnicityMiddleEastern
	FeatureEthnicityOther
	FeatureAge

	NumFeatures
)

// FeatureNames lists the feature names in schema order.
var FeatureNames = [NumFeatures]string{
	"genderMale", "genderFemale", "genderNonBinary", "genderOther",
	"regionNortheast", "regionMidwest", "regionSouth", "regionWest",
	"educationHighSchool", "educationSomeCollege", "educationBachelors",
	"educationMasters", "educationDoctorate", "educationOther",
	"ageGroup18To24", "ageGroup25To34", "ageGroup35To44",
	"ageGroup45To54", "ageGroup55To64", "ageGroup65Plus",
	"ethnicityWhite", "ethnicityBlack", "ethnicityHispanic",
	"ethnicityAsian", "ethnicityMiddleEastern", "ethnicityOther",
	"age",
}

// Age bins.
const (
	AgeBinUnder18 = "under-18"
	AgeBin18To24  = "18-24"
	AgeBin25To34  = "25-34"
	AgeBin35To44  = "35-44"
	AgeBin45To54  = "45-54"
	AgeBin55To64  = "55-64"
	AgeBin65Plus  = "65+"
)

// FeatureVector is one encoded record: 26 one-hot flags followed by age.
type FeatureVector [NumFeatures]float64

// Slice returns the values as a new slice.
func (fv FeatureVector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, fv[:])
	return out
}

// Map returns the values keyed by feature name.
func (fv FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for i, name := range FeatureNames {
		m[name] = fv[i]
	}
	return m
}

// AgeBin maps an age to its demographic bin.
func AgeBin(age int) string {
	switch {
	case age < 18:
		return AgeBinUnder18
	case age <= 24:
		return AgeBin18To24
	case age <= 34:
		return AgeBin25To34
	case age <= 44:
		return AgeBin35To44
	case age <= 54:
		return AgeBin45To54
	case age <= 64:
		return AgeBin55To64
	default:
		return AgeBin65Plus
	}
}

// AgeBins returns the six adult bins in schema order.
func AgeBins() []string {
	return []string{AgeBin18To24, AgeBin25To34, AgeBin35To44, AgeBin45To54, AgeBin55To64, AgeBin65Plus}
}

var ageBinFeature = map[string]int{
	AgeBin18To24: FeatureAgeGroup18To24,
	AgeBin25To34: FeatureAgeGroup25To34,
	AgeBin35To44: FeatureAgeGroup35To44,
	AgeBin45To54: FeatureAgeGroup45To54,
	AgeBin55To64: FeatureAgeGroup55To64,
	AgeBin65Plus: FeatureAgeGroup65Plus,
}

// EngineerFeatures one-hot encodes a record. The age feature holds the raw
// age; scaling is applied separately.
func EngineerFeatures(r DemographicRecord) FeatureVector {
	var fv FeatureVector

	switch r.Gender {
	case GenderMale:
		fv[FeatureGenderMale] = 1
	case GenderFemale:
		fv[FeatureGenderFemale] = 1
	case GenderNonBinary:
		fv[FeatureGenderNonBinary] = 1
	case GenderOther:
		fv[FeatureGenderOther] = 1
	}

	switch r.Location {
	case RegionNortheast:
		fv[FeatureRegionNortheast] = 1
	case RegionMidwest:
		fv[FeatureRegionMidwest] = 1
	case RegionSouth:
		fv[FeatureRegionSouth] = 1
	case RegionWest:
		fv[FeatureRegionWest] = 1
	}

	switch r.EducationLevel {
	case EducationHighSchool:
		fv[FeatureEducationHighSchool] = 1
	case EducationSomeCollege:
		fv[FeatureEducationSomeCollege] = 1
	case EducationBachelors:
		fv[FeatureEducationBachelors] = 1
	case EducationMasters:
		fv[FeatureEducationMasters] = 1
	case EducationDoctorate:
		fv[FeatureEducationDoctorate] = 1
	case EducationOther:
		fv[FeatureEducationOther] = 1
	}

	if idx, ok := ageBinFeature[AgeBin(r.Age)]; ok {
		fv[idx] = 1
	}

	switch r.Ethnicity {
	case EthnicityWhite:
		fv[FeatureEthnicityWhite] = 1
	case EthnicityBlack:
		fv[FeatureEthnicityBlack] = 1
	case EthnicityHispanic:
		fv[FeatureEthnicityHispanic] = 1
	case EthnicityAsian:
		fv[FeatureEthnicityAsian] = 1
	case EthnicityMiddleEastern:
		fv[FeatureEthnicityMiddleEastern] = 1
	default:
		fv[FeatureEthnicityOther] = 1
	}

	fv[FeatureAge] = float64(r.Age)
	return fv
}
