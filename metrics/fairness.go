package metrics

import (
	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

// BiasMetrics holds, per demographic attribute, the spread between the best
// and worst group-wise top-1 accuracy. 0 means every group scored the same.
type BiasMetrics struct {
	GenderBias    float64 `json:"genderBias"`
	AgeBias       float64 `json:"ageBias"`
	LocationBias  float64 `json:"locationBias"`
	EducationBias float64 `json:"educationBias"`
	EthnicityBias float64 `json:"ethnicityBias"`
}

// GroupAccuracy returns the accuracy of each group, in first-seen group
// order.
func GroupAccuracy(groups []string, correct []bool) (labels []string, accuracy []float64, err error) {
	if len(groups) != len(correct) {
		return nil, nil, errors.NewValueError("GroupAccuracy", "groups and correct must have the same length")
	}
	vocab := model.NewVocabulary(nil)
	var hits, totals []float64
	for i, g := range groups {
		idx := vocab.Add(g)
		if idx == len(totals) {
			hits = append(hits, 0)
			totals = append(totals, 0)
		}
		totals[idx]++
		if correct[i] {
			hits[idx]++
		}
	}
	accuracy = make([]float64, len(totals))
	for i := range totals {
		accuracy[i] = hits[i] / totals[i]
	}
	return vocab.Labels(), accuracy, nil
}

// GroupAccuracySpread returns max - min of the group accuracies. Fewer than
// two groups give 0.
func GroupAccuracySpread(groups []string, correct []bool) (float64, error) {
	_, acc, err := GroupAccuracy(groups, correct)
	if err != nil || len(acc) < 2 {
		return 0, err
	}
	lo, hi := acc[0], acc[0]
	for _, a := range acc[1:] {
		lo = min(lo, a)
		hi = max(hi, a)
	}
	return hi - lo, nil
}

// ComputeBias groups records by gender, age bin, location, education and
// ethnicity and returns the accuracy spread for each attribute. correct[i]
// says whether the rank-1 prediction for records[i] was right.
func ComputeBias(records []preprocessing.DemographicRecord, correct []bool) (BiasMetrics, error) {
	if len(records) != len(correct) {
		return BiasMetrics{}, errors.NewValueError("ComputeBias", "records and correct must have the same length")
	}
	n := len(records)
	gender := make([]string, n)
	age := make([]string, n)
	location := make([]string, n)
	education := make([]string, n)
	ethnicity := make([]string, n)
	for i, r := range records {
		gender[i] = string(r.Gender)
		age[i] = preprocessing.AgeBin(r.Age)
		location[i] = r.Location
		education[i] = string(r.EducationLevel)
		ethnicity[i] = r.Ethnicity
	}

	var b BiasMetrics
	var err error
	for _, f := range []struct {
		dst    *float64
		groups []string
	}{
		{&b.GenderBias, gender},
		{&b.AgeBias, age},
		{&b.LocationBias, location},
		{&b.EducationBias, education},
		{&b.EthnicityBias, ethnicity},
	} {
		if *f.dst, err = GroupAccuracySpread(f.groups, correct); err != nil {
			return BiasMetrics{}, err
		}
	}
	return b, nil
}
