package model

// Vocabulary is the ordered set of labels seen at training time. Order is
// first occurrence, which fixes the output units of the network and the
// integer encoding used by boosting.
type Vocabulary struct {
	labels []string
	index  map[string]int
}

// NewVocabulary builds a vocabulary from labels in first-seen order.
func NewVocabulary(labels []string) *Vocabulary {
	v := &Vocabulary{index: make(map[string]int)}
	for _, l := range labels {
		v.Add(l)
	}
	return v
}

// Add appends label if it is new and returns its index.
func (v *Vocabulary) Add(label string) int {
	if i, ok := v.index[label]; ok {
		return i
	}
	v.index[label] = len(v.labels)
	v.labels = append(v.labels, label)
	return len(v.labels) - 1
}

// Index returns the position of label.
func (v *Vocabulary) Index(label string) (int, bool) {
	i, ok := v.index[label]
	return i, ok
}

// Label returns the label at position i.
func (v *Vocabulary) Label(i int) string {
	return v.labels[i]
}

// Labels returns a copy of the labels in order.
func (v *Vocabulary) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

// Len returns the number of labels.
func (v *Vocabulary) Len() int {
	return len(v.labels)
}
