package classifier

import (
	"fmt"
	"sort"
)

// LabelEncoder maps threat codes to dense class indices in sorted order.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// FitLabelEncoder collects the distinct labels and sorts them.
func FitLabelEncoder(labels []string) *LabelEncoder {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	classes := make([]string, 0, len(set))
	for l := range set {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &LabelEncoder{classes: classes, index: index}
}

// Classes returns the labels in index order.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Len is the number of classes.
func (e *LabelEncoder) Len() int { return len(e.classes) }

// Transform converts labels to indices.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		idx, ok := e.index[l]
		if !ok {
			return nil, fmt.Errorf("%w: unknown label %q", ErrInvalidInput, l)
		}
		out[i] = idx
	}
	return out, nil
}

// Inverse returns the label for a class index.
func (e *LabelEncoder) Inverse(idx int) (string, error) {
	if idx < 0 || idx >= len(e.classes) {
		return "", fmt.Errorf("%w: class index %d out of range", ErrInvalidInput, idx)
	}
	return e.classes[idx], nil
}
