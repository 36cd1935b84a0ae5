package manifest

import (
	"fmt"
	"sort"

	"github.com/fiapx/fiapx-dataset-service/internal/domain/entity"
)

// Vocabulary is the sorted class list frozen at manifest load.
type Vocabulary struct {
	classes []string
	index   map[string]int
}

func NewVocabulary(records []entity.SampleRecord) Vocabulary {
	seen := make(map[string]struct{}, len(records))
	classes := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Class]; ok {
			continue
		}
		seen[r.Class] = struct{}{}
		classes = append(classes, r.Class)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return Vocabulary{classes: classes, index: index}
}

func (v Vocabulary) Classes() []string {
	out := make([]string, len(v.classes))
	copy(out, v.classes)
	return out
}

func (v Vocabulary) Len() int { return len(v.classes) }

func (v Vocabulary) Index(class string) (int, error) {
	i, ok := v.index[class]
	if !ok {
		return 0, fmt.Errorf("%w: %q", entity.ErrUnknownClass, class)
	}
	return i, nil
}

// OneHot returns a len(Classes()) vector with a single 1 at the class index.
func (v Vocabulary) OneHot(class string) ([]float32, error) {
	i, err := v.Index(class)
	if err != nil {
		return nil, err
	}
	vec := make([]float32, len(v.classes))
	vec[i] = 1
	return vec, nil
}
