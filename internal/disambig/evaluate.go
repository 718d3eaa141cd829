// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package disambig

import (
	"strings"
	"unicode"

	"github.com/pdiddy/author-resolve/pkg/types"
)

// Metrics summarizes how a batch of decisions scored against known
// truth.
type Metrics struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`

	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Evaluate scores decisions against truth, a target-id to expected-id
// mapping. Targets missing from truth fall back to their own id with
// the trailing numeric suffix stripped, which is exactly the id a
// synthetic split target was minted from.
func Evaluate(decisions map[string]types.Decision, truth map[string]string) Metrics {
	var m Metrics
	for target, d := range decisions {
		expected, ok := truth[target]
		if !ok {
			expected = StripSuffix(target)
		}
		switch {
		case d.Same == nil:
			m.FalseNegatives++
		case *d.Same == expected:
			m.TruePositives++
		default:
			m.FalsePositives++
		}
	}

	if m.TruePositives+m.FalsePositives > 0 {
		m.Precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}
	if m.TruePositives+m.FalseNegatives > 0 {
		m.Recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// StripSuffix removes a trailing run of digits from an author id:
// "jane-doe2" evaluates against "jane-doe".
func StripSuffix(id string) string {
	return strings.TrimRightFunc(id, unicode.IsDigit)
}
