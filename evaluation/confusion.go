package evaluation

import (
	"fmt"
	"sort"
	"strings"
)

type tagPair struct {
	gold      string
	predicted string
}

// ConfusionMatrix counts (gold, predicted) tag pairs.
type ConfusionMatrix struct {
	counts map[tagPair]int
	labels map[string]bool
}

func NewConfusionMatrix() *ConfusionMatrix {
	return &ConfusionMatrix{
		counts: make(map[tagPair]int),
		labels: make(map[string]bool),
	}
}

func (cm *ConfusionMatrix) Add(gold string, predicted string) {
	cm.counts[tagPair{gold, predicted}]++
	cm.labels[gold] = true
	cm.labels[predicted] = true
}

func (cm *ConfusionMatrix) Count(gold string, predicted string) int {
	return cm.counts[tagPair{gold, predicted}]
}

func (cm *ConfusionMatrix) Labels() []string {
	labels := make([]string, 0, len(cm.labels))
	for l := range cm.labels {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

type Confusion struct {
	Gold      string `json:"gold"`
	Predicted string `json:"predicted"`
	Count     int    `json:"count"`
}

// TopConfusions returns the n most frequent errors, most frequent first.
func (cm *ConfusionMatrix) TopConfusions(n int) []Confusion {
	var errs []Confusion
	for pair, count := range cm.counts {
		if pair.gold != pair.predicted {
			errs = append(errs, Confusion{Gold: pair.gold, Predicted: pair.predicted, Count: count})
		}
	}
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].Count != errs[j].Count {
			return errs[i].Count > errs[j].Count
		}
		if errs[i].Gold != errs[j].Gold {
			return errs[i].Gold < errs[j].Gold
		}
		return errs[i].Predicted < errs[j].Predicted
	})
	if n >= 0 && len(errs) > n {
		errs = errs[:n]
	}
	return errs
}

// String renders the matrix with gold tags as rows.
func (cm *ConfusionMatrix) String() string {
	labels := cm.Labels()
	width := 5
	for _, l := range labels {
		if len(l)+1 > width {
			width = len(l) + 1
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%*s", width, ""))
	for _, l := range labels {
		sb.WriteString(fmt.Sprintf("%*s", width, l))
	}
	sb.WriteString("\n")
	for _, gold := range labels {
		sb.WriteString(fmt.Sprintf("%*s", width, gold))
		for _, pred := range labels {
			sb.WriteString(fmt.Sprintf("%*d", width, cm.Count(gold, pred)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
