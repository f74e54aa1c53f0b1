package facts

import (
	"sort"
	"strconv"
	"strings"

	"github.com/landlorddesk/api/internal/domain"
)

// collectIndexed gathers keys of the form <prefix>.<N>.<field> into one field map
// per distinct non-negative index N, returned in ascending index order. Indices
// need not be contiguous; gaps simply do not produce entries. Keys whose index
// segment is not a valid integer, or that lack a field segment, are ignored.
func collectIndexed(input domain.WizardFacts, prefix string) []map[string]any {
	groups := make(map[int]map[string]any)
	for key, value := range input {
		rest, ok := strings.CutPrefix(key, prefix+".")
		if !ok {
			continue
		}
		rawIndex, field, ok := strings.Cut(rest, ".")
		if !ok || field == "" {
			continue
		}
		index, err := strconv.Atoi(rawIndex)
		if err != nil || index < 0 {
			continue
		}
		group, ok := groups[index]
		if !ok {
			group = make(map[string]any)
			groups[index] = group
		}
		group[field] = value
	}
	if len(groups) == 0 {
		return nil
	}
	indices := make([]int, 0, len(groups))
	for index := range groups {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	ordered := make([]map[string]any, 0, len(indices))
	for _, index := range indices {
		ordered = append(ordered, groups[index])
	}
	return ordered
}
