package cleaning

import (
	"fmt"
	"sort"

	"datawash/pkg/contracts/domain"
)

// impute fills missing cells column by column using the selected strategy
// and reports how many cells were replaced. Within one run every missing
// cell of a column receives the same replacement. The table is modified in
// place and returned.
func impute(t *domain.Table, strategy, constantValue string) (*domain.Table, int, error) {
	switch strategy {
	case domain.StrategyMean, domain.StrategyMedian, domain.StrategyMode, domain.StrategyConstant:
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, strategy)
	}

	fixed := 0
	for _, col := range t.Columns {
		hasMissing := false
		for _, row := range t.Rows {
			if row[col].IsMissing() {
				hasMissing = true
				break
			}
		}
		if !hasMissing {
			continue
		}

		replacement, ok := columnReplacement(t, col, strategy, constantValue)
		if !ok {
			// Nothing non-missing to derive a value from; leave the column.
			continue
		}
		for _, row := range t.Rows {
			if row[col].IsMissing() {
				row[col] = replacement
				fixed++
			}
		}
	}

	return t, fixed, nil
}

// columnReplacement computes the single value used for every missing cell of
// the column. When at least one non-missing cell parses as a number the
// statistic runs over the numeric subset; otherwise mode over the raw string
// forms is the fallback for every non-constant strategy.
func columnReplacement(t *domain.Table, col, strategy, constantValue string) (domain.Value, bool) {
	if strategy == domain.StrategyConstant {
		return domain.StringValue(constantValue), true
	}

	present := make([]domain.Value, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v := row[col]; !v.IsMissing() {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return domain.Value{}, false
	}

	nums := make([]float64, 0, len(present))
	for _, v := range present {
		if f, ok := v.AsFloat(); ok {
			nums = append(nums, f)
		}
	}

	if len(nums) == 0 {
		return modeValue(present), true
	}

	switch strategy {
	case domain.StrategyMean:
		sum := 0.0
		for _, f := range nums {
			sum += f
		}
		return domain.FloatValue(sum / float64(len(nums))), true
	case domain.StrategyMedian:
		sort.Float64s(nums)
		mid := len(nums) / 2
		if len(nums)%2 == 0 {
			return domain.FloatValue((nums[mid-1] + nums[mid]) / 2), true
		}
		return domain.FloatValue(nums[mid]), true
	default:
		return domain.FloatValue(modeFloat(nums)), true
	}
}

// modeFloat returns the most frequent value. Ties break to the value seen
// first, which keeps the result deterministic for equal counts.
func modeFloat(nums []float64) float64 {
	counts := make(map[float64]int, len(nums))
	order := make([]float64, 0, len(nums))
	for _, f := range nums {
		if counts[f] == 0 {
			order = append(order, f)
		}
		counts[f]++
	}

	best := order[0]
	for _, f := range order[1:] {
		if counts[f] > counts[best] {
			best = f
		}
	}
	return best
}

// modeValue returns the first-seen most frequent value, keyed by each
// value's raw textual form.
func modeValue(values []domain.Value) domain.Value {
	counts := make(map[string]int, len(values))
	order := make([]string, 0, len(values))
	first := make(map[string]domain.Value, len(values))

	for _, v := range values {
		key := v.Raw()
		if counts[key] == 0 {
			order = append(order, key)
			first[key] = v
		}
		counts[key]++
	}

	bestKey := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[bestKey] {
			bestKey = key
		}
	}
	return first[bestKey]
}
