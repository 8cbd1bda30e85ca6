package services

import (
	"delivery_manager/internal/models"

	"github.com/shopspring/decimal"
)

// percentageTolerance is how far the active mix percentages may drift from
// 100 before standard allocation becomes unavailable.
const percentageTolerance = 0.01

// MixLine is one share of the standard proportion handed to the allocator.
type MixLine struct {
	ProductID   uint
	ProductName string
	Percentage  float64
}

// Allocation is one computed product quantity.
type Allocation struct {
	ProductID   uint
	ProductName string
	Quantity    int
}

// DemandSource is the tagged origin of an order's product mix: either the
// global percentage configuration or the order's own item list. The sealed
// marker method keeps the variant set closed so demand resolution can branch
// exhaustively.
type DemandSource interface {
	demandSource()
}

// StandardDemand allocates the order total across the configured mix.
type StandardDemand struct {
	Mix []MixLine
}

// CustomDemand takes the order's explicit item list as-is.
type CustomDemand struct {
	Items []Allocation
}

func (StandardDemand) demandSource() {}
func (CustomDemand) demandSource()   {}

// MixLinesFromConfig converts active configuration rows into allocator input,
// preserving row order so tie-breaking stays deterministic.
func MixLinesFromConfig(configs []models.ProductMixConfig) []MixLine {
	lines := make([]MixLine, 0, len(configs))
	for _, cfg := range configs {
		lines = append(lines, MixLine{
			ProductID:   cfg.ProductID,
			ProductName: cfg.ProductName,
			Percentage:  cfg.Percentage,
		})
	}
	return lines
}

// ValidateMix checks the 100% invariant over the given mix. It returns the
// decimal sum alongside the verdict so callers can report the actual value.
func ValidateMix(mix []MixLine) (float64, bool) {
	sum := decimal.Zero
	for _, line := range mix {
		sum = sum.Add(decimal.NewFromFloat(line.Percentage))
	}
	diff := sum.Sub(decimal.NewFromInt(100)).Abs()
	ok := diff.LessThanOrEqual(decimal.NewFromFloat(percentageTolerance))
	f, _ := sum.Float64()
	return f, ok
}

// Allocate turns a total quantity plus a percentage mix into per-product
// integer quantities. Each product gets floor(percentage/100 * total); the
// rounding remainder goes entirely to the product with the strictly largest
// percentage, first occurrence winning ties. Zero-quantity lines are dropped.
//
// The result always sums to totalQuantity for a valid mix. An invalid mix
// (percentages not summing to 100 within tolerance) yields an empty result;
// callers fall back to AllocateEven.
func Allocate(totalQuantity int, mix []MixLine) []Allocation {
	if totalQuantity < 0 || len(mix) == 0 {
		return nil
	}
	if _, ok := ValidateMix(mix); !ok {
		return nil
	}

	total := decimal.NewFromInt(int64(totalQuantity))
	hundred := decimal.NewFromInt(100)

	quantities := make([]int, len(mix))
	assigned := 0
	largestIdx := 0
	for i, line := range mix {
		share := decimal.NewFromFloat(line.Percentage).Mul(total).Div(hundred)
		q := int(share.Floor().IntPart())
		quantities[i] = q
		assigned += q
		if line.Percentage > mix[largestIdx].Percentage {
			largestIdx = i
		}
	}
	quantities[largestIdx] += totalQuantity - assigned

	result := make([]Allocation, 0, len(mix))
	for i, line := range mix {
		if quantities[i] == 0 {
			continue
		}
		result = append(result, Allocation{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    quantities[i],
		})
	}
	return result
}

// AllocateEven distributes a total as evenly as possible across the given
// products: everyone gets total/n, and the first total%n products get one
// extra unit. Used when the configured mix is unusable or a custom order has
// no item list yet.
func AllocateEven(totalQuantity int, mix []MixLine) []Allocation {
	if totalQuantity < 0 || len(mix) == 0 {
		return nil
	}
	base := totalQuantity / len(mix)
	remainder := totalQuantity % len(mix)

	result := make([]Allocation, 0, len(mix))
	for i, line := range mix {
		q := base
		if i < remainder {
			q++
		}
		if q == 0 {
			continue
		}
		result = append(result, Allocation{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    q,
		})
	}
	return result
}

// ResolveDemand computes the per-product demand of a single order from its
// tagged source. Standard demand goes through Allocate with the even-split
// fallback; custom demand is taken verbatim, skipping zero or unresolvable
// lines. The ConfigurationError, when the standard mix is unusable, is
// returned alongside the fallback result rather than instead of it.
func ResolveDemand(totalQuantity int, source DemandSource) ([]Allocation, error) {
	switch src := source.(type) {
	case StandardDemand:
		if sum, ok := ValidateMix(src.Mix); !ok {
			return AllocateEven(totalQuantity, src.Mix), &ConfigurationError{PercentageSum: sum}
		}
		return Allocate(totalQuantity, src.Mix), nil
	case CustomDemand:
		result := make([]Allocation, 0, len(src.Items))
		for _, item := range src.Items {
			if item.Quantity <= 0 || item.ProductID == 0 {
				continue
			}
			result = append(result, item)
		}
		return result, nil
	default:
		return nil, nil
	}
}
