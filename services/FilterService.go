package services

import (
	"sort"
	"strconv"
	"strings"

	"emarket/entities"
)

// ComputeDisplayList derives the displayable product list. When any filter or
// search is active and the full-catalog cache has completed, the cache is the
// source; otherwise filtering operates over whatever has been paged so far.
// Deterministic: identical inputs produce an identical list.
func ComputeDisplayList(criteria entities.FilterCriteria, paged []entities.Product, cached []entities.Product, isCached bool) []entities.Product {
	source := paged
	if isCached && criteria.HasActiveFilter() {
		source = cached
	}

	search := strings.ToLower(strings.TrimSpace(criteria.SearchText))
	result := make([]entities.Product, 0, len(source))
	for _, p := range source {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if len(criteria.SelectedBrands) > 0 {
			if _, ok := criteria.SelectedBrands[p.Brand]; !ok {
				continue
			}
		}
		if len(criteria.SelectedModels) > 0 {
			if _, ok := criteria.SelectedModels[p.Model]; !ok {
				continue
			}
		}
		result = append(result, p)
	}

	switch criteria.Sort {
	case entities.SortNewToOld:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt > result[j].CreatedAt
		})
	case entities.SortPriceHighToLow:
		sort.SliceStable(result, func(i, j int) bool {
			return ParsePrice(result[i].Price) > ParsePrice(result[j].Price)
		})
	case entities.SortPriceLowToHigh:
		sort.SliceStable(result, func(i, j int) bool {
			return ParsePrice(result[i].Price) < ParsePrice(result[j].Price)
		})
	default:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt < result[j].CreatedAt
		})
	}
	return result
}

// ParsePrice reads a locale-formatted price like "999.99 ₺" or "1.299,50 TL".
// Currency text is stripped and the decimal separator normalized; anything
// unparseable is worth 0 rather than an error.
func ParsePrice(price string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, price)
	if cleaned == "" {
		return 0
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	if lastComma > lastDot {
		// comma is the decimal separator, dots are thousands
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", -1)
		if i := strings.LastIndex(cleaned, "."); i >= 0 {
			cleaned = strings.ReplaceAll(cleaned[:i], ".", "") + cleaned[i:]
		}
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// AvailableBrands lists the distinct brands of a product set, sorted, for
// populating a filter surface.
func AvailableBrands(products []entities.Product) []string {
	return distinct(products, func(p entities.Product) string { return p.Brand })
}

func AvailableModels(products []entities.Product) []string {
	return distinct(products, func(p entities.Product) string { return p.Model })
}

func distinct(products []entities.Product, key func(entities.Product) string) []string {
	seen := map[string]struct{}{}
	values := []string{}
	for _, p := range products {
		k := key(p)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, k)
	}
	sort.Strings(values)
	return values
}
