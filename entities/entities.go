package entities

import "strings"

type Product struct {
	Id          string `json:"id"`
	CreatedAt   string `json:"createdAt"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Model       string `json:"model"`
	Brand       string `json:"brand"`
}

// CartLine is one persisted cart record: the product snapshot taken at the
// time of the first add, plus the accumulated quantity. Quantity is always >= 1
// for a stored line.
type CartLine struct {
	ProductId string
	Name      string
	Price     string
	Image     string
	Quantity  int
}

type SortOption string

const (
	SortOldToNew       SortOption = "oldToNew"
	SortNewToOld       SortOption = "newToOld"
	SortPriceHighToLow SortOption = "priceHighToLow"
	SortPriceLowToHigh SortOption = "priceLowToHigh"
)

type FilterCriteria struct {
	Sort           SortOption
	SelectedBrands map[string]struct{}
	SelectedModels map[string]struct{}
	SearchText     string
}

func NewFilterCriteria() FilterCriteria {
	return FilterCriteria{
		Sort:           SortOldToNew,
		SelectedBrands: map[string]struct{}{},
		SelectedModels: map[string]struct{}{},
	}
}

// HasActiveFilter reports whether any constraint is set. Whitespace-only
// search text counts as no constraint.
func (f FilterCriteria) HasActiveFilter() bool {
	return len(f.SelectedBrands) > 0 ||
		len(f.SelectedModels) > 0 ||
		strings.TrimSpace(f.SearchText) != ""
}

type ListState string

const (
	StateIdle    ListState = "idle"
	StateLoading ListState = "loading"
	StateLoaded  ListState = "loaded"
	StateEmpty   ListState = "empty"
	StateFailed  ListState = "failed"
)

// ListSnapshot is the consumer-facing view of the product list: the displayable
// products after filtering and sorting, plus the flags a screen needs to render
// spinners, badges and errors. Slices and sets are fresh copies on every emit.
type ListSnapshot struct {
	State             ListState
	Products          []Product
	IsFetching        bool
	IsLastPage        bool
	IsFiltering       bool
	CartTotalQuantity int
	FavoriteIds       map[string]struct{}
	LastError         error
}

type CartSummary struct {
	Items      []CartLine
	TotalPrice float64
}
