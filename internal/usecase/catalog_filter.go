package usecase

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taabalselect/storefront/internal/domain"
	"github.com/taabalselect/storefront/internal/infrastructure/sheets"
	"github.com/taabalselect/storefront/internal/textutil"
)

// FilterProducts returns the products matching f, keeping feed order.
//
// Category must equal the product category after accent and case folding.
// Query matches when its folded form is a substring of the folded name,
// description, brand or category.
func FilterProducts(products []domain.Product, f domain.Filter) []domain.Product {
	query := textutil.Fold(strings.TrimSpace(f.Query))
	category := textutil.Fold(strings.TrimSpace(f.Category))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && textutil.Fold(p.Category) != category {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(p domain.Product, query string) bool {
	for _, field := range []string{p.Name, p.Description, p.Brand, p.Category} {
		if strings.Contains(textutil.Fold(field), query) {
			return true
		}
	}
	return false
}

// CountCategories lists distinct categories with their product counts,
// ordered with Spanish collation so "Ñ" and accented names sort naturally.
func CountCategories(products []domain.Product) []domain.CategoryCount {
	counts := make(map[string]int)
	for _, p := range products {
		name := p.Category
		if strings.TrimSpace(name) == "" {
			name = sheets.UncategorizedLabel
		}
		counts[name]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	collate.New(language.Spanish).SortStrings(names)

	out := make([]domain.CategoryCount, len(names))
	for i, name := range names {
		out[i] = domain.CategoryCount{Name: name, Count: counts[name]}
	}
	return out
}
