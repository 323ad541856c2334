package sheets

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/taabalselect/storefront/internal/domain"
	"github.com/taabalselect/storefront/internal/textutil"
)

// Placeholders for blank cells
const (
	UnnamedProduct      = "(Sin nombre)"
	UncategorizedLabel  = "Sin categoría"
	syntheticIDTemplate = "p_%d"
)

// Feed layout: row 0 controls column visibility, row 1 holds headers,
// everything after is data.
const (
	controlRowIndex = 0
	headerRowIndex  = 1
	firstDataRow    = 2
)

var (
	imageSchemeRegex    = regexp.MustCompile(`^(https?://|data:image/)`)
	imageExtensionRegex = regexp.MustCompile(`\.(png|jpe?g|webp|gif|svg)(\?.*)?$`)
)

// record is one data row keyed by normalized header
type record map[string]string

// Interpret turns raw feed text into products and visibility flags.
// It never fails: a feed with fewer than two rows yields no products and
// default visibility, and malformed cells fall back to defaults.
func Interpret(text string) domain.Catalog {
	rows := ParseRows(text)
	if len(rows) < firstDataRow {
		return domain.Catalog{
			Products:   []domain.Product{},
			Visibility: domain.DefaultVisibility(),
		}
	}

	headers := make([]string, len(rows[headerRowIndex]))
	for i, h := range rows[headerRowIndex] {
		headers[i] = textutil.NormalizeKey(h)
	}

	records := buildRecords(headers, rows[firstDataRow:])
	fields := ResolveFields(headers)

	catalog := domain.Catalog{
		Products:   make([]domain.Product, 0, len(records)),
		Visibility: mapVisibility(rows[controlRowIndex], headers, fields),
	}
	for i, rec := range records {
		if !isActive(rec, fields) {
			continue
		}
		catalog.Products = append(catalog.Products, mapProduct(rec, fields, i))
	}
	return catalog
}

// buildRecords keys each data row by header; missing trailing cells are
// empty and rows that are blank across the header columns are dropped.
func buildRecords(headers []string, rows [][]string) []record {
	records := make([]record, 0, len(rows))
	for _, row := range rows {
		rec := make(record, len(headers))
		blank := true
		for i, key := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rec[key] = cell
			if !textutil.IsBlank(cell) {
				blank = false
			}
		}
		if !blank {
			records = append(records, rec)
		}
	}
	return records
}

// mapVisibility reads the control row cell above each resolved column.
// Blank, missing and unresolved cells are visible.
func mapVisibility(control, headers []string, fields FieldMap) domain.VisibilityFlags {
	visible := func(f Field) bool {
		key, ok := fields.Key(f)
		if !ok {
			return true
		}
		idx := indexOf(headers, key)
		if idx < 0 || idx >= len(control) || textutil.IsBlank(control[idx]) {
			return true
		}
		return textutil.IsTruthy(control[idx])
	}

	return domain.VisibilityFlags{
		ShowImage:       visible(FieldImage),
		ShowName:        visible(FieldName),
		ShowDescription: visible(FieldDescription),
		ShowBrand:       visible(FieldBrand),
		ShowCategory:    visible(FieldCategory),
		ShowPrice:       visible(FieldPrice),
	}
}

// isActive applies the row and column activation flags; an unresolved flag
// column lets the row through.
func isActive(rec record, fields FieldMap) bool {
	if key, ok := fields.Key(FieldRowActive); ok && !textutil.IsTruthy(rec[key]) {
		return false
	}
	if key, ok := fields.Key(FieldColumnActive); ok && !textutil.IsTruthy(rec[key]) {
		return false
	}
	return true
}

// mapProduct converts a record to a Product. idx is the record position
// and seeds the synthetic id.
func mapProduct(rec record, fields FieldMap, idx int) domain.Product {
	cell := func(f Field) string {
		key, ok := fields.Key(f)
		if !ok {
			return ""
		}
		return strings.TrimSpace(rec[key])
	}

	id := cell(FieldID)
	if id == "" {
		id = fmt.Sprintf(syntheticIDTemplate, idx+1)
	}
	name := cell(FieldName)
	if name == "" {
		name = UnnamedProduct
	}
	category := cell(FieldCategory)
	if category == "" {
		category = UncategorizedLabel
	}
	image := cell(FieldImage)
	if !IsLikelyImageURL(image) {
		image = ""
	}
	price := 0.0
	if key, ok := fields.Key(FieldPrice); ok {
		price = textutil.ToNumber(rec[key])
	}
	if price < 0 {
		price = 0
	}

	raw := make(map[string]string, len(rec))
	for k, v := range rec {
		raw[k] = v
	}

	return domain.Product{
		ID:          id,
		Name:        name,
		Description: cell(FieldDescription),
		Brand:       cell(FieldBrand),
		Category:    category,
		Image:       image,
		Price:       price,
		Raw:         raw,
	}
}

// IsLikelyImageURL accepts http(s) and data:image references, or anything
// ending in a common image extension with an optional query string.
func IsLikelyImageURL(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" {
		return false
	}
	return imageSchemeRegex.MatchString(s) || imageExtensionRegex.MatchString(s)
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
