package sheets

import "strings"

// Field is a semantic column of the product feed
type Field int

const (
	FieldID Field = iota
	FieldName
	FieldDescription
	FieldBrand
	FieldCategory
	FieldImage
	FieldPrice
	FieldRowActive
	FieldColumnActive
)

var fieldNames = map[Field]string{
	FieldID:           "id",
	FieldName:         "name",
	FieldDescription:  "description",
	FieldBrand:        "brand",
	FieldCategory:     "category",
	FieldImage:        "image",
	FieldPrice:        "price",
	FieldRowActive:    "row_active",
	FieldColumnActive: "column_active",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Candidates is a prioritized list of normalized header names for a field
type Candidates []string

// Resolve picks the header for a field: the first candidate that matches a
// header exactly, otherwise the first header containing a candidate, taking
// candidates in priority order. ok is false when nothing matches.
func (c Candidates) Resolve(headers []string) (key string, ok bool) {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		if h != "" {
			present[h] = true
		}
	}
	for _, cand := range c {
		if present[cand] {
			return cand, true
		}
	}
	for _, cand := range c {
		for _, h := range headers {
			if h != "" && strings.Contains(h, cand) {
				return h, true
			}
		}
	}
	return "", false
}

// fieldCandidates lists accepted header names, Spanish first
var fieldCandidates = map[Field]Candidates{
	FieldName:         {"nombre", "producto", "name", "titulo", "title"},
	FieldDescription:  {"descripcion", "description", "detalle", "resumen"},
	FieldBrand:        {"marca", "brand"},
	FieldCategory:     {"categoria", "category"},
	FieldImage:        {"imagen", "image", "url_imagen", "foto", "image_url", "url", "img"},
	FieldPrice:        {"precio", "price", "costo"},
	FieldID:           {"id", "sku", "codigo", "codigo_producto", "code"},
	FieldRowActive:    {"activo", "activo_fila", "habilitado", "visible", "mostrar"},
	FieldColumnActive: {"activo_columna", "columna_activa", "activo_general", "publicado", "publish"},
}

// FieldMap is the resolved header key per semantic field
type FieldMap map[Field]string

// Key returns the header key of f and whether it was resolved
func (m FieldMap) Key(f Field) (string, bool) {
	k, ok := m[f]
	return k, ok
}

// ResolveFields maps every semantic field to a header of the feed.
// Unresolved fields are absent from the result.
func ResolveFields(headers []string) FieldMap {
	m := make(FieldMap, len(fieldCandidates))
	for f, cands := range fieldCandidates {
		if key, ok := cands.Resolve(headers); ok {
			m[f] = key
		}
	}
	return m
}
