package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taabalselect/storefront/internal/domain"
	"github.com/taabalselect/storefront/internal/textutil"
)

// wireItem is the stored line. The map key is the id; price and qty are loosely typed so a
// hand-edited record still loads
type wireItem struct {
	Name  string `json:"name"`
	Price any    `json:"price"`
	Image string `json:"image"`
	Qty   any    `json:"qty"`
}

// encodeItems writes the cart as a JSON object keyed by id, keys in
// insertion order
func encodeItems(items map[string]*domain.LineItem, order []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(items[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeItems reads a record written by encodeItems, keeping key order.
// A payload that is not a JSON object, or is truncated, is an error;
// individual entries that are not objects are skipped.
func decodeItems(data []byte) (map[string]*domain.LineItem, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("read cart record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, errors.New("cart record is not an object")
	}

	items := make(map[string]*domain.LineItem)
	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("read cart key: %w", err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("read cart entry %q: %w", key, err)
		}

		var w wireItem
		if err := json.Unmarshal(raw, &w); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		if _, seen := items[key]; !seen {
			order = append(order, key)
		}
		items[key] = &domain.LineItem{
			ID:    key,
			Name:  w.Name,
			Price: textutil.NumberFrom(w.Price),
			Image: w.Image,
			Qty:   textutil.ToQty(w.Qty),
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("read cart record end: %w", err)
	}
	return items, order, nil
}
