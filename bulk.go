package loja

import (
	"bytes"
	"net/url"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Form field names shared by the create, edit and inline bulk edit forms.
const (
	FieldName        = "nomeProduto"
	FieldDescription = "descricao"
	FieldPrice       = "preco"
	FieldImage       = "imagemProduto"
)

var bulkFields = []string{FieldName, FieldDescription, FieldPrice}

// ParseBulkForm groups inline edit values keyed "<field>_<id>" into one
// BulkItem per product id. Keys whose suffix is not a UUID are ignored.
// Uploads are matched the same way via "imagemProduto_<id>". Items are
// returned ordered by id.
func ParseBulkForm(values url.Values, uploads map[string]*Upload) []BulkItem {
	byID := make(map[uuid.UUID]*BulkItem)

	item := func(id uuid.UUID) *BulkItem {
		it, ok := byID[id]
		if !ok {
			it = &BulkItem{ID: id}
			byID[id] = it
		}
		return it
	}

	for key, vals := range values {
		field, id, ok := splitBulkKey(key)
		if !ok || !slices.Contains(bulkFields, field) || len(vals) == 0 {
			continue
		}

		it := item(id)
		switch field {
		case FieldName:
			it.Input.Name = vals[0]
		case FieldDescription:
			it.Input.Description = vals[0]
		case FieldPrice:
			it.Input.Price = vals[0]
		}
	}

	for key, up := range uploads {
		field, id, ok := splitBulkKey(key)
		if !ok || field != FieldImage || up == nil {
			continue
		}
		item(id).Image = up
	}

	items := make([]BulkItem, 0, len(byID))
	for _, it := range byID {
		items = append(items, *it)
	}
	slices.SortFunc(items, func(a, b BulkItem) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	return items
}

func splitBulkKey(key string) (string, uuid.UUID, bool) {
	i := strings.LastIndex(key, "_")
	if i <= 0 || i == len(key)-1 {
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(key[i+1:])
	if err != nil {
		return "", uuid.Nil, false
	}

	return key[:i], id, true
}
