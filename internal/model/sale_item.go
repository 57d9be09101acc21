package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SaleItem is owned by the remote backend. The proxy never builds one; the
// CLI decodes them for display and summaries.
type SaleItem struct {
	ID          ItemID  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// ItemID is a backend item id. Backends send it either as a JSON string or
// as a number; numbers keep their literal form.
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if string(raw) == "null" {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*id = ItemID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("item id must be a string or a number, got %s", raw)
	}
	*id = ItemID(n.String())
	return nil
}

func (id ItemID) String() string {
	return string(id)
}

func (i SaleItem) Total() float64 {
	return i.Quantity * i.UnitPrice
}

type CreateSaleItemInput struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
	Category    *string  `json:"category,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

type UpdateSaleItemInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unitPrice,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

func (u UpdateSaleItemInput) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Quantity == nil &&
		u.UnitPrice == nil && u.Category == nil && u.Date == nil
}

var (
	ErrMalformedBody  = errors.New("body is not a JSON object")
	ErrMissingFields  = errors.New("name, quantity and unitPrice are required")
	ErrNegativeNumber = errors.New("quantity and unitPrice must not be negative")
)

// ValidateCreatePayload checks a raw create request the way the store UI
// always has: name must be truthy, quantity and unitPrice must be present
// and not null. Everything else is left to the backend.
func ValidateCreatePayload(body []byte) error {
	var doc map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return ErrMalformedBody
	}
	if dec.More() {
		return ErrMalformedBody
	}

	if !truthy(doc["name"]) || !present(doc["quantity"]) || !present(doc["unitPrice"]) {
		return ErrMissingFields
	}
	return nil
}

// ValidateCreateInput is the typed counterpart used before a request is sent.
func ValidateCreateInput(in CreateSaleItemInput) error {
	if in.Name == "" || in.Quantity == nil || in.UnitPrice == nil {
		return ErrMissingFields
	}
	if *in.Quantity < 0 || *in.UnitPrice < 0 {
		return ErrNegativeNumber
	}
	return nil
}

func ValidateUpdateInput(in UpdateSaleItemInput) error {
	if in.Quantity != nil && *in.Quantity < 0 {
		return ErrNegativeNumber
	}
	if in.UnitPrice != nil && *in.UnitPrice < 0 {
		return ErrNegativeNumber
	}
	return nil
}

func present(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}
	return string(bytes.TrimSpace(raw)) != "null"
}

// truthy rejects null, false, 0 and ""; objects and arrays always count.
func truthy(raw json.RawMessage) bool {
	if !present(raw) {
		return false
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch val := v.(type) {
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	default:
		return true
	}
}

// Filter keeps the items whose name, description or category contains query,
// ignoring case. An empty query keeps everything.
func Filter(items []SaleItem, query string) []SaleItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]SaleItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(strings.ToLower(item.Description), q) ||
			strings.Contains(strings.ToLower(item.Category), q) {
			out = append(out, item)
		}
	}
	return out
}

type SalesSummary struct {
	TotalItems    int     `json:"totalItems"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalValue    float64 `json:"totalValue"`
	Categories    int     `json:"categories"`
}

func Summarize(items []SaleItem) SalesSummary {
	categories := make(map[string]struct{})
	s := SalesSummary{TotalItems: len(items)}

	for _, item := range items {
		s.TotalQuantity += item.Quantity
		s.TotalValue += item.Total()
		categories[item.Category] = struct{}{}
	}
	s.Categories = len(categories)

	return s
}
