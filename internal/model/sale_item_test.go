package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreatePayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "complete", body: `{"name":"Coffee","quantity":2,"unitPrice":3.5}`},
		{name: "zero quantity is present", body: `{"name":"Coffee","quantity":0,"unitPrice":0}`},
		{name: "extra fields pass through", body: `{"name":"Tea","quantity":1,"unitPrice":1,"category":"drinks"}`},
		{name: "quantity only", body: `{"quantity":5}`, wantErr: ErrMissingFields},
		{name: "empty name", body: `{"name":"","quantity":1,"unitPrice":1}`, wantErr: ErrMissingFields},
		{name: "null quantity", body: `{"name":"A","quantity":null,"unitPrice":1}`, wantErr: ErrMissingFields},
		{name: "missing unitPrice", body: `{"name":"A","quantity":1}`, wantErr: ErrMissingFields},
		{name: "false name", body: `{"name":false,"quantity":1,"unitPrice":1}`, wantErr: ErrMissingFields},
		{name: "empty object", body: `{}`, wantErr: ErrMissingFields},
		{name: "array", body: `[]`, wantErr: ErrMalformedBody},
		{name: "null", body: `null`, wantErr: ErrMalformedBody},
		{name: "garbage", body: `{"name":`, wantErr: ErrMalformedBody},
		{name: "two documents", body: `{} {}`, wantErr: ErrMalformedBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreatePayload([]byte(tt.body))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidateCreateInput(t *testing.T) {
	assert.NoError(t, ValidateCreateInput(CreateSaleItemInput{Name: "A", Quantity: ptr(1.0), UnitPrice: ptr(2.0)}))
	assert.ErrorIs(t, ValidateCreateInput(CreateSaleItemInput{Quantity: ptr(1.0), UnitPrice: ptr(2.0)}), ErrMissingFields)
	assert.ErrorIs(t, ValidateCreateInput(CreateSaleItemInput{Name: "A", UnitPrice: ptr(2.0)}), ErrMissingFields)
	assert.ErrorIs(t, ValidateCreateInput(CreateSaleItemInput{Name: "A", Quantity: ptr(-1.0), UnitPrice: ptr(2.0)}), ErrNegativeNumber)
}

func TestValidateUpdateInput(t *testing.T) {
	assert.NoError(t, ValidateUpdateInput(UpdateSaleItemInput{Name: ptr("B")}))
	assert.ErrorIs(t, ValidateUpdateInput(UpdateSaleItemInput{UnitPrice: ptr(-0.5)}), ErrNegativeNumber)
	assert.True(t, UpdateSaleItemInput{}.Empty())
	assert.False(t, UpdateSaleItemInput{Date: ptr("2026-01-02")}.Empty())
}

func sampleItems() []SaleItem {
	return []SaleItem{
		{ID: "1", Name: "Espresso", Description: "Double shot", Quantity: 10, UnitPrice: 2.5, Category: "Coffee"},
		{ID: "2", Name: "Croissant", Description: "Butter", Quantity: 4, UnitPrice: 3, Category: "Bakery"},
		{ID: "3", Name: "Latte", Description: "With oat milk", Quantity: 6, UnitPrice: 4, Category: "Coffee"},
	}
}

func TestFilter(t *testing.T) {
	items := sampleItems()

	assert.Len(t, Filter(items, ""), 3)
	assert.Len(t, Filter(items, "   "), 3)

	coffee := Filter(items, "COFFEE")
	assert.Len(t, coffee, 2)

	oat := Filter(items, "oat")
	if assert.Len(t, oat, 1) {
		assert.Equal(t, ItemID("3"), oat[0].ID)
	}

	assert.Empty(t, Filter(items, "tea"))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleItems())

	assert.Equal(t, 3, s.TotalItems)
	assert.InDelta(t, 20.0, s.TotalQuantity, 1e-9)
	assert.InDelta(t, 25+12+24, s.TotalValue, 1e-9)
	assert.Equal(t, 2, s.Categories)

	empty := Summarize(nil)
	assert.Equal(t, SalesSummary{}, empty)
}

func TestItemIDDecoding(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    ItemID
		wantErr bool
	}{
		{name: "string", payload: `{"id":"abc-1"}`, want: "abc-1"},
		{name: "integer", payload: `{"id":7}`, want: "7"},
		{name: "large integer keeps digits", payload: `{"id":12345678901234567890}`, want: "12345678901234567890"},
		{name: "null", payload: `{"id":null}`, want: ""},
		{name: "missing", payload: `{"name":"x"}`, want: ""},
		{name: "boolean", payload: `{"id":true}`, wantErr: true},
		{name: "object", payload: `{"id":{"v":1}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item SaleItem
			err := json.Unmarshal([]byte(tt.payload), &item)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.ID)
		})
	}
}

func TestItemIDEncodesAsString(t *testing.T) {
	data, err := json.Marshal(SaleItem{ID: "7"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"7"`)
}
