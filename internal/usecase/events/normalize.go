package events

import (
	"github.com/AppFriend/DrGolly-sub001/internal/dto"
	"github.com/AppFriend/DrGolly-sub001/internal/entity"
)

// normalizeItems resolves the heterogeneous upstream item shapes into line
// items. Precedence, documented once here instead of fallback chains at every
// call site:
//
//	product id: product_id, then id
//	name:       name, then title
//	quantity:   quantity, then qty, default 1 (floored at 1)
//	unit price: price, then unit_price, default 0
//
// line_total is always quantity * unit price.
func normalizeItems(items []dto.Item) []entity.LineItem {
	normalized := make([]entity.LineItem, 0, len(items))

	for _, item := range items {
		normalized = append(normalized, normalizeItem(item))
	}

	return normalized
}

func normalizeItem(item dto.Item) entity.LineItem {
	productID := item.ProductID
	if productID == "" {
		productID = item.ID
	}

	name := item.Name
	if name == "" {
		name = item.Title
	}

	quantity := 1
	switch {
	case item.Quantity != nil:
		quantity = *item.Quantity
	case item.Qty != nil:
		quantity = *item.Qty
	}
	if quantity < 1 {
		quantity = 1
	}

	var unitPrice float64
	switch {
	case item.Price != nil:
		unitPrice = *item.Price
	case item.UnitPrice != nil:
		unitPrice = *item.UnitPrice
	}

	return entity.LineItem{
		ProductID: productID,
		Name:      name,
		SKU:       item.SKU,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: float64(quantity) * unitPrice,
		Category:  item.Category,
	}
}
