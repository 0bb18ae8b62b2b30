package repository

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"petclinic/internal/domain"
)

// catalogPrice returns the list price of the product or service an item points at.
func catalogPrice(tx *gorm.DB, it *domain.InvoiceItem) (decimal.Decimal, error) {
	var price decimal.Decimal
	var err error

	switch it.ItemType {
	case domain.ItemProduct:
		if it.ProductID == nil {
			return price, ErrUnknownCatalogItem
		}
		var p domain.Product
		err = tx.Select("price").First(&p, *it.ProductID).Error
		price = p.Price
	case domain.ItemService:
		if it.ServiceID == nil {
			return price, ErrUnknownCatalogItem
		}
		var s domain.Service
		err = tx.Select("price").First(&s, *it.ServiceID).Error
		price = s.Price
	default:
		return price, ErrUnknownCatalogItem
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return price, ErrUnknownCatalogItem
	}
	return price, err
}

// attachItemNames fills ItemName from the products and services tables.
func attachItemNames(tx *gorm.DB, items []domain.InvoiceItem) error {
	var productIDs, serviceIDs []int64
	for _, it := range items {
		if it.ProductID != nil {
			productIDs = append(productIDs, *it.ProductID)
		}
		if it.ServiceID != nil {
			serviceIDs = append(serviceIDs, *it.ServiceID)
		}
	}

	products := map[int64]string{}
	if len(productIDs) > 0 {
		var rows []domain.Product
		if err := tx.Select("id, name").Where("id IN ?", productIDs).Find(&rows).Error; err != nil {
			return err
		}
		for _, p := range rows {
			products[p.ID] = p.Name
		}
	}

	services := map[int64]string{}
	if len(serviceIDs) > 0 {
		var rows []domain.Service
		if err := tx.Select("id, name").Where("id IN ?", serviceIDs).Find(&rows).Error; err != nil {
			return err
		}
		for _, s := range rows {
			services[s.ID] = s.Name
		}
	}

	for i := range items {
		switch {
		case items[i].ProductID != nil:
			items[i].ItemName = products[*items[i].ProductID]
		case items[i].ServiceID != nil:
			items[i].ItemName = services[*items[i].ServiceID]
		}
	}
	return nil
}
