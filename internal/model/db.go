package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPaid       OrderStatus = "paid"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusPaid:
		return true
	}
	return false
}

type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Title     string          `gorm:"size:255;not null" json:"title"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"` // live price, not used for past orders
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	Picture   string          `gorm:"size:255" json:"picture"`
	Alt       string          `gorm:"size:255" json:"alt"`
	CreatedAt time.Time       `json:"created_at"`
}

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        string          `gorm:"column:users_id;size:64;index;not null" json:"users_id"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"` // declared by the buyer at checkout
	TotalProducts int             `gorm:"not null" json:"total_products"`
	Status        OrderStatus     `gorm:"size:32;index;not null" json:"status"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

type OrderItem struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// FK → orders.id
	OrderID uint `gorm:"column:orders_id;index;not null" json:"orders_id"`
	// FK → products.id
	ProductID uint            `gorm:"column:products_id;index;not null" json:"products_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"` // snapshot at order time
}

func (OrderItem) TableName() string {
	return "order_details"
}

// OrderItemView is a line item joined with the product fields shown to buyers.
type OrderItemView struct {
	OrderItem
	Title   string `json:"title"`
	Picture string `json:"picture"`
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
