package dto

import (
	"derby-shop-api/internal/model"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID uint            `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name"`
}

type CheckoutRequest struct {
	UserID      string          `json:"userId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []*CartItem     `json:"items"`
}

type CheckoutResponse struct {
	Status  int    `json:"status"`
	Msg     string `json:"msg"`
	OrderID uint   `json:"orderId"`
	URL     string `json:"url"`
}

type UpdateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

type OrderDetail struct {
	*model.Order
	Items []*model.OrderItemView `json:"items"`
}

type Response struct {
	Status int    `json:"status"`
	Msg    string `json:"msg,omitempty"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}
