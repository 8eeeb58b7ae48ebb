package handler

import (
	"net/http"
	"strconv"

	"derby-shop-api/internal/dto"
	"derby-shop-api/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	checkoutService service.CheckoutService
	orderService    service.OrderService
}

func NewOrderHandler(checkoutService service.CheckoutService, orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

func (h *OrderHandler) CreateOrderAndCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.checkoutService.CreateOrderAndCheckout(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, &dto.CheckoutResponse{
		Status:  http.StatusCreated,
		Msg:     "Order created and Stripe session initiated",
		OrderID: result.OrderID,
		URL:     result.URL,
	})
}

func (h *OrderHandler) GetAllOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListOrders(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{Status: http.StatusOK, Result: orders})
}

func (h *OrderHandler) GetOneOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{Status: http.StatusOK, Result: order})
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.orderService.UpdateStatus(ctx, orderID, req.Status); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{
		Status: http.StatusOK,
		Msg:    "Order status updated successfully!",
	})
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	if err := h.orderService.DeleteOrder(ctx, orderID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.Response{
		Status: http.StatusOK,
		Msg:    "Order deleted successfully!",
	})
}

func orderIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	return uint(id), nil
}
