package handler

import (
	"errors"
	"net/http"

	"derby-shop-api/internal/dto"
	"derby-shop-api/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NewHTTPErrorHandler renders service errors and echo errors in the API's response shape.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg, kind := http.StatusInternalServerError, "Internal Server Error", ""

		var he *echo.HTTPError
		var se *service.Error
		switch {
		case errors.As(err, &se):
			kind = se.Kind.String()
			status, msg = statusForKind(se)
		case errors.As(err, &he):
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(he.Code)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, dto.Response{Status: status, Msg: msg, Error: kind})
		}
		if err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}

func statusForKind(err *service.Error) (int, string) {
	switch err.Kind {
	case service.KindValidation:
		msg := "Invalid request"
		if err.Err != nil {
			msg = err.Err.Error()
		}
		return http.StatusBadRequest, msg
	case service.KindNotFound:
		return http.StatusNotFound, "Order not found"
	// no current service path returns this kind
	case service.KindInsufficientStock:
		return http.StatusConflict, "Insufficient stock"
	case service.KindSignatureInvalid:
		return http.StatusBadRequest, "Webhook Error: invalid signature"
	case service.KindGateway:
		return http.StatusBadGateway, "Payment provider unavailable, order was not created"
	case service.KindStorage:
		return http.StatusInternalServerError, "Storage failure"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}
