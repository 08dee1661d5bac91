package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/mavunohub/internal/auth"
	"github.com/MikeMC777/mavunohub/internal/httpx"
	ord "github.com/MikeMC777/mavunohub/internal/order"
	"github.com/MikeMC777/mavunohub/internal/payment"
)

func registerRoutes(r gin.IRouter, orders *ord.Service, payments *payment.Service, resolver auth.Resolver) {
	api := r.Group("/api", httpx.Identity(resolver))

	api.GET("/orders", listOrdersHandler(orders))
	api.POST("/orders", createOrderHandler(orders))
	api.GET("/orders/:id", getOrderHandler(orders))
	api.PATCH("/orders/:id", httpx.RequireStaff(), advanceOrderHandler(orders))
	api.DELETE("/orders/:id", deleteOrderHandler(orders))
	api.GET("/orders/:id/payments", listPaymentsHandler(orders, payments))

	api.POST("/payments", recordPaymentHandler(payments))
}

// listOrdersHandler godoc
// @Summary  List orders visible to the caller
// @Description Farmers see orders containing their products; everyone else sees the orders they placed.
// @Tags     orders
// @Produce  json
// @Param    X-User-ID header string true "acting user"
// @Success  200 {array}  ord.Response
// @Failure  401 {object} httpx.HTTPError
// @Router   /orders [get]
func listOrdersHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.CurrentIdentity(c)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		list, err := svc.List(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		out := make([]ord.Response, 0, len(list))
		for i := range list {
			out = append(out, list[i].Response())
		}
		c.JSON(http.StatusOK, out)
	}
}

// createOrderHandler godoc
// @Summary  Create an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    X-User-ID header string true "acting user"
// @Param    body body ord.CreateOrderRequest true "order lines"
// @Success  201 {object} ord.Response
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders [post]
func createOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.CurrentIdentity(c)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		var req ord.CreateOrderRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		o, err := svc.Create(c.Request.Context(), id.UserID, req)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, o.Response())
	}
}

// getOrderHandler godoc
// @Summary  Get an order
// @Tags     orders
// @Produce  json
// @Param    X-User-ID header string true "acting user"
// @Param    id path string true "order id"
// @Success  200 {object} ord.Response
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders/{id} [get]
func getOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, o.Response())
	}
}

// advanceOrderHandler godoc
// @Summary  Advance the order to its next status (staff only)
// @Tags     orders
// @Produce  json
// @Param    X-User-ID header string true "acting user"
// @Param    id path string true "order id"
// @Success  200 {object} httpx.DetailResponse
// @Failure  400 {object} httpx.DetailResponse
// @Failure  403 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders/{id} [patch]
func advanceOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Advance(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, httpx.DetailResponse{Detail: ord.AdvancedMessage(st)})
	}
}

// deleteOrderHandler godoc
// @Summary  Delete an order
// @Tags     orders
// @Param    X-User-ID header string true "acting user"
// @Param    id path string true "order id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders/{id} [delete]
func deleteOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// listPaymentsHandler godoc
// @Summary  List payments recorded against an order
// @Tags     payments
// @Produce  json
// @Param    X-User-ID header string true "acting user"
// @Param    id path string true "order id"
// @Success  200 {array} payment.Response
// @Failure  404 {object} httpx.HTTPError
// @Router   /orders/{id}/payments [get]
func listPaymentsHandler(orders *ord.Service, payments *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		list, err := payments.ListByOrder(c.Request.Context(), o.ID)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		out := make([]payment.Response, 0, len(list))
		for i := range list {
			out = append(out, list[i].Response())
		}
		c.JSON(http.StatusOK, out)
	}
}

// recordPaymentHandler godoc
// @Summary  Record a payment
// @Tags     payments
// @Accept   json
// @Produce  json
// @Param    X-User-ID header string true "acting user"
// @Param    body body payment.RecordPaymentRequest true "payment"
// @Success  201 {object} payment.Response
// @Failure  400 {object} httpx.HTTPError
// @Failure  404 {object} httpx.HTTPError
// @Router   /payments [post]
func recordPaymentHandler(svc *payment.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.RecordPaymentRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		p, err := svc.Record(c.Request.Context(), req)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, p.Response())
	}
}
