package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/facility_backend/models"
	"github.com/gin-gonic/gin"
)

func registerFinanceRoutes(r *gin.Engine) {
	finance := r.Group("/finance")
	finance.Use(func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		c.Next()
	})
	{
		finance.POST("/purchase-orders", func(c *gin.Context) {
			var input models.NewPurchaseOrder
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			order, err := models.CreatePurchaseOrder(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, order)
		})
		finance.GET("/purchase-orders", func(c *gin.Context) {
			var status *models.PurchaseOrderStatus
			if v := stringQuery(c, "status"); v != nil {
				s := models.PurchaseOrderStatus(*v)
				status = &s
			}
			orders, err := models.ListPurchaseOrders(c.Request.Context(), status)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, orders)
		})
		finance.GET("/purchase-orders/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			order, err := models.GetPurchaseOrder(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, order)
		})
		finance.POST("/purchase-orders/:id/issue", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			order, err := models.IssuePurchaseOrder(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, order)
		})
		finance.POST("/purchase-orders/:id/receive", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewGoodsReceipt
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			receipt, err := models.ReceiveGoods(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, receipt)
		})
	}
}
