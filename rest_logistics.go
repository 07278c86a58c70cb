package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/facility_backend/models"
	"github.com/gin-gonic/gin"
)

func registerLogisticsRoutes(r *gin.Engine) {
	logistics := r.Group("/logistics")
	logistics.Use(func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		c.Next()
	})
	{
		logistics.POST("/items", func(c *gin.Context) {
			var input models.NewItem
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			item, err := models.CreateItem(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, item)
		})
		logistics.GET("/items", func(c *gin.Context) {
			items, err := models.ListItems(c.Request.Context(), stringQuery(c, "name"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, items)
		})
		logistics.GET("/items/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			item, err := models.GetItem(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, item)
		})
		logistics.PUT("/items/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewItem
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			item, err := models.UpdateItem(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, item)
		})

		logistics.POST("/warehouses", func(c *gin.Context) {
			var input models.NewWarehouse
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			warehouse, err := models.CreateWarehouse(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, warehouse)
		})
		logistics.GET("/warehouses", func(c *gin.Context) {
			warehouses, err := models.ListWarehouses(c.Request.Context(), stringQuery(c, "name"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, warehouses)
		})
		logistics.PUT("/warehouses/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewWarehouse
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			warehouse, err := models.UpdateWarehouse(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, warehouse)
		})
		logistics.DELETE("/warehouses/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			warehouse, err := models.DeleteWarehouse(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, warehouse)
		})

		logistics.GET("/stocks", func(c *gin.Context) {
			summaries, err := models.ListStockSummaries(c.Request.Context(), intQuery(c, "warehouse_id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, summaries)
		})

		logistics.GET("/movements", func(c *gin.Context) {
			movements, err := models.ListStockMovements(c.Request.Context(),
				intQuery(c, "item_id"), intQuery(c, "warehouse_id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, movements)
		})
		logistics.POST("/movements", func(c *gin.Context) {
			var input models.NewStockMovement
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			movement, err := models.CreateManualStockMovement(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, movement)
		})
	}
}
