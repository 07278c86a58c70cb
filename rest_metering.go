package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/facility_backend/models"
	"github.com/gin-gonic/gin"
)

func registerMeteringRoutes(r *gin.Engine) {
	metering := r.Group("/metering")
	metering.Use(func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		c.Next()
	})
	{
		metering.POST("/meters", func(c *gin.Context) {
			var input models.NewMeter
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			meter, err := models.CreateMeter(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, meter)
		})
		metering.GET("/meters", func(c *gin.Context) {
			var meterType *models.MeterType
			if v := stringQuery(c, "type"); v != nil {
				t := models.MeterType(*v)
				meterType = &t
			}
			meters, err := models.ListMeters(c.Request.Context(), meterType)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, meters)
		})
		metering.GET("/meters/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			meter, err := models.GetMeter(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, meter)
		})
		metering.PUT("/meters/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewMeter
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			meter, err := models.UpdateMeter(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, meter)
		})

		metering.POST("/meters/:id/triggers", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewMeterMaintenanceTrigger
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			trigger, err := models.CreateTrigger(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, trigger)
		})
		metering.GET("/meters/:id/triggers", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			triggers, err := models.ListTriggers(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, triggers)
		})
		metering.DELETE("/triggers/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			trigger, err := models.DeleteTrigger(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, trigger)
		})

		metering.POST("/readings", func(c *gin.Context) {
			var input models.NewMeterReading
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			reading, err := models.RecordReading(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, reading)
		})
		metering.GET("/meters/:id/readings", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			limit := 0
			if v := intQuery(c, "limit"); v != nil {
				limit = *v
			}
			readings, err := models.ListReadings(c.Request.Context(), id, limit)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, readings)
		})
	}
}
