package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/facility_backend/models"
	"github.com/gin-gonic/gin"
)

type transitionRequest struct {
	Status models.ProcessStatus `json:"status" binding:"required"`
}

type assignRequest struct {
	AssigneeId *int `json:"assignee_id"`
	TeamId     *int `json:"team_id"`
}

func registerMaintenanceRoutes(r *gin.Engine) {
	maintenance := r.Group("/maintenance")
	maintenance.Use(func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		c.Next()
	})
	{
		maintenance.POST("/preventives", func(c *gin.Context) {
			var input models.NewPreventive
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			preventive, err := models.CreatePreventive(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, preventive)
		})
		maintenance.GET("/preventives", func(c *gin.Context) {
			preventives, err := models.ListPreventives(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, preventives)
		})
		maintenance.GET("/preventives/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			preventive, err := models.GetPreventive(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, preventive)
		})
		maintenance.PUT("/preventives/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewPreventive
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			preventive, err := models.UpdatePreventive(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, preventive)
		})

		maintenance.POST("", func(c *gin.Context) {
			var input models.NewMaintenance
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			maintenance, err := models.CreateMaintenance(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, maintenance)
		})
		maintenance.GET("", func(c *gin.Context) {
			var status *models.ProcessStatus
			if v := stringQuery(c, "status"); v != nil {
				s := models.ProcessStatus(*v)
				status = &s
			}
			var mType *models.MaintenanceType
			if v := stringQuery(c, "type"); v != nil {
				t := models.MaintenanceType(*v)
				mType = &t
			}
			maintenances, err := models.ListMaintenances(c.Request.Context(), status, mType)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, maintenances)
		})
		maintenance.GET("/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			maintenance, err := models.GetMaintenance(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, maintenance)
		})
		maintenance.POST("/:id/status", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var req transitionRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondBindingError(c, err)
				return
			}
			maintenance, err := models.TransitionMaintenanceStatus(c.Request.Context(), id, req.Status)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, maintenance)
		})
		maintenance.POST("/:id/assign", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var req assignRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondBindingError(c, err)
				return
			}
			maintenance, err := models.AssignMaintenance(c.Request.Context(), id, req.AssigneeId, req.TeamId)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, maintenance)
		})
		maintenance.POST("/:id/items", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewMaintenanceItem
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			link, err := models.ConsumeMaintenanceItem(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, link)
		})
		maintenance.GET("/:id/items", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			items, err := models.ListMaintenanceItems(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, items)
		})
	}
}
