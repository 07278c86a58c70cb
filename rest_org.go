package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/facility_backend/models"
	"github.com/gin-gonic/gin"
)

func registerOrgRoutes(r *gin.Engine) {
	org := r.Group("/org")
	org.Use(func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		c.Next()
	})
	{
		org.POST("/sites", func(c *gin.Context) {
			var input models.NewSite
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			site, err := models.CreateSite(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, site)
		})
		org.GET("/sites", func(c *gin.Context) {
			sites, err := models.ListSites(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, sites)
		})
		org.GET("/sites/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			site, err := models.GetSite(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, site)
		})

		org.POST("/buildings", func(c *gin.Context) {
			var input models.NewBuilding
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			building, err := models.CreateBuilding(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, building)
		})
		org.GET("/buildings", func(c *gin.Context) {
			buildings, err := models.ListBuildings(c.Request.Context(), intQuery(c, "site_id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, buildings)
		})

		org.POST("/floors", func(c *gin.Context) {
			var input models.NewFloor
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			floor, err := models.CreateFloor(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, floor)
		})
		org.GET("/floors", func(c *gin.Context) {
			floors, err := models.ListFloors(c.Request.Context(), intQuery(c, "building_id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, floors)
		})

		org.POST("/zones", func(c *gin.Context) {
			var input models.NewZone
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			zone, err := models.CreateZone(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, zone)
		})
		org.GET("/zones", func(c *gin.Context) {
			zones, err := models.ListZones(c.Request.Context(), intQuery(c, "floor_id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, zones)
		})

		org.POST("/spaces", func(c *gin.Context) {
			var input models.NewSpace
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			space, err := models.CreateSpace(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, space)
		})
		org.GET("/spaces", func(c *gin.Context) {
			spaces, err := models.ListSpaces(c.Request.Context(), intQuery(c, "floor_id"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, spaces)
		})

		org.POST("/companies", func(c *gin.Context) {
			var input models.NewCompany
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			company, err := models.CreateCompany(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, company)
		})
		org.GET("/companies", func(c *gin.Context) {
			var companyType *models.CompanyType
			if v := stringQuery(c, "type"); v != nil {
				t := models.CompanyType(*v)
				companyType = &t
			}
			companies, err := models.ListCompanies(c.Request.Context(), companyType)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, companies)
		})
	}

	assets := r.Group("/assets")
	assets.Use(func(c *gin.Context) {
		if !requireAuth(c) {
			return
		}
		c.Next()
	})
	{
		assets.POST("", func(c *gin.Context) {
			var input models.NewAsset
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			asset, err := models.CreateAsset(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, asset)
		})
		assets.GET("", func(c *gin.Context) {
			assets, err := models.ListAssets(c.Request.Context(), stringQuery(c, "category"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, assets)
		})
		assets.GET("/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			asset, err := models.GetAsset(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, asset)
		})
		assets.PUT("/:id", func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewAsset
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			asset, err := models.UpdateAsset(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, asset)
		})
	}
}
