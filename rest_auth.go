package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/models"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func sessionLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := models.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	roleName := "user"
	if user.Role != nil && user.Role.IsAdmin != nil && *user.Role.IsAdmin {
		roleName = "admin"
	}
	token, err := utils.JwtGenerate(user.ID, roleName)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := config.SetRedisValue("Token:"+token, user.Email, sessionLifespan()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func logoutHandler(c *gin.Context) {
	token, ok := utils.GetTokenFromContext(c.Request.Context())
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	_ = config.RemoveRedisKey("Token:" + token)
	c.Status(http.StatusNoContent)
}

func registerAuthRoutes(r *gin.Engine) {
	r.POST("/auth/login", loginHandler)
	r.POST("/auth/logout", logoutHandler)

	users := r.Group("/users")
	{
		users.POST("", func(c *gin.Context) {
			if !requireAdmin(c) {
				return
			}
			var input models.NewUser
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			user, err := models.CreateUser(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, user)
		})
		users.GET("", func(c *gin.Context) {
			if !requireAuth(c) {
				return
			}
			users, err := models.ListUsers(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, users)
		})
		users.GET("/:id", func(c *gin.Context) {
			if !requireAuth(c) {
				return
			}
			id, ok := idParam(c)
			if !ok {
				return
			}
			user, err := models.GetUser(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, user)
		})
		users.PUT("/:id", func(c *gin.Context) {
			if !requireAdmin(c) {
				return
			}
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewUser
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			user, err := models.UpdateUser(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, user)
		})
		users.DELETE("/:id", func(c *gin.Context) {
			if !requireAdmin(c) {
				return
			}
			id, ok := idParam(c)
			if !ok {
				return
			}
			user, err := models.DeactivateUser(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, user)
		})
	}

	roles := r.Group("/roles")
	{
		roles.POST("", func(c *gin.Context) {
			if !requireAdmin(c) {
				return
			}
			var input models.NewRole
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			role, err := models.CreateRole(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, role)
		})
		roles.GET("", func(c *gin.Context) {
			if !requireAuth(c) {
				return
			}
			roles, err := models.ListRoles(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, roles)
		})
		roles.GET("/:id", func(c *gin.Context) {
			if !requireAuth(c) {
				return
			}
			id, ok := idParam(c)
			if !ok {
				return
			}
			role, err := models.GetRole(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, role)
		})
		roles.PUT("/:id", func(c *gin.Context) {
			if !requireAdmin(c) {
				return
			}
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewRole
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			role, err := models.UpdateRole(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, role)
		})
		roles.DELETE("/:id", func(c *gin.Context) {
			if !requireAdmin(c) {
				return
			}
			id, ok := idParam(c)
			if !ok {
				return
			}
			role, err := models.DeleteRole(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, role)
		})
		roles.PUT("/:id/permissions", func(c *gin.Context) {
			if !requireAdmin(c) {
				return
			}
			id, ok := idParam(c)
			if !ok {
				return
			}
			var inputs []*models.NewPermission
			if err := c.ShouldBindJSON(&inputs); err != nil {
				respondBindingError(c, err)
				return
			}
			role, err := models.SetPermissions(c.Request.Context(), id, inputs)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, role)
		})
	}

	employees := r.Group("/employees")
	{
		employees.POST("", func(c *gin.Context) {
			if !requireAuth(c) {
				return
			}
			var input models.NewEmployee
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			employee, err := models.CreateEmployee(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, employee)
		})
		employees.GET("", func(c *gin.Context) {
			if !requireAuth(c) {
				return
			}
			employees, err := models.ListEmployees(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, employees)
		})
		employees.PUT("/:id", func(c *gin.Context) {
			if !requireAuth(c) {
				return
			}
			id, ok := idParam(c)
			if !ok {
				return
			}
			var input models.NewEmployee
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			employee, err := models.UpdateEmployee(c.Request.Context(), id, &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, employee)
		})
	}

	teams := r.Group("/teams")
	{
		teams.POST("", func(c *gin.Context) {
			if !requireAuth(c) {
				return
			}
			var input models.NewTeam
			if err := c.ShouldBindJSON(&input); err != nil {
				respondBindingError(c, err)
				return
			}
			team, err := models.CreateTeam(c.Request.Context(), &input)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusCreated, team)
		})
		teams.GET("", func(c *gin.Context) {
			if !requireAuth(c) {
				return
			}
			teams, err := models.ListTeams(c.Request.Context())
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, teams)
		})
	}
}
