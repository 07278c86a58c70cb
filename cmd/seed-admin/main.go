// seed-admin bootstraps the admin role, an admin user, and the System
// employee used as requester for auto-spawned work orders.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/models"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"gorm.io/gorm"
)

const (
	adminEmail = "admin@facility.local"
	adminName  = "Facility Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_PASSWORD is required")
		os.Exit(1)
	}

	// admin role
	var role models.Role
	err := db.WithContext(ctx).Where("name = ?", "admin").First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = models.Role{
			Name:        "admin",
			Description: "full access",
			IsAdmin:     utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&role).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin role: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created admin role")
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "failed to lookup admin role: %v\n", err)
		os.Exit(1)
	}

	// admin user
	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var user models.User
	err = db.WithContext(ctx).Where("email = ?", adminEmail).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Name:     adminName,
			Email:    adminEmail,
			Password: string(hashed),
			RoleId:   role.ID,
			Status:   models.UserStatusActive,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created admin user", adminEmail)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "failed to lookup admin user: %v\n", err)
		os.Exit(1)
	} else {
		if err := db.WithContext(ctx).Model(&user).
			Update("password", string(hashed)).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update admin password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("updated admin password")
	}

	// System employee (requester identity for background spawns)
	var system models.Employee
	err = db.WithContext(ctx).Where("code = ?", models.SystemEmployeeCode).First(&system).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		system = models.Employee{
			Code:     models.SystemEmployeeCode,
			Name:     "System",
			Type:     models.EmployeeTypeSystem,
			IsActive: utils.NewTrue(),
		}
		if err := db.WithContext(ctx).Create(&system).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create system employee: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created system employee", models.SystemEmployeeCode)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "failed to lookup system employee: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("seed complete")
}
