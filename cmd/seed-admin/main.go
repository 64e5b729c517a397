// Command seed-admin creates the first admin account. Intended for fresh
// deployments; it refuses to run when an admin already exists.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/models"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	name := flag.String("name", "Administrator", "display name")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD is required")
	}

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.UserRoleAdmin).Count(&count).Error; err != nil {
		log.Fatal(err)
	}
	if count > 0 {
		log.Fatal("an admin account already exists")
	}

	user, err := models.CreateUser(ctx, &models.NewUser{
		Username: *username,
		Name:     *name,
		Password: password,
		Role:     models.UserRoleAdmin,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("created admin user %q (id %d)", user.Username, user.ID)
}
