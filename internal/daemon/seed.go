package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/config"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/db/models"
	"github.com/GoRBAC-Admin/GoRBAC-Admin/internal/rbac"
)

func seed(cfg *config.Config, db *gorm.DB, rbacService *rbac.Service) {
	// Create the bootstrap account if the user table is empty. The rbac
	// seeder then assigns the bypass role to the first user.

	var count int64
	db.Model(&models.User{}).Count(&count)

	if count == 0 {
		name := cfg.Seed.AdminName
		if name == "" {
			name = "admin"
		}

		email := cfg.Seed.AdminEmail
		if email == "" {
			email = "admin@localhost"
		}

		password := cfg.Seed.AdminPassword
		if password == "" {
			password = "changeme"

			log.Warn().Msg("no seed password configured, using default")
		}

		if err := db.Create(
			&models.User{
				Name:     name,
				Email:    email,
				Password: models.HashPassword(password),
			},
		).Error; err != nil {
			log.Fatal().Err(err).Msg("creating seed user failed")
			return
		}

		log.Info().Str("email", email).Msg("created bootstrap user")
	}

	if err := rbacService.Seed(); err != nil {
		log.Fatal().Err(err).Msg("seeding roles and permissions failed")
	}
}
