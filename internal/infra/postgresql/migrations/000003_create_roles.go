package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"gorm.io/gorm"
)

func createRoleTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_roles",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.UserRoleModel{}, &repository.RoleGrantModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.RoleGrantModel{}, &repository.UserRoleModel{})
		},
	}
}
