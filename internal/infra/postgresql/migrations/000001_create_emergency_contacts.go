package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"gorm.io/gorm"
)

func createEmergencyContactsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_emergency_contacts",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ContactModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_one_primary ON emergency_contacts (user_id) WHERE is_primary`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ContactModel{})
		},
	}
}
