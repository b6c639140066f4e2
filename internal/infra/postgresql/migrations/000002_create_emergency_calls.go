package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/emergency-alerts/internal/repository"
	"gorm.io/gorm"
)

func createEmergencyCallsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_emergency_calls",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.EmergencyCallModel{}); err != nil {
				return err
			}
			return execAll(tx, []string{
				`CREATE INDEX IF NOT EXISTS idx_calls_user_created ON emergency_calls (user_id, created_at DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_calls_urgency_status ON emergency_calls (urgency, status)`,
				`CREATE INDEX IF NOT EXISTS idx_calls_unalerted ON emergency_calls (created_at) WHERE alert_summary IS NULL`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.EmergencyCallModel{})
		},
	}
}
