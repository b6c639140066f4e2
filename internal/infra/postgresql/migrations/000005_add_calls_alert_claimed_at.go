package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func addCallsAlertClaimedAtColumn() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000005_add_calls_alert_claimed_at",
		Migrate: func(tx *gorm.DB) error {
			return execAll(tx, []string{
				`ALTER TABLE emergency_calls ADD COLUMN IF NOT EXISTS alert_claimed_at TIMESTAMPTZ`,
				`DROP INDEX IF EXISTS idx_calls_unalerted`,
				`CREATE INDEX IF NOT EXISTS idx_calls_unalerted ON emergency_calls (created_at) WHERE alert_summary IS NULL AND alert_claimed_at IS NULL`,
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return execAll(tx, []string{
				`DROP INDEX IF EXISTS idx_calls_unalerted`,
				`ALTER TABLE emergency_calls DROP COLUMN IF EXISTS alert_claimed_at`,
				`CREATE INDEX IF NOT EXISTS idx_calls_unalerted ON emergency_calls (created_at) WHERE alert_summary IS NULL`,
			})
		},
	}
}
