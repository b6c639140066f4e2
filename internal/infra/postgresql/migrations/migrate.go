package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrate applies every pending schema migration in order.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, All())
	return m.Migrate()
}

// All lists the schema migrations in application order.
func All() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		createEmergencyContactsTable(),
		createEmergencyCallsTable(),
		createRoleTables(),
		createAlertDeliveriesTable(),
		addCallsAlertClaimedAtColumn(),
	}
}

func execAll(tx *gorm.DB, statements []string) error {
	for _, sql := range statements {
		if err := tx.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}
