package db

import (
	"orbitwatch/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		// history + projection
		&models.OrbitalElement{},
		&models.ObjectState{},
		// derived intelligence
		&models.Signal{},
		// operations
		&models.SourceHealth{},
		&models.TelemetryRun{},
	)
}
