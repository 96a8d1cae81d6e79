package database

import (
	"github.com/campuspool/campuspool-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Pool{},
		&models.PoolMember{},
		&models.PoolRequest{},
	)
	if err != nil {
		return err
	}

	// CHECK constraints behind the application invariants. Postgres only;
	// the sqlite test databases rely on AutoMigrate alone.
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	constraints := []struct {
		table string
		name  string
		check string
	}{
		{"pools", "pools_person_count_check",
			"CHECK (current_persons >= 1 AND current_persons <= total_persons)"},
		{"pools", "pools_total_persons_check",
			"CHECK (total_persons >= 1)"},
		{"users", "users_gender_check",
			"CHECK (gender IN ('Male', 'Female', 'Others') OR gender = '' OR gender IS NULL)"},
		{"pool_requests", "pool_requests_status_check",
			"CHECK (status IN ('pending', 'accepted', 'rejected'))"},
	}

	for _, c := range constraints {
		db.Exec("ALTER TABLE " + c.table + " DROP CONSTRAINT IF EXISTS " + c.name)
		if err := db.Exec("ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " " + c.check).Error; err != nil {
			return err
		}
	}

	return nil
}
