package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/famvault/server/internal/infra/persistence/entity"
)

// Migrate creates or updates the schema for every table this server owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.UserEntity{},
		&entity.FamilyMemberEntity{},
		&entity.FamilyInvitationEntity{},
		&entity.HealthRecordEntity{},
		&entity.DocumentEntity{},
		&entity.AIInteractionEntity{},
		&entity.AIUsageStatsEntity{},
		&entity.NotificationEntity{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
