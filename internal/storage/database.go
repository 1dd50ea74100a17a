package storage

import (
	"github.com/hexxt-git/knowdown/internal/game"
	"github.com/hexxt-git/knowdown/internal/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenAndMigrate opens the sqlite database, keeps the schema updated via
// AutoMigrate and seeds the card catalog from the config file when the
// cards table is empty.
func OpenAndMigrate(dataSourceName string, catalog []game.Card) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&game.Card{}, &game.User{}, &game.FriendInvite{}, &game.Friendship{})
	if err != nil {
		return nil, err
	}

	seedCatalog(db, catalog)
	return db, nil
}

// seedCatalog inserts the configured cards on first boot. The config file
// stays the source of truth for card content; an already-populated table
// is left alone so collection links survive restarts.
func seedCatalog(db *gorm.DB, catalog []game.Card) {
	var count int64
	db.Model(&game.Card{}).Count(&count)
	if count > 0 {
		return
	}
	if len(catalog) == 0 {
		return
	}
	if err := db.Create(&catalog).Error; err != nil {
		logging.Error("failed to seed card catalog", err, nil)
		return
	}
	logging.Info("card catalog seeded", logging.Fields{"cards": len(catalog)})
}
