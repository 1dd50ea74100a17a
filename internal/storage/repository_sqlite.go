package storage

import (
	"math/rand"

	"github.com/hexxt-git/knowdown/internal/game"

	"gorm.io/gorm"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) GetCards() ([]game.Card, error) {
	var cards []game.Card
	if err := r.db.Order("card_id").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *sqliteRepository) GetCardsByIDs(cardIDs []string) ([]game.Card, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}
	var cards []game.Card
	if err := r.db.Where("card_id IN ?", cardIDs).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *sqliteRepository) CountCards() (int64, error) {
	var count int64
	err := r.db.Model(&game.Card{}).Count(&count).Error
	return count, err
}

// GetRandomCards draws n cards starting at a random offset into the
// catalog. Cheaper than ORDER BY RANDOM() and random enough for packs.
func (r *sqliteRepository) GetRandomCards(n int) ([]game.Card, error) {
	total, err := r.CountCards()
	if err != nil {
		return nil, err
	}
	offset := 0
	if window := int(total) - n; window > 0 {
		offset = rand.Intn(window)
	}
	var cards []game.Card
	if err := r.db.Offset(offset).Limit(n).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *sqliteRepository) UpsertUser(subject, displayName string) (*game.User, error) {
	var u game.User
	if err := r.db.Where("subject = ?", subject).First(&u).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		u = game.User{Subject: subject, DisplayName: displayName}
		if err := r.db.Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}
	if displayName != "" && u.DisplayName == "" {
		u.DisplayName = displayName
		if err := r.db.Save(&u).Error; err != nil {
			return nil, err
		}
	}
	return &u, nil
}

// GetUserBySubject returns nil without error when no profile exists yet.
func (r *sqliteRepository) GetUserBySubject(subject string) (*game.User, error) {
	var u game.User
	if err := r.db.Where("subject = ?", subject).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *sqliteRepository) SaveUser(u *game.User) error {
	return r.db.Save(u).Error
}

func (r *sqliteRepository) GetCollection(subject string) ([]game.Card, error) {
	u, err := r.GetUserBySubject(subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	var cards []game.Card
	if err := r.db.Model(u).Association("CardCollection").Find(&cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *sqliteRepository) CountCollection(subject string) (int64, error) {
	u, err := r.GetUserBySubject(subject)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, nil
	}
	return r.db.Model(u).Association("CardCollection").Count(), nil
}

func (r *sqliteRepository) ConnectCards(subject string, cardIDs []string) error {
	u, err := r.UpsertUser(subject, "")
	if err != nil {
		return err
	}
	cards, err := r.GetCardsByIDs(cardIDs)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		return nil
	}
	return r.db.Model(u).Association("CardCollection").Append(&cards)
}

func (r *sqliteRepository) RecordBattleResult(playerSubject, opponentSubject string, playerWon bool, playerCaptured, opponentCaptured []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		player, err := upsertInTx(tx, playerSubject)
		if err != nil {
			return err
		}
		opponent, err := upsertInTx(tx, opponentSubject)
		if err != nil {
			return err
		}

		player.GamesPlayed++
		opponent.GamesPlayed++
		if playerWon {
			player.GamesWon++
			opponent.GamesLost++
		} else {
			player.GamesLost++
			opponent.GamesWon++
		}
		if err := tx.Save(player).Error; err != nil {
			return err
		}
		if err := tx.Save(opponent).Error; err != nil {
			return err
		}

		// Winner takes the cards they captured from the loser's side; the
		// loser gives up the cards the winner captured.
		if playerWon {
			return transferCards(tx, opponent, player, opponentCaptured)
		}
		return transferCards(tx, player, opponent, playerCaptured)
	})
}

func upsertInTx(tx *gorm.DB, subject string) (*game.User, error) {
	var u game.User
	if err := tx.Where("subject = ?", subject).First(&u).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		u = game.User{Subject: subject}
		if err := tx.Create(&u).Error; err != nil {
			return nil, err
		}
	}
	return &u, nil
}

// transferCards disconnects the given cards from the losing side and
// connects them to the winning side.
func transferCards(tx *gorm.DB, from, to *game.User, cardIDs []string) error {
	if len(cardIDs) == 0 {
		return nil
	}
	var cards []game.Card
	if err := tx.Where("card_id IN ?", cardIDs).Find(&cards).Error; err != nil {
		return err
	}
	if len(cards) == 0 {
		return nil
	}
	if err := tx.Model(from).Association("CardCollection").Delete(&cards); err != nil {
		return err
	}
	return tx.Model(to).Association("CardCollection").Append(&cards)
}

// FindOpponent picks the candidate holding the most cards.
func (r *sqliteRepository) FindOpponent(excludeSubject string) (*game.User, error) {
	var u game.User
	err := r.db.
		Table("player_profiles").
		Select("player_profiles.*, COUNT(card_collections.card_id) AS n").
		Joins("LEFT JOIN card_collections ON card_collections.user_id = player_profiles.id").
		Where("player_profiles.subject <> ? AND player_profiles.deleted_at IS NULL", excludeSubject).
		Group("player_profiles.id").
		Order("n DESC").
		Limit(1).
		Scan(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == 0 {
		return nil, nil
	}
	return &u, nil
}

func (r *sqliteRepository) GetFriendSubjects(subject string) ([]string, error) {
	var subjects []string
	err := r.db.Model(&game.Friendship{}).
		Where("user_subject = ?", subject).
		Pluck("friend_subject", &subjects).Error
	return subjects, err
}

func (r *sqliteRepository) AreFriends(a, b string) (bool, error) {
	var count int64
	err := r.db.Model(&game.Friendship{}).
		Where("user_subject = ? AND friend_subject = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

func (r *sqliteRepository) CreateFriendship(a, b string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&game.Friendship{UserSubject: a, FriendSubject: b}).Error; err != nil {
			return err
		}
		return tx.Create(&game.Friendship{UserSubject: b, FriendSubject: a}).Error
	})
}

func (r *sqliteRepository) CreateInvite(inv *game.FriendInvite) error {
	return r.db.Create(inv).Error
}

func (r *sqliteRepository) GetInviteByID(id uint) (*game.FriendInvite, error) {
	var inv game.FriendInvite
	if err := r.db.First(&inv, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *sqliteRepository) FindInviteBetween(a, b string) (*game.FriendInvite, error) {
	var inv game.FriendInvite
	err := r.db.Where(
		"(sender_subject = ? AND receiver_subject = ?) OR (sender_subject = ? AND receiver_subject = ?)",
		a, b, b, a,
	).First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *sqliteRepository) SaveInvite(inv *game.FriendInvite) error {
	return r.db.Save(inv).Error
}

func (r *sqliteRepository) GetPendingInvitesFor(subject string) ([]game.FriendInvite, error) {
	var invites []game.FriendInvite
	err := r.db.Where("receiver_subject = ? AND status = ?", subject, game.InvitePending).
		Find(&invites).Error
	return invites, err
}

func (r *sqliteRepository) GetUsersWithCardCounts(subjects []string) ([]UserWithCardCount, error) {
	q := r.db.
		Table("player_profiles").
		Select("player_profiles.*, COUNT(card_collections.card_id) AS card_count").
		Joins("LEFT JOIN card_collections ON card_collections.user_id = player_profiles.id").
		Where("player_profiles.deleted_at IS NULL").
		Group("player_profiles.id")
	if subjects != nil {
		q = q.Where("player_profiles.subject IN ?", subjects)
	}
	var rows []UserWithCardCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
