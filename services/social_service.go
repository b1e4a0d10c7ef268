package services

import (
	"context"
	"errors"
	"fmt"

	"inkwell/database"
	"inkwell/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SocialService implements the like and follow toggles. Both relations carry
// a unique index on their pair; a toggle deletes the row and, when nothing
// was deleted, inserts it with ON CONFLICT DO NOTHING, so concurrent toggles
// never leave duplicates.
type SocialService struct {
	db *database.DB
}

func NewSocialService(db *database.DB) *SocialService {
	return &SocialService{db: db}
}

// ToggleLike reports whether the article is liked after the call.
func (ss *SocialService) ToggleLike(ctx context.Context, accountID, articleID uint) (bool, error) {
	var liked bool
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Article{}, articleID); err != nil {
			return fmt.Errorf("article %d: %w", articleID, err)
		}

		res := tx.Where("user_id = ? AND article_id = ?", accountID, articleID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}

		like := &models.Like{UserID: accountID, ArticleID: articleID}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
			return fmt.Errorf("failed to like article: %w", err)
		}
		liked = true
		return nil
	})
	return liked, err
}

// ToggleFollow reports whether followerID follows followedID after the call.
func (ss *SocialService) ToggleFollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	var following bool
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Account{}, followedID); err != nil {
			return fmt.Errorf("account %d: %w", followedID, err)
		}
		if followerID == followedID {
			return ErrSelfFollow
		}

		res := tx.Where("follower_id = ? AND followed_id = ?", followerID, followedID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			following = false
			return nil
		}

		follow := &models.Follow{FollowerID: followerID, FollowedID: followedID}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(follow).Error; err != nil {
			return fmt.Errorf("failed to follow account: %w", err)
		}
		following = true
		return nil
	})
	return following, err
}

func hasLiked(db *gorm.DB, accountID, articleID uint) (bool, error) {
	var n int64
	err := db.Model(&models.Like{}).
		Where("user_id = ? AND article_id = ?", accountID, articleID).
		Count(&n).Error
	return n > 0, err
}

func likeCount(db *gorm.DB, articleID uint) (int64, error) {
	var n int64
	err := db.Model(&models.Like{}).Where("article_id = ?", articleID).Count(&n).Error
	return n, err
}

func isFollowing(db *gorm.DB, followerID, followedID uint) (bool, error) {
	var n int64
	err := db.Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&n).Error
	return n > 0, err
}

// followCounts returns how many accounts follow accountID and how many it
// follows.
func followCounts(db *gorm.DB, accountID uint) (followers, following int64, err error) {
	if err = db.Model(&models.Follow{}).Where("followed_id = ?", accountID).Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	err = db.Model(&models.Follow{}).Where("follower_id = ?", accountID).Count(&following).Error
	return followers, following, err
}

func exists(tx *gorm.DB, model interface{}, id uint) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
