package services

import (
	"context"

	"inkwell/database"
	"inkwell/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationService manages unread markers that followers receive when an
// author publishes.
type NotificationService struct {
	db *database.DB
}

func NewNotificationService(db *database.DB) *NotificationService {
	return &NotificationService{db: db}
}

// FanOut inserts an unread marker for every account following authorID at
// this moment. It runs on tx so the markers commit with the article.
func (ns *NotificationService) FanOut(tx *gorm.DB, authorID, articleID uint) (int64, error) {
	var followerIDs []uint
	err := tx.Model(&models.Follow{}).
		Where("followed_id = ?", authorID).
		Pluck("follower_id", &followerIDs).Error
	if err != nil {
		return 0, err
	}
	if len(followerIDs) == 0 {
		return 0, nil
	}

	markers := make([]models.ArticleRead, 0, len(followerIDs))
	for _, id := range followerIDs {
		markers = append(markers, models.ArticleRead{
			UserID:    id,
			ArticleID: articleID,
			Status:    models.StatusUnread,
		})
	}
	res := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&markers)
	return res.RowsAffected, res.Error
}

// MarkRead flips the viewer's unread marker for articleID, if any.
func (ns *NotificationService) MarkRead(tx *gorm.DB, accountID, articleID uint) error {
	return tx.Model(&models.ArticleRead{}).
		Where("user_id = ? AND article_id = ? AND status = ?", accountID, articleID, models.StatusUnread).
		Update("status", models.StatusRead).Error
}

// UnreadArticles returns the articles the account has unread markers for,
// newest first. Markers whose article was deleted are skipped.
func (ns *NotificationService) UnreadArticles(ctx context.Context, accountID uint) ([]models.Article, error) {
	var articles []models.Article
	err := ns.unread(ns.db.WithContext(ctx), accountID).
		Preload("Author").
		Order("articles.created_at DESC, articles.id DESC").
		Find(&articles).Error
	return articles, err
}

func (ns *NotificationService) UnreadCount(ctx context.Context, accountID uint) (int64, error) {
	var count int64
	err := ns.unread(ns.db.WithContext(ctx), accountID).Count(&count).Error
	return count, err
}

func (ns *NotificationService) unread(db *gorm.DB, accountID uint) *gorm.DB {
	return db.Model(&models.Article{}).
		Joins("JOIN article_reads ON article_reads.article_id = articles.id").
		Where("article_reads.user_id = ? AND article_reads.status = ?", accountID, models.StatusUnread)
}
