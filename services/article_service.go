package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/database"
	"inkwell/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArticleService struct {
	db            *database.DB
	notifications *NotificationService
}

func NewArticleService(db *database.DB, notifications *NotificationService) *ArticleService {
	return &ArticleService{db: db, notifications: notifications}
}

type articleInput struct {
	Title   string `validate:"required,max=200"`
	Content string `validate:"required"`
	Topic   string `validate:"max=100"`
}

// CreateArticle publishes an article and notifies the author's current
// followers in the same transaction.
func (as *ArticleService) CreateArticle(ctx context.Context, authorID uint, title, content, topic string) (*models.Article, error) {
	in := articleInput{
		Title:   strings.TrimSpace(title),
		Content: strings.TrimSpace(content),
		Topic:   strings.TrimSpace(topic),
	}
	if err := check(in, "Please fill in the title and content."); err != nil {
		return nil, err
	}
	if in.Topic == "" {
		in.Topic = models.DefaultTopic
	}

	article := &models.Article{
		Title:   in.Title,
		Content: in.Content,
		Topic:   in.Topic,
		UserID:  authorID,
	}
	var notified int64
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(article).Error; err != nil {
			return fmt.Errorf("failed to create article: %w", err)
		}
		n, err := as.notifications.FanOut(tx, authorID, article.ID)
		if err != nil {
			return fmt.Errorf("failed to notify followers: %w", err)
		}
		notified = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"article_id": article.ID,
		"author_id":  authorID,
		"notified":   notified,
	}).Info("Article published")
	return article, nil
}

func (as *ArticleService) GetArticleByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := as.db.WithContext(ctx).Preload("Author").First(&article, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// ArticleView is everything the article page shows.
type ArticleView struct {
	Article   models.Article
	Liked     bool
	LikeCount int64
	Comments  []models.Comment
}

// ViewArticle counts a view, marks the viewer's notification read and loads
// the page data. viewerID is nil for anonymous visitors.
func (as *ArticleService) ViewArticle(ctx context.Context, id uint, viewerID *uint) (*ArticleView, error) {
	view := &ArticleView{}
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Article{}).
			Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("article %d: %w", id, ErrNotFound)
		}

		if viewerID != nil {
			if err := as.notifications.MarkRead(tx, *viewerID, id); err != nil {
				return fmt.Errorf("failed to mark article read: %w", err)
			}
			liked, err := hasLiked(tx, *viewerID, id)
			if err != nil {
				return err
			}
			view.Liked = liked
		}

		if err := tx.Preload("Author").First(&view.Article, id).Error; err != nil {
			return err
		}
		count, err := likeCount(tx, id)
		if err != nil {
			return err
		}
		view.LikeCount = count
		return tx.Preload("Author").
			Where("article_id = ?", id).
			Order("id DESC").
			Find(&view.Comments).Error
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListArticles returns the home feed, newest first.
func (as *ArticleService) ListArticles(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := as.db.WithContext(ctx).Preload("Author").Order("id DESC").Find(&articles).Error
	return articles, err
}

func (as *ArticleService) ArticlesByTopic(ctx context.Context, topic string) ([]models.Article, error) {
	var articles []models.Article
	err := as.db.WithContext(ctx).
		Preload("Author").
		Where("topic = ?", topic).
		Order("id DESC").
		Find(&articles).Error
	return articles, err
}

// ListAllArticles is the unfiltered administrator listing.
func (as *ArticleService) ListAllArticles(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := as.db.WithContext(ctx).Preload("Author").Order("id").Find(&articles).Error
	return articles, err
}

// Topics lists the distinct topic labels in use.
func (as *ArticleService) Topics(ctx context.Context) ([]string, error) {
	var topics []string
	err := as.db.WithContext(ctx).
		Model(&models.Article{}).
		Distinct().
		Order("topic").
		Pluck("topic", &topics).Error
	return topics, err
}

type commentInput struct {
	Content string `validate:"required"`
}

func (as *ArticleService) AddComment(ctx context.Context, accountID, articleID uint, content string) (*models.Comment, error) {
	if _, err := as.GetArticleByID(ctx, articleID); err != nil {
		return nil, err
	}

	in := commentInput{Content: strings.TrimSpace(content)}
	if err := check(in, "Comment cannot be empty."); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:   in.Content,
		UserID:    accountID,
		ArticleID: articleID,
	}
	if err := as.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// DeleteArticle removes an article together with its likes and comments.
// Unread markers pointing at it are left in place.
func (as *ArticleService) DeleteArticle(ctx context.Context, id uint) error {
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var article models.Article
		err := tx.First(&article, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("article %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if err := tx.Select("Likes", "Comments").Delete(&article).Error; err != nil {
			return fmt.Errorf("failed to delete article: %w", err)
		}
		logrus.WithField("article_id", id).Info("Article deleted")
		return nil
	})
}

func (as *ArticleService) GetStats(ctx context.Context) (*models.SiteStats, error) {
	stats := &models.SiteStats{}
	db := as.db.WithContext(ctx)

	counts := []struct {
		query *gorm.DB
		dst   *int64
	}{
		{db.Model(&models.Account{}), &stats.TotalAccounts},
		{db.Model(&models.Article{}), &stats.TotalArticles},
		{db.Model(&models.Like{}), &stats.TotalLikes},
		{db.Model(&models.Comment{}), &stats.TotalComments},
		{db.Model(&models.ArticleRead{}).Where("status = ?", models.StatusUnread), &stats.UnreadMarkers},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}
