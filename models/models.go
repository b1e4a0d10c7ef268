package models

import (
	"time"
)

const DefaultTopic = "General"

// Read marker states.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

type Account struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:200;not null"` // Never return password in JSON
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Account) TableName() string { return "accounts" }

type Article struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Views     int       `json:"views" gorm:"not null;default:0"`
	Topic     string    `json:"topic" gorm:"size:100;not null;default:General;index"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`

	Author   Account   `json:"author" gorm:"foreignKey:UserID"`
	Likes    []Like    `json:"-" gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"-" gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
}

func (Article) TableName() string { return "articles" }

// Like is unique per (user, article) pair.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_article"`
	ArticleID uint      `json:"article_id" gorm:"not null;uniqueIndex:idx_likes_user_article;index"`
	CreatedAt time.Time `json:"created_at"`

	Account Account `json:"-" gorm:"foreignKey:UserID"`
}

func (Like) TableName() string { return "likes" }

// Follow is a directed edge: FollowerID follows FollowedID.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;uniqueIndex:idx_follows_pair"`
	FollowedID uint      `json:"followed_id" gorm:"not null;uniqueIndex:idx_follows_pair;index"`
	CreatedAt  time.Time `json:"created_at"`

	Follower Account `json:"-" gorm:"foreignKey:FollowerID"`
	Followed Account `json:"-" gorm:"foreignKey:FollowedID"`
}

func (Follow) TableName() string { return "follows" }

// ArticleRead records whether a follower has opened an article published
// after they followed its author. ArticleID deliberately has no foreign key:
// markers outlive deleted articles and are filtered when read.
type ArticleRead struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_article_reads_pair;index:idx_article_reads_status,priority:1"`
	ArticleID uint      `json:"article_id" gorm:"not null;uniqueIndex:idx_article_reads_pair"`
	Status    string    `json:"status" gorm:"size:10;not null;default:unread;index:idx_article_reads_status,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	Account Account `json:"-" gorm:"foreignKey:UserID"`
}

func (ArticleRead) TableName() string { return "article_reads" }

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ArticleID uint      `json:"article_id" gorm:"not null;index"`

	Author Account `json:"author" gorm:"foreignKey:UserID"`
}

func (Comment) TableName() string { return "comments" }

type SiteStats struct {
	TotalAccounts int64 `json:"total_accounts"`
	TotalArticles int64 `json:"total_articles"`
	TotalLikes    int64 `json:"total_likes"`
	TotalComments int64 `json:"total_comments"`
	UnreadMarkers int64 `json:"unread_markers"`
}

// All lists every table model in migration order.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Article{},
		&Like{},
		&Follow{},
		&ArticleRead{},
		&Comment{},
	}
}
