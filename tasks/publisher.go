package tasks

import (
	"context"
	"fmt"
	"time"

	"inkwell/config"
	"inkwell/content"
	"inkwell/models"
	"inkwell/services"
)

const TaskGenerateAndPublish = "generate_and_publish_article"

// Publisher writes an automatically generated article under an
// administrator account.
type Publisher struct {
	auth      *services.AuthService
	articles  *services.ArticleService
	generator content.Generator
	admin     config.AdminConfig
	now       func() time.Time
}

func NewPublisher(auth *services.AuthService, articles *services.ArticleService, generator content.Generator, admin config.AdminConfig) *Publisher {
	return &Publisher{
		auth:      auth,
		articles:  articles,
		generator: generator,
		admin:     admin,
		now:       time.Now,
	}
}

func (p *Publisher) Publish(ctx context.Context, topic string) (*models.Article, error) {
	if topic == "" {
		topic = models.DefaultTopic
	}

	admin, err := p.auth.EnsureAdmin(ctx, p.admin.Username, p.admin.Password)
	if err != nil {
		return nil, err
	}

	body, err := p.generator.Generate(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	title := fmt.Sprintf("Auto-generated article on %s - %s", topic, p.now().UTC().Format("02.01.2006 15:04"))

	return p.articles.CreateArticle(ctx, admin.ID, title, body, topic)
}

// Handle adapts Publish to a task handler.
func (p *Publisher) Handle(ctx context.Context, task *Task) (string, error) {
	article, err := p.Publish(ctx, task.Args["topic"])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Article '%s' created.", article.Title), nil
}
