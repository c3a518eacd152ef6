package service

import (
	"context"
	"errors"
	"fmt"
	"html"

	"gazette/internal/mail"
	"gazette/internal/models"
	"gazette/internal/repository"
)

// Notifier fans a freshly published post out to category subscribers.
type Notifier interface {
	NotifyNewPost(ctx context.Context, post *models.Post) error
}

type NotificationService struct {
	categoryRepo repository.CategoryRepository
	mailer       mail.Mailer
	siteURL      string
}

func NewNotificationService(categoryRepo repository.CategoryRepository, mailer mail.Mailer, siteURL string) *NotificationService {
	return &NotificationService{
		categoryRepo: categoryRepo,
		mailer:       mailer,
		siteURL:      siteURL,
	}
}

// NotifyNewPost emails every subscriber of every category the post carries.
// A user subscribed to several of the post's categories is mailed once, in
// the order they were first encountered walking categories by id. When the
// post has no categories or no category has subscribers, the mailer is never
// invoked.
func (s *NotificationService) NotifyNewPost(ctx context.Context, post *models.Post) error {
	categories, err := s.categoryRepo.ListForPostWithSubscribers(ctx, post.ID)
	if err != nil {
		return models.NewStoreUnavailableError("notify new post", err)
	}

	seen := make(map[uint]struct{})
	var recipients []models.User
	for _, category := range categories {
		for _, user := range category.Subscribers {
			if _, ok := seen[user.ID]; ok {
				continue
			}
			seen[user.ID] = struct{}{}
			recipients = append(recipients, user)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	var sendErrs []error
	for _, user := range recipients {
		msg := s.buildMessage(post, user)
		if err := s.mailer.Send(ctx, msg); err != nil {
			sendErrs = append(sendErrs, fmt.Errorf("to %s: %w", user.Email, err))
		}
	}
	if len(sendErrs) > 0 {
		return models.NewNotificationFailedError(errors.Join(sendErrs...))
	}
	return nil
}

func (s *NotificationService) buildMessage(post *models.Post, user models.User) mail.Message {
	preview := post.Preview()
	link := fmt.Sprintf("%s/posts/%d", s.siteURL, post.ID)

	text := fmt.Sprintf(
		"Hello, %s. A new post was published in a category you follow.\n\n%s\n\n%s\n\nRead it here: %s\n",
		user.Username, post.Title, preview, link,
	)
	htmlBody := fmt.Sprintf(
		"<p>Hello, <strong>%s</strong>. A new post was published in a category you follow.</p>"+
			"<h2><a href=%q>%s</a></h2><p>%s</p>",
		html.EscapeString(user.Username), link, html.EscapeString(post.Title), html.EscapeString(preview),
	)

	return mail.Message{
		Subject:  post.Title,
		BodyText: text,
		BodyHTML: htmlBody,
		To:       []string{user.Email},
	}
}
