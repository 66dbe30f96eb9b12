package service

import (
	"context"
	"fmt"
	"strings"

	"shpfusion-api/internal/model"
	"shpfusion-api/internal/repository"

	"go.uber.org/zap"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, email string) error
}

type subscriptionServiceImpl struct {
	subscriberRepo repository.SubscriberRepository
	emailService   EmailService
	log            *zap.Logger
}

func NewSubscriptionService(subscriberRepo repository.SubscriberRepository, emailService EmailService, log *zap.Logger) SubscriptionService {
	return &subscriptionServiceImpl{
		subscriberRepo: subscriberRepo,
		emailService:   emailService,
		log:            log,
	}
}

func (s *subscriptionServiceImpl) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalid("Email required")
	}
	if !isValidEmail(email) {
		return invalid("Please enter a valid email address")
	}

	exists, err := s.subscriberRepo.Exists(ctx, email)
	if err != nil {
		return fmt.Errorf("check subscriber: %w", err)
	}
	if exists {
		return ErrAlreadySubscribed
	}

	if err := s.subscriberRepo.Create(ctx, &model.Subscriber{Email: email}); err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}

	if err := s.emailService.SendSubscribeWelcome(ctx, email); err != nil {
		// subscription is recorded; the welcome mail is best effort
		s.log.Error("send subscribe welcome", zap.String("email", email), zap.Error(err))
	}

	return nil
}
