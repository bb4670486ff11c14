package service

import (
	"context"
	"log"

	"github.com/shinyyama/takeout-backend/internal/ai"
	"github.com/shinyyama/takeout-backend/internal/model"
	"github.com/shinyyama/takeout-backend/internal/repository"
)

// InquiryAnalyzer translates and labels a free-text inquiry.
type InquiryAnalyzer interface {
	Analyze(ctx context.Context, message string) (*ai.Analysis, error)
}

type ContactService interface {
	// RecordInquiry stores an inquiry with its translation and category.
	// AI failure degrades to storing the raw message; store failure is the
	// operation's failure.
	RecordInquiry(ctx context.Context, userID, message string) error
}

type contactService struct {
	repo     repository.ContactRepository
	analyzer InquiryAnalyzer
}

func NewContactService(repo repository.ContactRepository, analyzer InquiryAnalyzer) ContactService {
	return &contactService{repo: repo, analyzer: analyzer}
}

func (s *contactService) RecordInquiry(ctx context.Context, userID, message string) error {
	contact := &model.ContactMessage{
		UserID:   userID,
		Message:  message,
		Category: "OTHER",
	}
	analysis, err := s.analyzer.Analyze(ctx, message)
	if err != nil {
		// inquiries are never dropped because the AI was down
		log.Printf("[contact] stage=analyze_fail user=%s err=%v", userID, err)
	} else {
		contact.Translation = analysis.Translation
		contact.Category = analysis.Category
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		log.Printf("[contact] stage=store_fail user=%s err=%v", userID, err)
		return err
	}
	log.Printf("[contact] stage=stored user=%s category=%s", userID, contact.Category)
	return nil
}
