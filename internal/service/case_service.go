package service

import (
	"casepilot/internal/model"
	"casepilot/internal/repository"
	"context"
	"fmt"
)

// CaseService serves the consultant dashboard's view of generated cases
type CaseService struct {
	caseRepo repository.CaseRepo
	mailer   *MailerService
}

// NewCaseService creates a new case service
func NewCaseService(caseRepo repository.CaseRepo, mailer *MailerService) *CaseService {
	return &CaseService{
		caseRepo: caseRepo,
		mailer:   mailer,
	}
}

// List returns all generated cases, newest first, without PDF payloads
func (s *CaseService) List(ctx context.Context) ([]*model.BusinessCase, error) {
	cases, err := s.caseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return cases, nil
}

// Get returns one case by id
func (s *CaseService) Get(ctx context.Context, id string) (*model.BusinessCase, error) {
	bc, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if bc == nil {
		return nil, ErrNotFound
	}
	return bc, nil
}

// Resend re-delivers the case email, for when the original send failed or
// the prospect lost it
func (s *CaseService) Resend(ctx context.Context, id string) (string, error) {
	bc, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	if bc == nil {
		return "", ErrNotFound
	}

	messageID, err := SendCaseEmail(ctx, s.mailer, bc)
	if err != nil {
		return "", fmt.Errorf("email: %w", err)
	}
	if err := s.caseRepo.SetDelivery(ctx, id, model.DeliverySent, messageID); err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	return messageID, nil
}
