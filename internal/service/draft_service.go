package service

import (
	"casepilot/internal/cache"
	"casepilot/internal/model"
	"casepilot/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

// DraftService owns the create/save/resume/finalize transitions for one
// prospect's in-progress intake form
type DraftService struct {
	draftRepo  repository.DraftRepo
	formRepo   repository.FormRepo
	caseRepo   repository.CaseRepo
	draftCache cache.DraftCache
	mailer     *MailerService
	generator  *GeneratorService
	renderer   *RendererService

	baseURL  string
	formSlug string
}

// NewDraftService creates a new draft service
func NewDraftService(
	draftRepo repository.DraftRepo,
	formRepo repository.FormRepo,
	caseRepo repository.CaseRepo,
	draftCache cache.DraftCache,
	mailer *MailerService,
	generator *GeneratorService,
	renderer *RendererService,
	baseURL string,
	formSlug string,
) *DraftService {
	return &DraftService{
		draftRepo:  draftRepo,
		formRepo:   formRepo,
		caseRepo:   caseRepo,
		draftCache: draftCache,
		mailer:     mailer,
		generator:  generator,
		renderer:   renderer,
		baseURL:    baseURL,
		formSlug:   formSlug,
	}
}

// Create allocates a new draft with a fresh resume token at step 1
func (s *DraftService) Create(ctx context.Context, name, email string, initialData map[string]string) (*model.Draft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "must be a valid address")
	}
	if initialData == nil {
		initialData = map[string]string{}
	}

	draft := &model.Draft{
		Name:        name,
		Email:       email,
		ResumeToken: uuid.New().String(),
		Step:        1,
		Data:        initialData,
		Status:      model.DraftStatusDraft,
	}

	if _, err := s.draftRepo.Create(ctx, draft); err != nil {
		if errors.Is(err, repository.ErrDuplicateToken) {
			return nil, fmt.Errorf("%w: resume token collision", ErrConflict)
		}
		return nil, fmt.Errorf("storage: %w", err)
	}

	s.cacheDraft(ctx, draft)
	return draft, nil
}

// Save overwrites the stored data and step. Full replace, last write wins.
func (s *DraftService) Save(ctx context.Context, draftID string, step int, data map[string]string) (*model.Draft, error) {
	if draftID == "" {
		return nil, invalid("draftId", "must not be empty")
	}
	maxStep, err := s.stepCount(ctx)
	if err != nil {
		return nil, err
	}
	if step < 1 || step > maxStep {
		return nil, invalid("step", fmt.Sprintf("must be between 1 and %d", maxStep))
	}
	if data == nil {
		data = map[string]string{}
	}

	draft, err := s.draftRepo.SaveProgress(ctx, draftID, step, data)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if draft == nil {
		// Distinguish a submitted draft from an unknown id
		existing, err := s.draftRepo.GetByID(ctx, draftID)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		if existing != nil && !existing.Editable() {
			return nil, fmt.Errorf("%w: draft already submitted", ErrConflict)
		}
		return nil, ErrNotFound
	}

	s.cacheDraft(ctx, draft)
	return draft, nil
}

// Resume returns the full draft for a resume token so the client can
// repopulate its form state. Valid only while the draft is still editable.
func (s *DraftService) Resume(ctx context.Context, token string) (*model.Draft, error) {
	if token == "" {
		return nil, invalid("token", "must not be empty")
	}

	if s.draftCache != nil {
		if cached, err := s.draftCache.GetByToken(ctx, token); err == nil && cached != nil && cached.Editable() {
			return cached, nil
		}
	}

	draft, err := s.draftRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if draft == nil || !draft.Editable() {
		// A submitted draft's token still resolves to a record, but that
		// record is no longer resumable
		return nil, ErrNotFound
	}

	s.cacheDraft(ctx, draft)
	return draft, nil
}

// SendResumeLink emails the capability link for a draft
func (s *DraftService) SendResumeLink(ctx context.Context, draftID, email string) (string, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return "", invalid("email", "must be a valid address")
	}

	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return "", fmt.Errorf("storage: %w", err)
	}
	if draft == nil || draft.ResumeToken == "" {
		return "", ErrNotFound
	}

	link := fmt.Sprintf("%s/form?resume=%s", s.baseURL, draft.ResumeToken)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Pick up your business case where you left off:</p><p><a href="%s">Continue your intake</a></p><p>The link stays valid for 30 days.</p>`,
		draft.Name, link)

	messageID, err := s.mailer.Send(ctx, email, "Resume your business case", html, nil)
	if err != nil {
		return "", fmt.Errorf("email: %w", err)
	}
	return messageID, nil
}

// Finalize performs the one-way draft -> submitted transition: generate the
// business case, persist it, then deliver the PDF best-effort. Generation
// runs first so a failed generation leaves the draft editable and a submitted
// draft always has exactly one case behind it.
func (s *DraftService) Finalize(ctx context.Context, draftID string, finalData map[string]string) (*model.BusinessCase, error) {
	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if draft == nil {
		return nil, ErrNotFound
	}
	if !draft.Editable() {
		return nil, fmt.Errorf("%w: draft already submitted", ErrConflict)
	}
	if finalData == nil {
		finalData = draft.Data
	}

	content, genModel, err := s.generator.Generate(ctx, draft, finalData)
	if err != nil {
		return nil, err
	}

	submitted, err := s.draftRepo.MarkSubmitted(ctx, draftID, finalData)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if submitted == nil {
		// A concurrent finalize won the transition
		return nil, fmt.Errorf("%w: draft already submitted", ErrConflict)
	}
	if s.draftCache != nil {
		if err := s.draftCache.DeleteToken(ctx, submitted.ResumeToken); err != nil {
			log.Printf("failed to evict resume token for draft %s: %v", draftID, err)
		}
	}

	bc := &model.BusinessCase{
		DraftID:  draftID,
		Name:     submitted.Name,
		Email:    submitted.Email,
		Content:  *content,
		Model:    genModel,
		Delivery: model.DeliveryPending,
	}

	// Render before the insert so the stored case carries its artifact.
	// A render failure is logged, not fatal: the case still ships as HTML.
	pdf, err := s.renderer.RenderCase(ctx, bc)
	if err != nil {
		log.Printf("PDF render failed for draft %s: %v", draftID, err)
	} else {
		bc.PDF = pdf
	}

	if _, err := s.caseRepo.Create(ctx, bc); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	s.deliverCase(ctx, bc)
	return bc, nil
}

// deliverCase emails the generated document. Best-effort: the draft is
// already submitted and the case stored, so a failed send is recorded on the
// case and left for the dashboard's resend.
func (s *DraftService) deliverCase(ctx context.Context, bc *model.BusinessCase) {
	messageID, err := SendCaseEmail(ctx, s.mailer, bc)
	status := model.DeliverySent
	if err != nil {
		log.Printf("case delivery failed for draft %s: %v", bc.DraftID, err)
		status = model.DeliveryFailed
	}
	bc.Delivery = status
	bc.MessageID = messageID
	if err := s.caseRepo.SetDelivery(ctx, bc.ID, status, messageID); err != nil {
		log.Printf("failed to record delivery status for case %s: %v", bc.ID, err)
	}
}

// Abandon deletes a draft the user explicitly walked away from
func (s *DraftService) Abandon(ctx context.Context, draftID string) error {
	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if draft == nil {
		return ErrNotFound
	}
	if err := s.draftRepo.Delete(ctx, draftID); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if s.draftCache != nil {
		if err := s.draftCache.DeleteToken(ctx, draft.ResumeToken); err != nil {
			log.Printf("failed to evict resume token for draft %s: %v", draftID, err)
		}
	}
	return nil
}

// ListOpen returns in-progress drafts for the dashboard
func (s *DraftService) ListOpen(ctx context.Context) ([]*model.Draft, error) {
	drafts, err := s.draftRepo.ListByStatus(ctx, model.DraftStatusDraft)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return drafts, nil
}

func (s *DraftService) stepCount(ctx context.Context) (int, error) {
	form, err := s.formRepo.GetBySlug(ctx, s.formSlug)
	if err != nil {
		return 0, fmt.Errorf("storage: %w", err)
	}
	if form == nil {
		return 0, fmt.Errorf("intake form %q not seeded", s.formSlug)
	}
	return form.StepCount(), nil
}

func (s *DraftService) cacheDraft(ctx context.Context, draft *model.Draft) {
	if s.draftCache == nil {
		return
	}
	if err := s.draftCache.SetByToken(ctx, draft); err != nil {
		log.Printf("failed to cache draft %s: %v", draft.ID, err)
	}
}

// SendCaseEmail delivers the business-case email with the PDF attached when
// one was rendered. Shared with the dashboard's resend.
func SendCaseEmail(ctx context.Context, mailer *MailerService, bc *model.BusinessCase) (string, error) {
	html, err := CaseHTML(bc)
	if err != nil {
		return "", err
	}

	var attachments []Attachment
	if len(bc.PDF) > 0 {
		attachments = append(attachments, Attachment{
			Filename: "business-case.pdf",
			Content:  bc.PDF,
		})
	}
	return mailer.Send(ctx, bc.Email, "Your business case is ready", html, attachments)
}
