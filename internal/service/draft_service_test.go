package service

import (
	"casepilot/internal/config"
	"casepilot/internal/model"
	"casepilot/internal/repository"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDraftRepo is an in-memory DraftRepo with the same conditional-update
// semantics as the Mongo implementation
type memDraftRepo struct {
	drafts map[string]*model.Draft
	tokens map[string]string // token -> id
	nextID int
	fail   error
}

func newMemDraftRepo() *memDraftRepo {
	return &memDraftRepo{drafts: map[string]*model.Draft{}, tokens: map[string]string{}}
}

func (r *memDraftRepo) Create(ctx context.Context, draft *model.Draft) (string, error) {
	if r.fail != nil {
		return "", r.fail
	}
	if _, exists := r.tokens[draft.ResumeToken]; exists {
		return "", repository.ErrDuplicateToken
	}
	r.nextID++
	draft.ID = fmt.Sprintf("draft-%d", r.nextID)
	now := time.Now()
	draft.CreatedAt = now
	draft.UpdatedAt = now
	copied := *draft
	r.drafts[draft.ID] = &copied
	r.tokens[draft.ResumeToken] = draft.ID
	return draft.ID, nil
}

func (r *memDraftRepo) GetByID(ctx context.Context, id string) (*model.Draft, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	d, ok := r.drafts[id]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (r *memDraftRepo) GetByToken(ctx context.Context, token string) (*model.Draft, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	id, ok := r.tokens[token]
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *memDraftRepo) SaveProgress(ctx context.Context, id string, step int, data map[string]string) (*model.Draft, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	d, ok := r.drafts[id]
	if !ok || d.Status != model.DraftStatusDraft {
		return nil, nil
	}
	d.Step = step
	d.Data = data
	d.UpdatedAt = time.Now()
	copied := *d
	return &copied, nil
}

func (r *memDraftRepo) MarkSubmitted(ctx context.Context, id string, data map[string]string) (*model.Draft, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	d, ok := r.drafts[id]
	if !ok || d.Status != model.DraftStatusDraft {
		return nil, nil
	}
	now := time.Now()
	d.Status = model.DraftStatusSubmitted
	d.Data = data
	d.UpdatedAt = now
	d.SubmittedAt = &now
	copied := *d
	return &copied, nil
}

func (r *memDraftRepo) ListByStatus(ctx context.Context, status model.DraftStatus) ([]*model.Draft, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	var out []*model.Draft
	for _, d := range r.drafts {
		if d.Status == status {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memDraftRepo) Delete(ctx context.Context, id string) error {
	if d, ok := r.drafts[id]; ok {
		delete(r.tokens, d.ResumeToken)
		delete(r.drafts, id)
	}
	return nil
}

func (r *memDraftRepo) EnsureIndexes(ctx context.Context) error { return nil }

// memCaseRepo is an in-memory CaseRepo
type memCaseRepo struct {
	cases  map[string]*model.BusinessCase
	nextID int
}

func newMemCaseRepo() *memCaseRepo {
	return &memCaseRepo{cases: map[string]*model.BusinessCase{}}
}

func (r *memCaseRepo) Create(ctx context.Context, bc *model.BusinessCase) (string, error) {
	r.nextID++
	bc.ID = fmt.Sprintf("case-%d", r.nextID)
	bc.CreatedAt = time.Now()
	copied := *bc
	r.cases[bc.ID] = &copied
	return bc.ID, nil
}

func (r *memCaseRepo) GetByID(ctx context.Context, id string) (*model.BusinessCase, error) {
	bc, ok := r.cases[id]
	if !ok {
		return nil, nil
	}
	copied := *bc
	return &copied, nil
}

func (r *memCaseRepo) GetByDraftID(ctx context.Context, draftID string) (*model.BusinessCase, error) {
	for _, bc := range r.cases {
		if bc.DraftID == draftID {
			copied := *bc
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memCaseRepo) List(ctx context.Context) ([]*model.BusinessCase, error) {
	var out []*model.BusinessCase
	for _, bc := range r.cases {
		copied := *bc
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memCaseRepo) SetDelivery(ctx context.Context, id string, status model.DeliveryStatus, messageID string) error {
	if bc, ok := r.cases[id]; ok {
		bc.Delivery = status
		bc.MessageID = messageID
	}
	return nil
}

func newTestDraftService(t *testing.T) (*DraftService, *memDraftRepo, *memCaseRepo) {
	t.Helper()
	draftRepo := newMemDraftRepo()
	caseRepo := newMemCaseRepo()
	formRepo := &fakeFormRepo{form: testForm()}

	// Collaborators without keys run in their offline modes
	mailer := NewMailerService(&config.MailConfig{TimeoutMS: 1000})
	generator := NewGeneratorService(&config.AIConfig{TimeoutMS: 1000})
	renderer := NewRendererService(&config.RenderConfig{TimeoutMS: 1000})

	svc := NewDraftService(draftRepo, formRepo, caseRepo, nil,
		mailer, generator, renderer, "http://localhost:3000", "default")
	return svc, draftRepo, caseRepo
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "jane@example.com", nil)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "name", ve.Field)

	_, err = svc.Create(ctx, "   ", "jane@example.com", nil)
	_, ok = AsValidation(err)
	assert.True(t, ok, "whitespace-only name is empty")

	_, err = svc.Create(ctx, "Jane Doe", "not-an-email", nil)
	ve, ok = AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "email", ve.Field)
}

func TestCreateIssuesTokenAndStepOne(t *testing.T) {
	svc, _, _ := newTestDraftService(t)

	draft, err := svc.Create(context.Background(), "Jane Doe", "jane@example.com", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, draft.ID)
	assert.NotEmpty(t, draft.ResumeToken)
	assert.Equal(t, 1, draft.Step)
	assert.Equal(t, model.DraftStatusDraft, draft.Status)
	assert.NotNil(t, draft.Data)
}

func TestSaveUnknownDraft(t *testing.T) {
	svc, _, _ := newTestDraftService(t)

	_, err := svc.Save(context.Background(), "missing", 2, map[string]string{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveStepRange(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, "Jane Doe", "jane@example.com", nil)
	require.NoError(t, err)

	for _, step := range []int{0, -1, 4, 99} {
		_, err := svc.Save(ctx, draft.ID, step, map[string]string{})
		_, ok := AsValidation(err)
		assert.True(t, ok, "step %d must be rejected", step)
	}
}

func TestSaveReplacesDataAndIsIdempotent(t *testing.T) {
	svc, repo, _ := newTestDraftService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, "Jane Doe", "jane@example.com", map[string]string{"industry": "retail"})
	require.NoError(t, err)

	data := map[string]string{"goal": "Grow revenue 20% in 12 months"}
	first, err := svc.Save(ctx, draft.ID, 2, data)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Step)
	// Full replace: the initial industry answer is gone unless resent
	assert.Equal(t, data, first.Data)

	second, err := svc.Save(ctx, draft.ID, 2, data)
	require.NoError(t, err)
	assert.Equal(t, first.Step, second.Step)
	assert.Equal(t, first.Data, second.Data)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	stored, err := repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, data, stored.Data)
}

func TestCreateSaveResumeScenario(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	ctx := context.Background()

	draft, err := svc.Create(ctx, "Jane Doe", "jane@example.com", map[string]string{})
	require.NoError(t, err)
	require.NotEmpty(t, draft.ResumeToken)

	_, err = svc.Save(ctx, draft.ID, 2, map[string]string{"goal": "Grow revenue 20% in 12 months"})
	require.NoError(t, err)

	resumed, err := svc.Resume(ctx, draft.ResumeToken)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, resumed.ID)
	assert.Equal(t, 2, resumed.Step)
	assert.Equal(t, "Grow revenue 20% in 12 months", resumed.Data["goal"])
}

func TestResumeUnknownToken(t *testing.T) {
	svc, _, _ := newTestDraftService(t)

	_, err := svc.Resume(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResumeSubmittedDraftNotFound(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, "Jane Doe", "jane@example.com", nil)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, draft.ID, map[string]string{"goal": "done"})
	require.NoError(t, err)

	// The token still resolves to a record, but that record is submitted
	_, err = svc.Resume(ctx, draft.ResumeToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAfterFinalizeConflicts(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, "Jane Doe", "jane@example.com", nil)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, draft.ID, nil)
	require.NoError(t, err)

	_, err = svc.Save(ctx, draft.ID, 2, map[string]string{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFinalizeStoresCaseAndDelivers(t *testing.T) {
	svc, draftRepo, caseRepo := newTestDraftService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, "Jane Doe", "jane@example.com", nil)
	require.NoError(t, err)

	data := map[string]string{"main_challenge": "Churn is eating growth"}
	bc, err := svc.Finalize(ctx, draft.ID, data)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, bc.DraftID)
	assert.Equal(t, "jane@example.com", bc.Email)
	assert.Equal(t, "mock", bc.Model)
	assert.Equal(t, model.DeliverySent, bc.Delivery)
	assert.NotEmpty(t, bc.MessageID)

	stored, err := draftRepo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DraftStatusSubmitted, stored.Status)
	assert.NotNil(t, stored.SubmittedAt)
	assert.Equal(t, data, stored.Data)

	cases, err := caseRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestFinalizeTwiceConflicts(t *testing.T) {
	svc, _, caseRepo := newTestDraftService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, "Jane Doe", "jane@example.com", nil)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, draft.ID, nil)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, draft.ID, nil)
	assert.ErrorIs(t, err, ErrConflict)

	// No double generation
	cases, err := caseRepo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cases, 1)
}

func TestFinalizeUnknownDraft(t *testing.T) {
	svc, _, _ := newTestDraftService(t)

	_, err := svc.Finalize(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendResumeLink(t *testing.T) {
	svc, _, _ := newTestDraftService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, "Jane Doe", "jane@example.com", nil)
	require.NoError(t, err)

	messageID, err := svc.SendResumeLink(ctx, draft.ID, "jane@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, messageID)

	_, err = svc.SendResumeLink(ctx, "missing", "jane@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SendResumeLink(ctx, draft.ID, "bad-address")
	_, ok := AsValidation(err)
	assert.True(t, ok)
}

func TestAbandonDeletesDraft(t *testing.T) {
	svc, repo, _ := newTestDraftService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, "Jane Doe", "jane@example.com", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(ctx, draft.ID))

	stored, err := repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	assert.ErrorIs(t, svc.Abandon(ctx, draft.ID), ErrNotFound)
}

func TestStorageFailureIsInternal(t *testing.T) {
	svc, repo, _ := newTestDraftService(t)
	repo.fail = errors.New("connection reset")

	_, err := svc.Save(context.Background(), "any", 1, nil)
	require.Error(t, err)
	_, ok := AsValidation(err)
	assert.False(t, ok)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestDuplicateTokenIsConflict(t *testing.T) {
	svc, repo, _ := newTestDraftService(t)
	repo.fail = repository.ErrDuplicateToken

	_, err := svc.Create(context.Background(), "John Doe", "john@example.com", nil)
	assert.ErrorIs(t, err, ErrConflict)
}
