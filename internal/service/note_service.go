package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"portfolio-notes-be/internal/dto"
	"portfolio-notes-be/internal/entity"
	"portfolio-notes-be/internal/pkg/apperror"
	"portfolio-notes-be/internal/pkg/logger"
	"portfolio-notes-be/internal/repository/specification"
	"portfolio-notes-be/internal/repository/unitofwork"
	"portfolio-notes-be/pkg/events"
	pktNats "portfolio-notes-be/pkg/nats"

	"github.com/google/uuid"
)

// INoteService mediates every note operation between the HTTP layer and the
// store. It owns the ownership and visibility rules: only the owner may read
// private notes or mutate anything, and anonymous callers see a note if and
// only if it is public.
type INoteService interface {
	ListOwn(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error)
	ListPublic(ctx context.Context) ([]*dto.PublicNoteResponse, error)
	ShowPublic(ctx context.Context, id uuid.UUID) (*dto.PublicNoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	SetVisibility(ctx context.Context, userId uuid.UUID, req *dto.SetVisibilityRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
	}
}

func (c *noteService) ListOwn(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthenticated("login required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("failed to list notes", err)
	}

	response := make([]*dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		response = append(response, toNoteResponse(note))
	}
	return response, nil
}

func (c *noteService) ListPublic(ctx context.Context) ([]*dto.PublicNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.PublicOnly{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal("failed to list public notes", err)
	}

	response := make([]*dto.PublicNoteResponse, 0, len(notes))
	for _, note := range notes {
		response = append(response, toPublicNoteResponse(note))
	}
	return response, nil
}

func (c *noteService) ShowPublic(ctx context.Context, id uuid.UUID) (*dto.PublicNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Internal("failed to load note", err)
	}
	// A private note must be indistinguishable from a missing one.
	if note == nil || !note.IsPublic {
		return nil, apperror.NotFound("note not found")
	}
	return toPublicNoteResponse(note), nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthenticated("login required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := c.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthenticated("login required")
	}

	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" {
		return nil, apperror.Validation("title must not be empty")
	}
	if content == "" {
		return nil, apperror.Validation("content must not be empty")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note := entity.Note{
		Id:        uuid.New(),
		Title:     title,
		Content:   content,
		IsPublic:  false,
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, apperror.Internal("failed to create note", err)
	}

	c.publishNoteEvent(ctx, events.NoteCreated, &note, "")

	return toNoteResponse(&note), nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthenticated("login required")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation("title must not be empty")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := c.findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	note.Title = title
	note.Content = req.Content
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, apperror.Internal("failed to update note", err)
	}

	c.publishNoteEvent(ctx, events.NoteUpdated, note, "")

	return toNoteResponse(note), nil
}

func (c *noteService) SetVisibility(ctx context.Context, userId uuid.UUID, req *dto.SetVisibilityRequest) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.Unauthenticated("login required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := c.findOwned(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	note.IsPublic = req.IsPublic
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, apperror.Internal("failed to change note visibility", err)
	}

	detail := "private"
	if note.IsPublic {
		detail = "public"
	}
	c.publishNoteEvent(ctx, events.NoteVisibilityChanged, note, detail)

	return toNoteResponse(note), nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if userId == uuid.Nil {
		return apperror.Unauthenticated("login required")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := c.findOwned(ctx, uow, userId, id)
	if err != nil {
		// Deleting an already-deleted note reports NotFound; callers treat
		// it as "already gone", not as a fatal failure.
		return err
	}

	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return apperror.Internal("failed to delete note", err)
	}

	c.publishNoteEvent(ctx, events.NoteDeleted, note, "")

	return nil
}

// findOwned loads a note by id and enforces ownership. Missing id maps to
// NotFound, someone else's note to Forbidden.
func (c *noteService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Internal("failed to load note", err)
	}
	if note == nil {
		return nil, apperror.NotFound("note not found")
	}
	if note.UserId != userId {
		return nil, apperror.Forbidden("note belongs to another user")
	}
	return note, nil
}

// publishNoteEvent emits the lifecycle event on the in-process bus and, when
// configured, to NATS. Event delivery is auxiliary and never fails the request.
func (c *noteService) publishNoteEvent(ctx context.Context, eventType string, note *entity.Note, detail string) {
	msg := dto.NoteEventMessage{
		EventType:  eventType,
		NoteId:     note.Id,
		UserId:     note.UserId,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("note", "failed to marshal note event", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		c.log.Warn("note", "failed to publish note event", map[string]interface{}{
			"event_type": eventType,
			"note_id":    note.Id.String(),
			"error":      err.Error(),
		})
	}

	if c.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: eventType,
			Data: map[string]interface{}{
				"note_id": note.Id,
				"user_id": note.UserId,
				"title":   note.Title,
			},
			OccurredAt: time.Now(),
		}
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.log.Warn("note", "failed to publish note event to NATS", map[string]interface{}{
				"event_type": eventType,
				"error":      err.Error(),
			})
		}
	}
}

func toNoteResponse(note *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		IsPublic:  note.IsPublic,
		UserId:    note.UserId,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func toPublicNoteResponse(note *entity.Note) *dto.PublicNoteResponse {
	return &dto.PublicNoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
