package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"portfolio-notes-be/internal/dto"
	"portfolio-notes-be/internal/entity"
	"portfolio-notes-be/internal/pkg/apperror"
	"portfolio-notes-be/internal/repository/contract"
	"portfolio-notes-be/internal/repository/specification"
	"portfolio-notes-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory fakes ---

type fakeNoteRepository struct {
	notes map[uuid.UUID]*entity.Note
}

func newFakeNoteRepository() *fakeNoteRepository {
	return &fakeNoteRepository{notes: make(map[uuid.UUID]*entity.Note)}
}

func (r *fakeNoteRepository) Create(_ context.Context, note *entity.Note) error {
	cp := *note
	r.notes[note.Id] = &cp
	return nil
}

func (r *fakeNoteRepository) Update(_ context.Context, note *entity.Note) error {
	cp := *note
	r.notes[note.Id] = &cp
	return nil
}

func (r *fakeNoteRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.notes, id)
	return nil
}

func (r *fakeNoteRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *fakeNoteRepository) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var result []*entity.Note
	for _, note := range r.notes {
		if matchesNote(note, specs) {
			cp := *note
			result = append(result, &cp)
		}
	}
	applyOrder(result, specs)
	return result, nil
}

func (r *fakeNoteRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

func matchesNote(note *entity.Note, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if note.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if note.UserId != s.UserID {
				return false
			}
		case specification.PublicOnly:
			if !note.IsPublic {
				return false
			}
		case specification.ByVisibility:
			if note.IsPublic != s.IsPublic {
				return false
			}
		}
	}
	return true
}

func applyOrder(notes []*entity.Note, specs []specification.Specification) {
	for _, spec := range specs {
		if s, ok := spec.(specification.OrderBy); ok {
			sort.SliceStable(notes, func(i, j int) bool {
				var ti, tj time.Time
				switch s.Field {
				case "updated_at":
					ti, tj = notes[i].CreatedAt, notes[j].CreatedAt
					if notes[i].UpdatedAt != nil {
						ti = *notes[i].UpdatedAt
					}
					if notes[j].UpdatedAt != nil {
						tj = *notes[j].UpdatedAt
					}
				default:
					ti, tj = notes[i].CreatedAt, notes[j].CreatedAt
				}
				if s.Desc {
					return ti.After(tj)
				}
				return ti.Before(tj)
			})
		}
	}
}

type fakeUnitOfWork struct {
	noteRepo *fakeNoteRepository
}

func (u *fakeUnitOfWork) Begin(_ context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                 { return nil }
func (u *fakeUnitOfWork) Rollback() error               { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository         { return nil }
func (u *fakeUnitOfWork) NoteRepository() contract.NoteRepository         { return u.noteRepo }
func (u *fakeUnitOfWork) ActivityRepository() contract.ActivityRepository { return nil }

type fakeRepositoryFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeRepositoryFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type recordingPublisher struct {
	payloads [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newTestNoteService() (INoteService, *fakeNoteRepository, *recordingPublisher) {
	repo := newFakeNoteRepository()
	pub := &recordingPublisher{}
	svc := NewNoteService(
		&fakeRepositoryFactory{uow: &fakeUnitOfWork{noteRepo: repo}},
		pub,
		nil,
		nopLogger{},
	)
	return svc, repo, pub
}

func seedNote(repo *fakeNoteRepository, owner uuid.UUID, title string, public bool, createdAt time.Time) *entity.Note {
	note := &entity.Note{
		Id:        uuid.New(),
		Title:     title,
		Content:   "content of " + title,
		IsPublic:  public,
		UserId:    owner,
		CreatedAt: createdAt,
	}
	repo.notes[note.Id] = note
	return note
}

// --- Create ---

func TestNoteServiceCreate(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("sets owner and defaults to private", func(t *testing.T) {
		svc, repo, pub := newTestNoteService()

		res, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{Title: "  hello  ", Content: " world "})
		require.NoError(t, err)

		assert.Equal(t, owner, res.UserId)
		assert.False(t, res.IsPublic)
		assert.Equal(t, "hello", res.Title)
		assert.Equal(t, "world", res.Content)

		stored := repo.notes[res.Id]
		require.NotNil(t, stored)
		assert.Equal(t, owner, stored.UserId)
		assert.False(t, stored.IsPublic)

		assert.Len(t, pub.payloads, 1)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()

		_, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{Title: "   ", Content: "body"})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		assert.Empty(t, repo.notes)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()

		_, err := svc.Create(ctx, owner, &dto.CreateNoteRequest{Title: "title", Content: "\t\n"})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		assert.Empty(t, repo.notes)
	})

	t.Run("rejects missing session", func(t *testing.T) {
		svc, _, _ := newTestNoteService()

		_, err := svc.Create(ctx, uuid.Nil, &dto.CreateNoteRequest{Title: "title", Content: "body"})
		assert.True(t, apperror.IsCode(err, apperror.CodeUnauthenticated))
	})
}

// --- Listing ---

func TestNoteServiceListOwn(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	svc, repo, _ := newTestNoteService()
	base := time.Now().Add(-time.Hour)
	older := seedNote(repo, owner, "older", false, base)
	newer := seedNote(repo, owner, "newer", true, base.Add(time.Minute))
	seedNote(repo, other, "not mine", true, base)

	res, err := svc.ListOwn(ctx, owner)
	require.NoError(t, err)
	require.Len(t, res, 2)

	// Most recently touched first, never anyone else's notes.
	assert.Equal(t, newer.Id, res[0].Id)
	assert.Equal(t, older.Id, res[1].Id)
	for _, n := range res {
		assert.Equal(t, owner, n.UserId)
	}
}

func TestNoteServiceListPublic(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	svc, repo, _ := newTestNoteService()
	base := time.Now().Add(-time.Hour)
	pub1 := seedNote(repo, owner, "public one", true, base)
	pub2 := seedNote(repo, uuid.New(), "public two", true, base.Add(time.Minute))
	seedNote(repo, owner, "private", false, base.Add(2*time.Minute))

	res, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, res, 2)

	// Newest first, private notes never included.
	assert.Equal(t, pub2.Id, res[0].Id)
	assert.Equal(t, pub1.Id, res[1].Id)
}

// --- Ownership enforcement ---

func TestNoteServiceShow(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	svc, repo, _ := newTestNoteService()
	note := seedNote(repo, owner, "mine", false, time.Now())

	t.Run("owner reads own note", func(t *testing.T) {
		res, err := svc.Show(ctx, owner, note.Id)
		require.NoError(t, err)
		assert.Equal(t, note.Id, res.Id)
	})

	t.Run("stranger gets forbidden", func(t *testing.T) {
		_, err := svc.Show(ctx, stranger, note.Id)
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
	})

	t.Run("unknown id gets not found", func(t *testing.T) {
		_, err := svc.Show(ctx, owner, uuid.New())
		assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	})
}

func TestNoteServiceUpdate(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	t.Run("owner updates title and content", func(t *testing.T) {
		svc, repo, pub := newTestNoteService()
		note := seedNote(repo, owner, "before", false, time.Now())

		res, err := svc.Update(ctx, owner, &dto.UpdateNoteRequest{Id: note.Id, Title: "after", Content: "new body"})
		require.NoError(t, err)
		assert.Equal(t, "after", res.Title)
		assert.Equal(t, "new body", res.Content)
		require.NotNil(t, res.UpdatedAt)

		assert.Equal(t, "after", repo.notes[note.Id].Title)
		assert.Len(t, pub.payloads, 1)
	})

	t.Run("stranger cannot update", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()
		note := seedNote(repo, owner, "before", false, time.Now())

		_, err := svc.Update(ctx, stranger, &dto.UpdateNoteRequest{Id: note.Id, Title: "hijacked", Content: "x"})
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
		assert.Equal(t, "before", repo.notes[note.Id].Title)
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()
		note := seedNote(repo, owner, "before", false, time.Now())

		_, err := svc.Update(ctx, owner, &dto.UpdateNoteRequest{Id: note.Id, Title: "  ", Content: "x"})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		assert.Equal(t, "before", repo.notes[note.Id].Title)
	})
}

// --- Visibility ---

func TestNoteServiceVisibility(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	t.Run("publish then unpublish", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()
		note := seedNote(repo, owner, "draft", false, time.Now())

		// Private note is invisible to anonymous readers.
		_, err := svc.ShowPublic(ctx, note.Id)
		assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))

		res, err := svc.SetVisibility(ctx, owner, &dto.SetVisibilityRequest{Id: note.Id, IsPublic: true})
		require.NoError(t, err)
		assert.True(t, res.IsPublic)

		shown, err := svc.ShowPublic(ctx, note.Id)
		require.NoError(t, err)
		assert.Equal(t, note.Id, shown.Id)

		listed, err := svc.ListPublic(ctx)
		require.NoError(t, err)
		require.Len(t, listed, 1)

		_, err = svc.SetVisibility(ctx, owner, &dto.SetVisibilityRequest{Id: note.Id, IsPublic: false})
		require.NoError(t, err)

		_, err = svc.ShowPublic(ctx, note.Id)
		assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	})

	t.Run("stranger cannot toggle visibility", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()
		note := seedNote(repo, owner, "draft", false, time.Now())

		_, err := svc.SetVisibility(ctx, stranger, &dto.SetVisibilityRequest{Id: note.Id, IsPublic: true})
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
		assert.False(t, repo.notes[note.Id].IsPublic)
	})

	t.Run("public response never carries owner id", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()
		seedNote(repo, owner, "shared", true, time.Now())

		listed, err := svc.ListPublic(ctx)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		// PublicNoteResponse has no UserId field; verify content survived.
		assert.Equal(t, "shared", listed[0].Title)
	})
}

// --- Delete ---

func TestNoteServiceDelete(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	t.Run("owner deletes, second delete reports not found", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()
		note := seedNote(repo, owner, "gone soon", false, time.Now())

		require.NoError(t, svc.Delete(ctx, owner, note.Id))
		assert.NotContains(t, repo.notes, note.Id)

		err := svc.Delete(ctx, owner, note.Id)
		assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()
		note := seedNote(repo, owner, "keep", false, time.Now())

		err := svc.Delete(ctx, stranger, note.Id)
		assert.True(t, apperror.IsCode(err, apperror.CodeForbidden))
		assert.Contains(t, repo.notes, note.Id)
	})

	t.Run("deleted note disappears from listings", func(t *testing.T) {
		svc, repo, _ := newTestNoteService()
		note := seedNote(repo, owner, "listed", true, time.Now())

		require.NoError(t, svc.Delete(ctx, owner, note.Id))

		own, err := svc.ListOwn(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, own)

		public, err := svc.ListPublic(ctx)
		require.NoError(t, err)
		assert.Empty(t, public)
	})
}
