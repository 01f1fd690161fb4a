package mapper

import (
	"portfolio-notes-be/internal/entity"
	"portfolio-notes-be/internal/model"
)

type ActivityMapper struct{}

func NewActivityMapper() *ActivityMapper {
	return &ActivityMapper{}
}

func (m *ActivityMapper) ToEntity(a *model.Activity) *entity.Activity {
	if a == nil {
		return nil
	}
	return &entity.Activity{
		Id:         a.Id,
		EventType:  a.EventType,
		NoteId:     a.NoteId,
		UserId:     a.UserId,
		Detail:     a.Detail,
		OccurredAt: a.OccurredAt,
		CreatedAt:  a.CreatedAt,
	}
}

func (m *ActivityMapper) ToModel(a *entity.Activity) *model.Activity {
	if a == nil {
		return nil
	}
	return &model.Activity{
		Id:         a.Id,
		EventType:  a.EventType,
		NoteId:     a.NoteId,
		UserId:     a.UserId,
		Detail:     a.Detail,
		OccurredAt: a.OccurredAt,
		CreatedAt:  a.CreatedAt,
	}
}

func (m *ActivityMapper) ToEntities(items []*model.Activity) []*entity.Activity {
	entities := make([]*entity.Activity, len(items))
	for i, a := range items {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
