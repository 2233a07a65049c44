package service

import (
	"context"

	"influence-api/internal/domain"
	"influence-api/internal/repository"
)

// GroupService reads the viewpoint group catalog backing the group selector.
type GroupService struct {
	groups repository.GroupRepository
}

func NewGroupService(groups repository.GroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

func (s *GroupService) ListGroups(ctx context.Context) ([]domain.ViewpointGroup, error) {
	return s.groups.ListGroups(ctx)
}

// GroupByID returns nil when the group does not exist.
func (s *GroupService) GroupByID(ctx context.Context, id string) (*domain.ViewpointGroup, error) {
	return s.groups.GroupByID(ctx, id)
}
