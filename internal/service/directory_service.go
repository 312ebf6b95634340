package service

import (
	"context"

	"github.com/noah-isme/faculty-leave-api/internal/models"
	appErrors "github.com/noah-isme/faculty-leave-api/pkg/errors"
)

// DirectoryService exposes read-only lookups used by the application forms.
type DirectoryService struct {
	users      userStore
	leaveTypes leaveTypeStore
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(users userStore, leaveTypes leaveTypeStore) *DirectoryService {
	return &DirectoryService{users: users, leaveTypes: leaveTypes}
}

// SearchFaculty finds active colleagues by name, excluding the caller.
func (s *DirectoryService) SearchFaculty(ctx context.Context, caller models.Caller, filter models.FacultySearchFilter) ([]models.User, *models.Pagination, error) {
	filter.ExcludeUserID = caller.UserID
	users, total, err := s.users.SearchFaculty(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search faculty")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// LeaveTypes lists every configured leave type.
func (s *DirectoryService) LeaveTypes(ctx context.Context) ([]models.LeaveType, error) {
	types, err := s.leaveTypes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leave types")
	}
	if types == nil {
		types = []models.LeaveType{}
	}
	return types, nil
}
