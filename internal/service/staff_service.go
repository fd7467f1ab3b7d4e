package service

import (
	"context"

	"github.com/JulianoPassing/scc-tickets/internal/domain"
	"github.com/JulianoPassing/scc-tickets/internal/permissions"
	"github.com/JulianoPassing/scc-tickets/internal/repository"
)

// StaffService exposes the staff directory and per-member capabilities.
type StaffService struct {
	staff   repository.StaffRepository
	checker *permissions.Checker
}

// NewStaffService constructs the service.
func NewStaffService(staff repository.StaffRepository, checker *permissions.Checker) *StaffService {
	return &StaffService{staff: staff, checker: checker}
}

// Directory lists active database staff accounts. Discord-derived staff have
// no rows and do not appear here.
func (s *StaffService) Directory(ctx context.Context) ([]domain.Staff, error) {
	return s.staff.ListActive(ctx)
}

// CategoriesFor resolves the category set the staff member may currently act
// on, including HOUSING when the broker check passes.
func (s *StaffService) CategoriesFor(ctx context.Context, staff *domain.Staff) []domain.CategoryInfo {
	allowed := s.checker.AllowedCategories(ctx, staff)
	out := make([]domain.CategoryInfo, 0, len(allowed))
	for _, category := range allowed {
		if info, ok := domain.CategoryByID(category); ok {
			out = append(out, info)
		}
	}
	return out
}
