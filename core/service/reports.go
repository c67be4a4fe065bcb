package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m3rciful/todobot/core/domain"
)

// ReportService computes task statistics.
type ReportService struct {
	tasks *TaskService
}

// NewReportService builds a ReportService over the task service.
func NewReportService(tasks *TaskService) *ReportService {
	return &ReportService{tasks: tasks}
}

// Stats counts all, completed and active tasks of a user.
func (s *ReportService) Stats(ctx context.Context, userID uuid.UUID) (domain.Stats, error) {
	all, err := s.tasks.All(ctx, userID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("report: %w", err)
	}
	st := domain.Stats{Total: len(all), GeneratedAt: s.tasks.now()}
	for _, t := range all {
		switch t.State {
		case domain.TaskCompleted:
			st.Completed++
		case domain.TaskActive:
			st.Active++
		}
	}
	return st, nil
}
