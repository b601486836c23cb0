package usecase

import (
	"context"
	"errors"

	"gorm.io/gorm"

	natsadapter "github.com/minjun0702/nodeskillproject/internal/adapters/nats"
	repo "github.com/minjun0702/nodeskillproject/internal/adapters/postgres"
	"github.com/minjun0702/nodeskillproject/internal/domain"
	pkglog "github.com/minjun0702/nodeskillproject/pkg/log"
)

const minAboutMeLength = 150

type ResumeService interface {
	Create(ctx context.Context, traceID string, user *domain.User, title, aboutMe string) (*domain.Resume, error)
	List(ctx context.Context, user *domain.User, status, sort string) ([]domain.Resume, error)
	Get(ctx context.Context, user *domain.User, id uint) (*domain.Resume, error)
	Update(ctx context.Context, traceID string, user *domain.User, id uint, title, aboutMe string) (*domain.Resume, error)
	Delete(ctx context.Context, traceID string, user *domain.User, id uint) (uint, error)
	UpdateStatus(ctx context.Context, traceID string, recruiter *domain.User, id uint, status domain.ResumeStatus, reason string) (*domain.ResumeLog, error)
}

type resumeService struct {
	logger  pkglog.Logger
	resumes repo.ResumeRepository
	events  natsadapter.EventPublisher
}

func NewResumeService(logger pkglog.Logger, resumes repo.ResumeRepository, events natsadapter.EventPublisher) ResumeService {
	return &resumeService{logger: logger, resumes: resumes, events: events}
}

func (s *resumeService) Create(ctx context.Context, traceID string, user *domain.User, title, aboutMe string) (*domain.Resume, error) {
	if title == "" || aboutMe == "" {
		return nil, ErrFieldsRequired
	}
	if len([]rune(aboutMe)) < minAboutMeLength {
		return nil, ErrAboutMeTooShort
	}
	resume := &domain.Resume{
		UserID:  user.ID,
		Title:   title,
		AboutMe: aboutMe,
		Status:  domain.StatusApply,
	}
	if err := s.resumes.Create(ctx, resume); err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("resume_id", resume.ID).Msg("resume created")
	return resume, nil
}

func (s *resumeService) List(ctx context.Context, user *domain.User, status, sort string) ([]domain.Resume, error) {
	var filter domain.ResumeStatus
	if status != "" {
		filter = domain.ResumeStatus(status)
		if !filter.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	// applicants only ever see their own resumes
	ownerID := user.ID
	if user.Role == domain.RoleRecruiter {
		ownerID = 0
	}
	return s.resumes.List(ctx, ownerID, filter, sort == "asc")
}

func (s *resumeService) Get(ctx context.Context, user *domain.User, id uint) (*domain.Resume, error) {
	resume, err := s.visibleResume(ctx, user, id)
	if err != nil {
		return nil, err
	}
	return resume, nil
}

func (s *resumeService) Update(ctx context.Context, traceID string, user *domain.User, id uint, title, aboutMe string) (*domain.Resume, error) {
	if title == "" && aboutMe == "" {
		return nil, ErrNothingToUpdate
	}
	if aboutMe != "" && len([]rune(aboutMe)) < minAboutMeLength {
		return nil, ErrAboutMeTooShort
	}
	resume, err := s.ownedResume(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if title != "" {
		resume.Title = title
	}
	if aboutMe != "" {
		resume.AboutMe = aboutMe
	}
	if err := s.resumes.Update(ctx, resume); err != nil {
		return nil, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("resume_id", resume.ID).Msg("resume updated")
	return resume, nil
}

func (s *resumeService) Delete(ctx context.Context, traceID string, user *domain.User, id uint) (uint, error) {
	resume, err := s.ownedResume(ctx, user, id)
	if err != nil {
		return 0, err
	}
	if err := s.resumes.Delete(ctx, resume.ID); err != nil {
		return 0, err
	}
	s.logger.Info().Str("trace_id", traceID).Uint("resume_id", resume.ID).Msg("resume deleted")
	return resume.ID, nil
}

func (s *resumeService) UpdateStatus(ctx context.Context, traceID string, recruiter *domain.User, id uint, status domain.ResumeStatus, reason string) (*domain.ResumeLog, error) {
	if recruiter.Role != domain.RoleRecruiter {
		return nil, ErrRoleForbidden
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if reason == "" {
		return nil, ErrReasonRequired
	}
	resume, err := s.resumes.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	entry := &domain.ResumeLog{
		ResumeID:    resume.ID,
		RecruiterID: recruiter.ID,
		OldStatus:   resume.Status,
		NewStatus:   status,
		Reason:      reason,
	}
	if err := s.resumes.UpdateStatusWithLog(ctx, resume, entry); err != nil {
		return nil, err
	}
	if s.events != nil {
		_ = s.events.ResumeStatusChanged(ctx, entry)
	}
	s.logger.Info().Str("trace_id", traceID).Uint("resume_id", resume.ID).
		Str("status", string(status)).Msg("resume status changed")
	return entry, nil
}

// visibleResume loads a resume the user is allowed to read: recruiters see
// every resume, applicants only their own.
func (s *resumeService) visibleResume(ctx context.Context, user *domain.User, id uint) (*domain.Resume, error) {
	resume, err := s.resumes.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleRecruiter && resume.UserID != user.ID {
		return nil, ErrResumeNotFound
	}
	return resume, nil
}

// ownedResume loads a resume for mutation; only the author may modify it.
func (s *resumeService) ownedResume(ctx context.Context, user *domain.User, id uint) (*domain.Resume, error) {
	resume, err := s.resumes.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	if resume.UserID != user.ID {
		return nil, ErrResumeNotFound
	}
	return resume, nil
}
