package repo

import (
	"context"
	"crypto/subtle"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minjun0702/nodeskillproject/internal/domain"
)

// ErrStaleToken is returned by Rotate when the stored fingerprint does not
// match the presented one (already rotated, revoked, or never issued).
var ErrStaleToken = errors.New("stale refresh token")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

type RefreshTokenRepository interface {
	// Upsert stores the fingerprint as the single live refresh token for
	// the user, replacing whatever was there before.
	Upsert(ctx context.Context, userID uint, fingerprint string) error
	FindByUserID(ctx context.Context, userID uint) (*domain.RefreshToken, error)
	// Rotate atomically replaces oldFingerprint with newFingerprint. The
	// row is locked for the compare-and-swap so two concurrent rotations
	// of the same token cannot both succeed.
	Rotate(ctx context.Context, userID uint, oldFingerprint, newFingerprint string) error
	Revoke(ctx context.Context, userID uint) error
}

type ResumeRepository interface {
	Create(ctx context.Context, resume *domain.Resume) error
	FindByID(ctx context.Context, id uint) (*domain.Resume, error)
	// List returns resumes with their author preloaded. userID of 0 means
	// no ownership filter; empty status means no status filter.
	List(ctx context.Context, userID uint, status domain.ResumeStatus, sortAsc bool) ([]domain.Resume, error)
	Update(ctx context.Context, resume *domain.Resume) error
	Delete(ctx context.Context, id uint) error
	// UpdateStatusWithLog persists the status change and its log entry in
	// one transaction.
	UpdateStatusWithLog(ctx context.Context, resume *domain.Resume, entry *domain.ResumeLog) error
}

type userRepo struct{ db *gorm.DB }

type refreshTokenRepo struct{ db *gorm.DB }

type resumeRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepo{db: db}
}

func NewResumeRepository(db *gorm.DB) ResumeRepository { return &resumeRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *refreshTokenRepo) Upsert(ctx context.Context, userID uint, fingerprint string) error {
	token := domain.RefreshToken{UserID: userID, TokenHash: &fingerprint}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "updated_at"}),
		}).
		Create(&token).Error
}

func (r *refreshTokenRepo) FindByUserID(ctx context.Context, userID uint) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepo) Rotate(ctx context.Context, userID uint, oldFingerprint, newFingerprint string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token domain.RefreshToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStaleToken
		}
		if err != nil {
			return err
		}
		if token.TokenHash == nil ||
			subtle.ConstantTimeCompare([]byte(*token.TokenHash), []byte(oldFingerprint)) != 1 {
			return ErrStaleToken
		}
		return tx.Model(&token).Update("token_hash", newFingerprint).Error
	})
}

func (r *refreshTokenRepo) Revoke(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&domain.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("token_hash", nil).Error
}

func (r *resumeRepo) Create(ctx context.Context, resume *domain.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepo) FindByID(ctx context.Context, id uint) (*domain.Resume, error) {
	var resume domain.Resume
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&resume).Error; err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *resumeRepo) List(ctx context.Context, userID uint, status domain.ResumeStatus, sortAsc bool) ([]domain.Resume, error) {
	q := r.db.WithContext(ctx).Preload("User")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	order := "created_at DESC"
	if sortAsc {
		order = "created_at ASC"
	}
	var resumes []domain.Resume
	if err := q.Order(order).Find(&resumes).Error; err != nil {
		return nil, err
	}
	return resumes, nil
}

func (r *resumeRepo) Update(ctx context.Context, resume *domain.Resume) error {
	return r.db.WithContext(ctx).Save(resume).Error
}

func (r *resumeRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Resume{}, id).Error
}

func (r *resumeRepo) UpdateStatusWithLog(ctx context.Context, resume *domain.Resume, entry *domain.ResumeLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(resume).Update("status", entry.NewStatus).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}
