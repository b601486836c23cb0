package domain

import "time"

type ResumeStatus string

const (
	StatusApply      ResumeStatus = "APPLY"
	StatusDrop       ResumeStatus = "DROP"
	StatusPass       ResumeStatus = "PASS"
	StatusInterview1 ResumeStatus = "INTERVIEW1"
	StatusInterview2 ResumeStatus = "INTERVIEW2"
	StatusFinalPass  ResumeStatus = "FINAL_PASS"
)

func (s ResumeStatus) Valid() bool {
	switch s {
	case StatusApply, StatusDrop, StatusPass, StatusInterview1, StatusInterview2, StatusFinalPass:
		return true
	}
	return false
}

type Resume struct {
	ID        uint         `gorm:"primaryKey" json:"resumeId"`
	UserID    uint         `gorm:"index;not null" json:"userId"`
	User      *User        `gorm:"foreignKey:UserID" json:"-"`
	Title     string       `gorm:"not null" json:"title"`
	AboutMe   string       `gorm:"type:text;not null" json:"aboutMe"`
	Status    ResumeStatus `gorm:"type:varchar(16);not null;default:'APPLY'" json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (Resume) TableName() string { return "resumes" }

// ResumeLog records a recruiter's status change on a resume.
type ResumeLog struct {
	ID          uint         `gorm:"primaryKey" json:"resumeLogId"`
	ResumeID    uint         `gorm:"index;not null" json:"resumeId"`
	RecruiterID uint         `gorm:"not null" json:"recruiterId"`
	OldStatus   ResumeStatus `gorm:"type:varchar(16);not null" json:"oldStatus"`
	NewStatus   ResumeStatus `gorm:"type:varchar(16);not null" json:"newStatus"`
	Reason      string       `gorm:"not null" json:"reason"`
	CreatedAt   time.Time    `json:"createdAt"`
}

func (ResumeLog) TableName() string { return "resume_logs" }
