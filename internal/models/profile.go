package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type UserProfile struct {
	UserID string `gorm:"column:user_id;type:text;primaryKey" json:"userId"`

	ResumeText      string `gorm:"column:resume_text;type:text" json:"resumeText,omitempty"`
	ResumePDFBase64 string `gorm:"column:resume_pdf_base64;type:text" json:"resumePdfBase64,omitempty"`
	// object name in the resume bucket, set instead of ResumePDFBase64 when
	// object storage is configured
	ResumePDFObject string `gorm:"column:resume_pdf_object;type:text" json:"resumePdfObject,omitempty"`

	Goals  string         `gorm:"column:goals;type:text" json:"goals"`
	Name   string         `gorm:"column:name;type:text" json:"name"`
	Title  string         `gorm:"column:title;type:text" json:"title"`
	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`

	// free-form: a JSON string or a list of items
	Experience datatypes.JSON `gorm:"column:experience;type:jsonb" json:"experience"`
	Projects   datatypes.JSON `gorm:"column:projects;type:jsonb" json:"projects"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updatedAt"`
}

func (UserProfile) TableName() string { return "profiles" }

func (p *UserProfile) HasResume() bool {
	return p != nil && (p.ResumeText != "" || p.ResumePDFBase64 != "" || p.ResumePDFObject != "")
}

func (p *UserProfile) HasResumePDF() bool {
	return p != nil && (p.ResumePDFBase64 != "" || p.ResumePDFObject != "")
}
