package models

import "gorm.io/datatypes"

// ResumeTemplate stores the raw HTML a resume is rendered into.
type ResumeTemplate struct {
	BaseModel
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	HTML     string `gorm:"type:text;not null" json:"html"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Resume is the stored source data; PDF bytes are regenerated per request
// and never persisted.
type Resume struct {
	BaseModel
	UserID     string         `gorm:"not null;index" json:"user_id"`
	TemplateID string         `gorm:"not null" json:"template_id"`
	Title      string         `gorm:"not null" json:"title"`
	Data       datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	Paid       bool           `gorm:"default:false" json:"paid"`
}

// ResumeData is the request-scoped structured content substituted into a
// template.
type ResumeData struct {
	Name       string        `json:"name" validate:"required"`
	Headline   string        `json:"headline"`
	Email      string        `json:"email" validate:"omitempty,email"`
	Phone      string        `json:"phone"`
	Location   string        `json:"location"`
	Website    string        `json:"website"`
	Summary    string        `json:"summary"`
	Experience []ResumeEntry `json:"experience"`
	Education  []ResumeEntry `json:"education"`
	Skills     []string      `json:"skills"`
	Sections   []FreeSection `json:"sections"`
}

// ResumeEntry is one dated item in a repeated section.
type ResumeEntry struct {
	Title        string   `json:"title"`
	Organization string   `json:"organization"`
	Period       string   `json:"period"`
	Bullets      []string `json:"bullets"`
}

// FreeSection is an arbitrary titled free-text block.
type FreeSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
