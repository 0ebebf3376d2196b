// Package domain defines the persistence models for the document-generation
// service: users, template catalog entries, per-template form fields, and the
// documents produced by filling those forms. These types are mapped with GORM
// and form the core data layer of the application.
package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Document lifecycle statuses.
const (
	// DocumentStatusDraft marks a document whose form is still being filled.
	DocumentStatusDraft = "draft"
	// DocumentStatusGenerated marks a document whose answers are frozen and
	// whose body can be rendered.
	DocumentStatusGenerated = "generated"
)

// FieldType enumerates the supported form-field kinds. Validation dispatches
// exhaustively on this value, so adding a new kind requires touching every
// switch that consumes it.
type FieldType string

// Supported field types.
const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
)

// User represents an account that owns documents. Accounts are created either
// through web registration (email or phone plus password) or implicitly when
// a Telegram user first talks to the bot.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Email / Phone: optional contact identifiers, each unique when present.
//   - TelegramID: optional chat identity for the bot transport, unique when present.
//   - Name: display name.
//   - PasswordHash: bcrypt hash; empty for bot-only accounts.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type User struct {
	ID           string         `json:"id"              gorm:"type:char(36);primaryKey"`
	Email        *string        `json:"email,omitempty" gorm:"type:varchar(255);uniqueIndex"`
	Phone        *string        `json:"phone,omitempty" gorm:"type:varchar(32);uniqueIndex"`
	TelegramID   *string        `json:"-"               gorm:"type:varchar(64);uniqueIndex"`
	Name         string         `json:"name"            gorm:"type:varchar(255);not null"`
	PasswordHash string         `json:"-"               gorm:"type:varchar(255)"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"               gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Category groups templates for browsing (government agencies, courts, banks,
// employers, …). Categories are seeded by an administrative process and are
// effectively read-only at runtime.
type Category struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"        gorm:"type:varchar(255);not null"`
	Slug        string    `json:"slug"        gorm:"type:varchar(64);not null;uniqueIndex"`
	Icon        string    `json:"icon"        gorm:"type:varchar(64)"`
	Description string    `json:"description" gorm:"type:text"`
	Order       int       `json:"order"       gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Template is a document blueprint: an HTML body containing {{placeholder}}
// markers plus an ordered schema of form fields. Templates are immutable
// during a form session; the session copies the field list at start so later
// edits cannot corrupt an in-flight fill.
//
// Fields:
//   - ID: UUID primary key.
//   - Title / Description: catalog presentation.
//   - CategoryID: owning category (indexed).
//   - BodyHTML: raw HTML with {{fieldName}} placeholders.
//   - ApplicantType: "physical", "legal", or "both".
//   - Tags: comma-separated keywords for search.
//   - PopularityScore: descending sort hint for the default listing order.
//   - IsActive: inactive templates are hidden from all listings.
//   - Fields: ordered form-field schema ((step_number, order) ascending).
type Template struct {
	ID              string         `json:"id"               gorm:"type:char(36);primaryKey"`
	Title           string         `json:"title"            gorm:"type:varchar(255);not null"`
	Description     string         `json:"description"      gorm:"type:text"`
	CategoryID      string         `json:"category_id"      gorm:"type:char(36);not null;index"`
	BodyHTML        string         `json:"-"                gorm:"type:text;not null"`
	ApplicantType   string         `json:"applicant_type"   gorm:"type:varchar(16);not null;default:'both';check:applicant_type IN ('physical','legal','both')"`
	Tags            string         `json:"tags"             gorm:"type:text"`
	PopularityScore int            `json:"popularity_score" gorm:"not null;default:0"`
	IsActive        bool           `json:"is_active"        gorm:"not null;default:true"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-"                gorm:"index"`

	// Category is the owning catalog section.
	Category Category `json:"category" gorm:"foreignKey:CategoryID;references:ID"`
	// Fields is the ordered form schema for this template.
	Fields []FormField `json:"fields,omitempty" gorm:"foreignKey:TemplateID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Template.
func (Template) TableName() string { return "templates" }

// FormField is one question in a template's form. Within a template the
// (StepNumber, Order) pair is unique and defines a strict total order over
// fields; sessions always present fields in that order.
//
// Fields:
//   - FieldName: placeholder key, unique within the template.
//   - Type: one of the FieldType constants.
//   - Label: the question shown to the user.
//   - Placeholder: optional example value shown as a hint.
//   - StepNumber: positive step grouping; Order positions the field within it.
//   - IsRequired: empty input is rejected when set.
//   - ValidationRules: optional JSON object (minLength | pattern | min | max).
//   - Options: comma-separated option list, select fields only.
type FormField struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	TemplateID      string    `json:"template_id"      gorm:"type:char(36);not null;index;uniqueIndex:ux_field_step_order,priority:1"`
	FieldName       string    `json:"field_name"       gorm:"type:varchar(128);not null"`
	Type            FieldType `json:"field_type"       gorm:"column:field_type;type:varchar(16);not null;check:field_type IN ('text','textarea','number','date','select')"`
	Label           string    `json:"label"            gorm:"type:varchar(255);not null"`
	Placeholder     string    `json:"placeholder"      gorm:"type:varchar(255)"`
	StepNumber      int       `json:"step_number"      gorm:"not null;uniqueIndex:ux_field_step_order,priority:2"`
	Order           int       `json:"order"            gorm:"column:field_order;not null;uniqueIndex:ux_field_step_order,priority:3"`
	IsRequired      bool      `json:"is_required"      gorm:"not null;default:false"`
	ValidationRules string    `json:"validation_rules" gorm:"type:text"`
	Options         string    `json:"options"          gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the database table name for FormField.
func (FormField) TableName() string { return "form_fields" }

// OptionList splits the comma-separated Options string into trimmed entries.
// It returns nil for empty input; blank entries are dropped.
func (f FormField) OptionList() []string {
	if strings.TrimSpace(f.Options) == "" {
		return nil
	}
	parts := strings.Split(f.Options, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Document is the persisted result of filling a template. It is created in
// draft status when a form session starts, carries the accumulated answers as
// serialized JSON, and flips to generated exactly once when the session
// completes. A cancelled session deletes its draft.
//
// Fields:
//   - ID: UUID primary key.
//   - UserID: owning account (indexed).
//   - TemplateID: source template.
//   - Title: copied from the template at creation time.
//   - Status: draft | generated (enforced by DB constraint).
//   - AnswersJSON: field name → value map, serialized as JSON.
//   - ArtifactPath: optional path of a rendered PDF, set after conversion.
type Document struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string         `json:"user_id"       gorm:"type:char(36);not null;index:idx_user_documents"`
	TemplateID   string         `json:"template_id"   gorm:"type:char(36);not null;index"`
	Title        string         `json:"title"         gorm:"type:varchar(255);not null"`
	Status       string         `json:"status"        gorm:"type:varchar(16);not null;default:'draft';check:status IN ('draft','generated')"`
	AnswersJSON  string         `json:"-"             gorm:"column:answers_json;type:text;not null;default:'{}'"`
	ArtifactPath string         `json:"artifact_path,omitempty" gorm:"type:varchar(512)"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`

	// Template is the source blueprint. Kept as a plain association so
	// listings can preload the title and category without a second query.
	Template Template `json:"-" gorm:"foreignKey:TemplateID;references:ID"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }

// VerificationCode is a one-time 6-digit code delivered by email or SMS
// during registration. Codes are consume-once and expire; an expired or
// already-verified code never validates.
type VerificationCode struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	Identifier string    `gorm:"type:varchar(255);not null;index"`
	Code       string    `gorm:"type:varchar(8);not null"`
	Type       string    `gorm:"type:varchar(8);not null;check:type IN ('email','phone')"`
	Verified   bool      `gorm:"not null;default:false"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	CreatedAt  time.Time
}

// TableName returns the database table name for VerificationCode.
func (VerificationCode) TableName() string { return "verification_codes" }
