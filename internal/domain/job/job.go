package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/jobdex/internal/domain"
)

// Field names shared by stores, filters and the interpreter vocabulary.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldJobCategory  = "job_category"
	FieldBusinessType = "business_type"
	FieldLocation     = "location"
	FieldMinSalary    = "min_salary"
)

// MaxTitleLength is the maximum title length in runes.
const MaxTitleLength = 255

// Attributes are the caller-editable fields of a posting.
// Empty optional strings and a nil MinSalary mean "absent".
type Attributes struct {
	Title        string
	Description  string
	JobCategory  string
	BusinessType string
	Location     string
	MinSalary    *int
}

// Job is the job posting aggregate.
type Job struct {
	id        string
	attrs     Attributes
	embedding []float32
	createdAt time.Time
	updatedAt time.Time
}

// New validates and creates a Job. Strings are trimmed; the embedding is left empty.
func New(id string, a Attributes) (Job, error) {
	a = a.trimmed()
	if a.Title == "" {
		return Job{}, fmt.Errorf("title is required: %w", domain.ErrInvalidJob)
	}
	if len([]rune(a.Title)) > MaxTitleLength {
		return Job{}, fmt.Errorf("title too long (max %d): %w", MaxTitleLength, domain.ErrInvalidJob)
	}
	if a.Description == "" {
		return Job{}, fmt.Errorf("description is required: %w", domain.ErrInvalidJob)
	}
	if a.MinSalary != nil && *a.MinSalary < 0 {
		return Job{}, fmt.Errorf("min_salary must be >= 0: %w", domain.ErrInvalidJob)
	}
	return Job{id: id, attrs: a}, nil
}

// Reconstruct creates a Job without validation (storage hydration).
func Reconstruct(id string, a Attributes, embedding []float32, createdAt, updatedAt time.Time) Job {
	return Job{id: id, attrs: a, embedding: embedding, createdAt: createdAt, updatedAt: updatedAt}
}

// ID returns the posting identifier.
func (j *Job) ID() string { return j.id }

// Attributes returns a copy of the editable fields.
func (j *Job) Attributes() Attributes {
	a := j.attrs
	if a.MinSalary != nil {
		v := *a.MinSalary
		a.MinSalary = &v
	}
	return a
}

// Title returns the job title.
func (j *Job) Title() string { return j.attrs.Title }

// Description returns the job description.
func (j *Job) Description() string { return j.attrs.Description }

// JobCategory returns the category or "" when absent.
func (j *Job) JobCategory() string { return j.attrs.JobCategory }

// BusinessType returns the business type or "" when absent.
func (j *Job) BusinessType() string { return j.attrs.BusinessType }

// Location returns the location or "" when absent.
func (j *Job) Location() string { return j.attrs.Location }

// MinSalary returns the minimum salary and whether it is set.
func (j *Job) MinSalary() (int, bool) {
	if j.attrs.MinSalary == nil {
		return 0, false
	}
	return *j.attrs.MinSalary, true
}

// Text returns the named text attribute ("" when absent or unknown).
func (j *Job) Text(field string) string {
	switch field {
	case FieldTitle:
		return j.attrs.Title
	case FieldDescription:
		return j.attrs.Description
	case FieldJobCategory:
		return j.attrs.JobCategory
	case FieldBusinessType:
		return j.attrs.BusinessType
	case FieldLocation:
		return j.attrs.Location
	}
	return ""
}

// Embedding returns the stored embedding vector.
func (j *Job) Embedding() []float32 { return j.embedding }

// CreatedAt returns the creation time.
func (j *Job) CreatedAt() time.Time { return j.createdAt }

// UpdatedAt returns the last modification time.
func (j *Job) UpdatedAt() time.Time { return j.updatedAt }

// SetID sets the identifier in place.
func (j *Job) SetID(id string) { j.id = id }

// SetEmbedding sets the embedding in place.
func (j *Job) SetEmbedding(v []float32) { j.embedding = v }

// SetTimestamps sets creation and modification times in place.
func (j *Job) SetTimestamps(createdAt, updatedAt time.Time) {
	j.createdAt = createdAt
	j.updatedAt = updatedAt
}

// EmbeddingText renders the text fed to the embedding model.
func (j *Job) EmbeddingText(t Template) string {
	lines := []string{"職種名: " + j.attrs.Title}
	if t != TemplateBasic {
		if j.attrs.JobCategory != "" {
			lines = append(lines, "職種カテゴリ: "+j.attrs.JobCategory)
		}
		if j.attrs.BusinessType != "" {
			lines = append(lines, "事業種別: "+j.attrs.BusinessType)
		}
		if j.attrs.Location != "" {
			lines = append(lines, "勤務地: "+j.attrs.Location)
		}
	}
	lines = append(lines, "仕事内容: "+j.attrs.Description)
	return strings.Join(lines, "\n")
}

// TextChanged reports whether any attribute feeding the embedding template differs from prev.
func (j *Job) TextChanged(prev *Job) bool {
	a, b := j.attrs, prev.attrs
	return a.Title != b.Title ||
		a.Description != b.Description ||
		a.JobCategory != b.JobCategory ||
		a.BusinessType != b.BusinessType ||
		a.Location != b.Location
}

func (a Attributes) trimmed() Attributes {
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	a.JobCategory = strings.TrimSpace(a.JobCategory)
	a.BusinessType = strings.TrimSpace(a.BusinessType)
	a.Location = strings.TrimSpace(a.Location)
	if a.MinSalary != nil {
		v := *a.MinSalary
		a.MinSalary = &v
	}
	return a
}
