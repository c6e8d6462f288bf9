package gateway

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/synk/client/internal/domain/entities"
)

var validate = validator.New()

// Form is a mutation payload validated before it reaches the wire
type Form interface {
	Validate() error
}

// CreateTaskForm carries a new task
type CreateTaskForm struct {
	Title        string              `json:"title" validate:"required,max=200"`
	Category     string              `json:"category" validate:"required,max=100"`
	Priority     entities.Priority   `json:"priority" validate:"required,oneof=low medium high"`
	Status       entities.TaskStatus `json:"status" validate:"required,oneof=Backlog Planning Upcoming Completed"`
	Liked        bool                `json:"liked"`
	Fired        bool                `json:"fired"`
	Progress     int                 `json:"progress" validate:"min=0,max=100"`
	AlexProgress int                 `json:"alex_progress" validate:"min=0,max=100"`
	SamProgress  int                 `json:"sam_progress" validate:"min=0,max=100"`
	Description  string              `json:"description,omitempty"`
	Date         string              `json:"date,omitempty"`
	Location     string              `json:"location,omitempty" validate:"max=200"`
	Avatars      []string            `json:"avatars"`
}

func (f CreateTaskForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// UpdateTaskForm carries a partial task edit; nil fields are left untouched
type UpdateTaskForm struct {
	Title        *string              `json:"title,omitempty" validate:"omitempty,max=200"`
	Category     *string              `json:"category,omitempty" validate:"omitempty,max=100"`
	Priority     *entities.Priority   `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Status       *entities.TaskStatus `json:"status,omitempty" validate:"omitempty,oneof=Backlog Planning Upcoming Completed"`
	Liked        *bool                `json:"liked,omitempty"`
	Fired        *bool                `json:"fired,omitempty"`
	Progress     *int                 `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	AlexProgress *int                 `json:"alex_progress,omitempty" validate:"omitempty,min=0,max=100"`
	SamProgress  *int                 `json:"sam_progress,omitempty" validate:"omitempty,min=0,max=100"`
	Description  *string              `json:"description,omitempty"`
	Date         *string              `json:"date,omitempty"`
	Location     *string              `json:"location,omitempty" validate:"omitempty,max=200"`
	Avatars      []string             `json:"avatars,omitempty"`
}

func (f UpdateTaskForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// Apply merges the edit into a task, for the optimistic local update
func (f UpdateTaskForm) Apply(task entities.Task) entities.Task {
	if f.Title != nil {
		task.Title = *f.Title
	}
	if f.Category != nil {
		task.Category = *f.Category
	}
	if f.Priority != nil {
		task.Priority = *f.Priority
	}
	if f.Status != nil {
		task.Status = *f.Status
	}
	if f.Liked != nil {
		task.Liked = *f.Liked
	}
	if f.Fired != nil {
		task.Fired = *f.Fired
	}
	if f.Progress != nil {
		task.Progress = *f.Progress
	}
	if f.AlexProgress != nil {
		task.AlexProgress = *f.AlexProgress
	}
	if f.SamProgress != nil {
		task.SamProgress = *f.SamProgress
	}
	if f.Description != nil {
		task.Description = *f.Description
	}
	if f.Date != nil {
		task.Date = *f.Date
	}
	if f.Location != nil {
		task.Location = *f.Location
	}
	if f.Avatars != nil {
		task.Avatars = f.Avatars
	}
	return task
}

// CreateMilestoneForm carries a new milestone
type CreateMilestoneForm struct {
	Name           string                   `json:"name" validate:"required,max=200"`
	Date           string                   `json:"date" validate:"required"`
	Status         entities.MilestoneStatus `json:"status" validate:"required,oneof=Upcoming Completed Dreaming"`
	SamExcitement  int                      `json:"sam_excitement" validate:"min=0,max=100"`
	AlexExcitement int                      `json:"alex_excitement" validate:"min=0,max=100"`
	Icon           string                   `json:"icon" validate:"required,max=50"`
}

func (f CreateMilestoneForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// UpdateMilestoneForm carries a partial milestone edit
type UpdateMilestoneForm struct {
	Name           *string                   `json:"name,omitempty" validate:"omitempty,max=200"`
	Date           *string                   `json:"date,omitempty"`
	Status         *entities.MilestoneStatus `json:"status,omitempty" validate:"omitempty,oneof=Upcoming Completed Dreaming"`
	SamExcitement  *int                      `json:"sam_excitement,omitempty" validate:"omitempty,min=0,max=100"`
	AlexExcitement *int                      `json:"alex_excitement,omitempty" validate:"omitempty,min=0,max=100"`
	Icon           *string                   `json:"icon,omitempty" validate:"omitempty,max=50"`
}

func (f UpdateMilestoneForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// Apply merges the edit into a milestone
func (f UpdateMilestoneForm) Apply(m entities.Milestone) entities.Milestone {
	if f.Name != nil {
		m.Name = *f.Name
	}
	if f.Date != nil {
		m.Date = *f.Date
	}
	if f.Status != nil {
		m.Status = *f.Status
	}
	if f.SamExcitement != nil {
		m.SamExcitement = *f.SamExcitement
	}
	if f.AlexExcitement != nil {
		m.AlexExcitement = *f.AlexExcitement
	}
	if f.Icon != nil {
		m.Icon = *f.Icon
	}
	return m
}

// CreateActivityForm carries a new activity feed entry
type CreateActivityForm struct {
	User      string `json:"user" validate:"required,max=100"`
	Action    string `json:"action" validate:"required,max=100"`
	Item      string `json:"item" validate:"required,max=200"`
	Timestamp string `json:"timestamp" validate:"required,max=50"`
	Avatar    string `json:"avatar"`
}

func (f CreateActivityForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// CreateSuggestionForm carries a new date idea
type CreateSuggestionForm struct {
	Title       string   `json:"title" validate:"required,max=200"`
	SuggestedBy string   `json:"suggested_by" validate:"required,max=100"`
	Date        string   `json:"date" validate:"required,max=50"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location" validate:"required,max=200"`
	Category    string   `json:"category" validate:"required,max=100"`
	Excitement  int      `json:"excitement" validate:"min=0,max=100"`
	Tags        []string `json:"tags"`
}

func (f CreateSuggestionForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// CreateCollectionForm carries a new collection
type CreateCollectionForm struct {
	Name  string `json:"name" validate:"required,max=100"`
	Icon  string `json:"icon" validate:"required,max=50"`
	Color string `json:"color,omitempty" validate:"omitempty,max=20"`
}

func (f CreateCollectionForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// UpdateCollectionForm carries a partial collection edit
type UpdateCollectionForm struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Icon  *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	Color *string `json:"color,omitempty" validate:"omitempty,max=20"`
}

func (f UpdateCollectionForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// UpdatePreferencesForm carries a preferences edit
type UpdatePreferencesForm struct {
	Anniversary   *string `json:"anniversary,omitempty"`
	IsPrivate     *bool   `json:"is_private,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
	Vibe          *string `json:"vibe,omitempty" validate:"omitempty,max=200"`
}

func (f UpdatePreferencesForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// CreateMemoryForm carries a new memory
type CreateMemoryForm struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description"`
	Date        string      `json:"date" validate:"required"`
	MilestoneID entities.ID `json:"milestone_id,omitempty"`
	Photos      []string    `json:"photos"`
	Tags        []string    `json:"tags"`
}

func (f CreateMemoryForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// UpdateMemoryForm carries a partial memory edit. The favorite flag is not
// part of the form: it is toggled through its own endpoint because it is
// per-viewer state.
type UpdateMemoryForm struct {
	Title       *string      `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string      `json:"description,omitempty"`
	Date        *string      `json:"date,omitempty"`
	MilestoneID *entities.ID `json:"milestone_id,omitempty"`
	Photos      []string     `json:"photos,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

func (f UpdateMemoryForm) Validate() error { return wrapValidation(validate.Struct(f)) }

// Apply merges the edit into a memory, preserving the favorite flag
func (f UpdateMemoryForm) Apply(m entities.Memory) entities.Memory {
	if f.Title != nil {
		m.Title = *f.Title
	}
	if f.Description != nil {
		m.Description = *f.Description
	}
	if f.Date != nil {
		m.Date = *f.Date
	}
	if f.MilestoneID != nil {
		m.MilestoneID = *f.MilestoneID
	}
	if f.Photos != nil {
		m.Photos = f.Photos
	}
	if f.Tags != nil {
		m.Tags = f.Tags
	}
	return m
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("validation failed: %w", err)
}
