package gateway

import (
	"testing"

	"github.com/synk/client/internal/domain/entities"
)

func TestUpdateTaskFormApply(t *testing.T) {
	task := entities.Task{
		ID:       "1",
		Title:    "Old title",
		Category: "Chores",
		Status:   entities.TaskStatusPlanning,
		Priority: entities.PriorityLow,
		Progress: 20,
	}

	title := "New title"
	status := entities.TaskStatusCompleted
	merged := UpdateTaskForm{Title: &title, Status: &status}.Apply(task)

	if merged.Title != "New title" || merged.Status != entities.TaskStatusCompleted {
		t.Errorf("Apply() = %+v, want the edit applied", merged)
	}
	// Untouched fields survive
	if merged.Category != "Chores" || merged.Priority != entities.PriorityLow || merged.Progress != 20 {
		t.Errorf("Apply() = %+v, want untouched fields kept", merged)
	}
	if merged.ID != "1" {
		t.Errorf("Apply() changed the id to %q", merged.ID)
	}
}

func TestUpdateMemoryFormApplyKeepsFavorite(t *testing.T) {
	memory := entities.Memory{ID: "m1", Title: "Beach", Favorite: true}

	title := "Beach day"
	merged := UpdateMemoryForm{Title: &title}.Apply(memory)

	if merged.Title != "Beach day" {
		t.Errorf("Title = %q, want the edit applied", merged.Title)
	}
	if !merged.Favorite {
		t.Error("Favorite flag lost through Apply")
	}
}

func TestCreateTaskFormValidation(t *testing.T) {
	valid := CreateTaskForm{
		Title:    "Plan picnic",
		Category: "Outdoors",
		Priority: entities.PriorityHigh,
		Status:   entities.TaskStatusPlanning,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	tests := []struct {
		name string
		form CreateTaskForm
	}{
		{"missing title", CreateTaskForm{Category: "Outdoors", Priority: entities.PriorityHigh, Status: entities.TaskStatusPlanning}},
		{"bad priority", CreateTaskForm{Title: "T", Category: "C", Priority: "urgent", Status: entities.TaskStatusPlanning}},
		{"bad status", CreateTaskForm{Title: "T", Category: "C", Priority: entities.PriorityLow, Status: "Archived"}},
		{"progress out of range", CreateTaskForm{Title: "T", Category: "C", Priority: entities.PriorityLow, Status: entities.TaskStatusBacklog, Progress: 130}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.form.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}

func TestUpdateFormValidationSkipsNilFields(t *testing.T) {
	// A partial edit with no fields set is valid
	if err := (UpdateTaskForm{}).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for an empty edit", err)
	}

	bad := entities.Priority("urgent")
	if err := (UpdateTaskForm{Priority: &bad}).Validate(); err == nil {
		t.Error("Validate() expected error for a bad priority")
	}
}
