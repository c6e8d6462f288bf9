package entities

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{"numeric id", `42`, "42"},
		{"string id", `"42"`, "42"},
		{"uuid string", `"b7a9c6e0-1f2d-4c3b-9e8a-5d4f3c2b1a09"`, "b7a9c6e0-1f2d-4c3b-9e8a-5d4f3c2b1a09"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
			}
			if id != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, id, tt.want)
			}
		})
	}
}

func TestIDUnmarshalRejectsObjects(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"id":1}`), &id); err == nil {
		t.Error("Unmarshal(object) expected error, got nil")
	}
}

func TestTaskUnmarshalWithNumericID(t *testing.T) {
	payload := `{"id": 7, "title": "Plan picnic", "status": "Planning", "priority": "high"}`

	var task Task
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if task.ID != "7" {
		t.Errorf("task.ID = %q, want %q", task.ID, "7")
	}
	if task.Status != TaskStatusPlanning {
		t.Errorf("task.Status = %q, want %q", task.Status, TaskStatusPlanning)
	}
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want string
	}{
		{"first name wins", &User{FirstName: "Sam", Username: "sam22", Email: "sam@x.io"}, "Sam"},
		{"username fallback", &User{Username: "sam22", Email: "sam@x.io"}, "sam22"},
		{"email fallback", &User{Email: "sam@x.io"}, "sam@x.io"},
		{"nil user", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskMatchesQuery(t *testing.T) {
	task := Task{Title: "Sunset Picnic", Category: "Outdoors"}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"picnic", true},
		{"OUTDOORS", true},
		{"museum", false},
	}

	for _, tt := range tests {
		if got := task.MatchesQuery(tt.query); got != tt.want {
			t.Errorf("MatchesQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestCollectionMatches(t *testing.T) {
	c := Collection{Name: "Date Nights"}

	if !c.Matches("date nights") {
		t.Error("Matches() should be case-insensitive")
	}
	if c.Matches("chores") {
		t.Error("Matches() matched an unrelated category")
	}
}

func TestStatusValidation(t *testing.T) {
	if !TaskStatusBacklog.IsValid() {
		t.Error("Backlog should be a valid task status")
	}
	if TaskStatus("Archived").IsValid() {
		t.Error("Archived should not be a valid task status")
	}
	if !PriorityHigh.IsValid() {
		t.Error("high should be a valid priority")
	}
	if Priority("urgent").IsValid() {
		t.Error("urgent should not be a valid priority")
	}
	if !MilestoneStatusDreaming.IsValid() {
		t.Error("Dreaming should be a valid milestone status")
	}
}
