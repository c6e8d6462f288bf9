package entities

import (
	"encoding/json"
	"errors"
	"strings"
)

// Common errors
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrNotFound         = errors.New("not found")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrNotCoupled       = errors.New("account is not coupled")
	ErrInvalidLogin     = errors.New("identifier must be a non-empty string")
)

// ID is a backend-assigned identifier normalized to a string. The backend
// serializes ids as integers while realtime frames may echo them back as
// strings; both decode to the same ID value.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Enums and types
type TaskStatus string

const (
	TaskStatusBacklog   TaskStatus = "Backlog"
	TaskStatusPlanning  TaskStatus = "Planning"
	TaskStatusUpcoming  TaskStatus = "Upcoming"
	TaskStatusCompleted TaskStatus = "Completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type MilestoneStatus string

const (
	MilestoneStatusUpcoming  MilestoneStatus = "Upcoming"
	MilestoneStatusCompleted MilestoneStatus = "Completed"
	MilestoneStatusDreaming  MilestoneStatus = "Dreaming"
)

type InboxItemType string

const (
	InboxItemTypeSuggestion      InboxItemType = "suggestion"
	InboxItemTypeDailyConnection InboxItemType = "daily_connection"
	InboxItemTypeNote            InboxItemType = "note"
)

// User represents the authenticated account holder or their partner
type User struct {
	ID        ID     `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns the best human-readable name for the user
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Task represents a shared planning task
type Task struct {
	ID           ID         `json:"id"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Priority     Priority   `json:"priority"`
	Status       TaskStatus `json:"status"`
	Liked        bool       `json:"liked"`
	Fired        bool       `json:"fired"`
	Progress     int        `json:"progress"`
	AlexProgress int        `json:"alex_progress"`
	SamProgress  int        `json:"sam_progress"`
	Description  string     `json:"description,omitempty"`
	Date         string     `json:"date,omitempty"`
	Location     string     `json:"location,omitempty"`
	Avatars      []string   `json:"avatars"`
}

func (t Task) EntityID() ID { return t.ID }

// MatchesQuery reports whether the task matches a free-text search query.
// An empty query matches everything.
func (t *Task) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Category), q)
}

// Milestone represents a relationship milestone
type Milestone struct {
	ID             ID              `json:"id"`
	Name           string          `json:"name"`
	Date           string          `json:"date"`
	Status         MilestoneStatus `json:"status"`
	SamExcitement  int             `json:"sam_excitement"`
	AlexExcitement int             `json:"alex_excitement"`
	Icon           string          `json:"icon"`
}

func (m Milestone) EntityID() ID { return m.ID }

// Activity represents a feed entry describing a partner action
type Activity struct {
	ID        ID     `json:"id"`
	User      string `json:"user"`
	Action    string `json:"action"`
	Item      string `json:"item"`
	Timestamp string `json:"timestamp"`
	Avatar    string `json:"avatar"`
}

func (a Activity) EntityID() ID { return a.ID }

// Suggestion represents a date idea waiting in the inbox
type Suggestion struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	SuggestedBy string   `json:"suggested_by"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Category    string   `json:"category"`
	Excitement  int      `json:"excitement"`
	Tags        []string `json:"tags"`
}

func (s Suggestion) EntityID() ID { return s.ID }

// Collection groups tasks by category name. Tasks reference a collection by
// case-insensitive name match, not by foreign key.
type Collection struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color,omitempty"`
}

func (c Collection) EntityID() ID { return c.ID }

// Matches reports whether a task category belongs to this collection
func (c *Collection) Matches(category string) bool {
	return strings.EqualFold(c.Name, category)
}

// Preferences holds the couple's shared preferences
type Preferences struct {
	ID            ID     `json:"id"`
	Anniversary   string `json:"anniversary,omitempty"`
	IsPrivate     bool   `json:"is_private"`
	Notifications bool   `json:"notifications"`
	Vibe          string `json:"vibe"`
}

// DefaultVibe is used when no preferences exist yet
const DefaultVibe = "Feeling adventurous"

// Couple represents the pairing of two accounts into a shared workspace
type Couple struct {
	ID      ID    `json:"id"`
	User1   User  `json:"user1"`
	User2   User  `json:"user2"`
	Partner *User `json:"partner,omitempty"`
}

// CouplingCode is a short-lived invite code for pairing accounts
type CouplingCode struct {
	ID        ID     `json:"id"`
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
}

// DailyConnection is a shared daily prompt for the couple
type DailyConnection struct {
	ID      ID                      `json:"id"`
	Prompt  string                  `json:"prompt"`
	Date    string                  `json:"date"`
	Answers []DailyConnectionAnswer `json:"answers,omitempty"`
}

// DailyConnectionAnswer is a partner's answer to a daily-connection prompt
type DailyConnectionAnswer struct {
	ID           ID     `json:"id"`
	ConnectionID ID     `json:"connection_id"`
	Author       string `json:"author"`
	Text         string `json:"answer_text"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// InboxItem is a notification-style item delivered to one partner
type InboxItem struct {
	ID          ID                     `json:"id"`
	Type        InboxItemType          `json:"type"`
	Content     map[string]any         `json:"content"`
	Read        bool                   `json:"read"`
	Reacted     bool                   `json:"reacted"`
	Responded   bool                   `json:"responded"`
	ReadAt      string                 `json:"read_at,omitempty"`
	ReactedAt   string                 `json:"reacted_at,omitempty"`
	RespondedAt string                 `json:"responded_at,omitempty"`
	Answer      *DailyConnectionAnswer `json:"answer,omitempty"`
	CreatedAt   string                 `json:"created_at"`
}

func (i InboxItem) EntityID() ID { return i.ID }

// Memory is a shared memory entry. Favorite is per-viewer state: the backend
// tracks it per account and a partner's edit must never overwrite it.
type Memory struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	MilestoneID ID       `json:"milestone_id,omitempty"`
	Photos      []string `json:"photos"`
	Tags        []string `json:"tags"`
	Favorite    bool     `json:"favorite"`
}

func (m Memory) EntityID() ID { return m.ID }

// Utility methods
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusBacklog, TaskStatusPlanning, TaskStatusUpcoming, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (ms MilestoneStatus) IsValid() bool {
	switch ms {
	case MilestoneStatusUpcoming, MilestoneStatusCompleted, MilestoneStatusDreaming:
		return true
	default:
		return false
	}
}
