package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/synk/client/internal/domain/entities"
)

// TasksAPI covers the task endpoints
type TasksAPI struct{ c *Client }

// Tasks returns the task API
func (c *Client) Tasks() *TasksAPI { return &TasksAPI{c: c} }

func (a *TasksAPI) List(ctx context.Context) ([]entities.Task, error) {
	var tasks []entities.Task
	if err := a.c.Do(ctx, http.MethodGet, "/api/tasks/", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (a *TasksAPI) Create(ctx context.Context, form CreateTaskForm) (*entities.Task, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var task entities.Task
	if err := a.c.Do(ctx, http.MethodPost, "/api/tasks/", form, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (a *TasksAPI) Update(ctx context.Context, id entities.ID, form UpdateTaskForm) (*entities.Task, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var task entities.Task
	if err := a.c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%s/", id), form, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (a *TasksAPI) Delete(ctx context.Context, id entities.ID) error {
	return a.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%s/", id), nil, nil)
}

// MilestonesAPI covers the milestone endpoints
type MilestonesAPI struct{ c *Client }

// Milestones returns the milestone API
func (c *Client) Milestones() *MilestonesAPI { return &MilestonesAPI{c: c} }

func (a *MilestonesAPI) List(ctx context.Context) ([]entities.Milestone, error) {
	var milestones []entities.Milestone
	if err := a.c.Do(ctx, http.MethodGet, "/api/milestones/", nil, &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

func (a *MilestonesAPI) Create(ctx context.Context, form CreateMilestoneForm) (*entities.Milestone, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var milestone entities.Milestone
	if err := a.c.Do(ctx, http.MethodPost, "/api/milestones/", form, &milestone); err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (a *MilestonesAPI) Update(ctx context.Context, id entities.ID, form UpdateMilestoneForm) (*entities.Milestone, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var milestone entities.Milestone
	if err := a.c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/milestones/%s/", id), form, &milestone); err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (a *MilestonesAPI) Delete(ctx context.Context, id entities.ID) error {
	return a.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/milestones/%s/", id), nil, nil)
}

// ActivitiesAPI covers the activity feed endpoints
type ActivitiesAPI struct{ c *Client }

// Activities returns the activity API
func (c *Client) Activities() *ActivitiesAPI { return &ActivitiesAPI{c: c} }

func (a *ActivitiesAPI) List(ctx context.Context, limit int) ([]entities.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	var activities []entities.Activity
	if err := a.c.Do(ctx, http.MethodGet, fmt.Sprintf("/api/activities/?limit=%d", limit), nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (a *ActivitiesAPI) Create(ctx context.Context, form CreateActivityForm) (*entities.Activity, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var activity entities.Activity
	if err := a.c.Do(ctx, http.MethodPost, "/api/activities/", form, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// SuggestionsAPI covers the suggestion endpoints
type SuggestionsAPI struct{ c *Client }

// Suggestions returns the suggestion API
func (c *Client) Suggestions() *SuggestionsAPI { return &SuggestionsAPI{c: c} }

func (a *SuggestionsAPI) List(ctx context.Context) ([]entities.Suggestion, error) {
	var suggestions []entities.Suggestion
	if err := a.c.Do(ctx, http.MethodGet, "/api/suggestions/", nil, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (a *SuggestionsAPI) Create(ctx context.Context, form CreateSuggestionForm) (*entities.Suggestion, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var suggestion entities.Suggestion
	if err := a.c.Do(ctx, http.MethodPost, "/api/suggestions/", form, &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (a *SuggestionsAPI) Delete(ctx context.Context, id entities.ID) error {
	return a.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/suggestions/%s/", id), nil, nil)
}

// CollectionsAPI covers the collection endpoints
type CollectionsAPI struct{ c *Client }

// Collections returns the collection API
func (c *Client) Collections() *CollectionsAPI { return &CollectionsAPI{c: c} }

func (a *CollectionsAPI) List(ctx context.Context) ([]entities.Collection, error) {
	var collections []entities.Collection
	if err := a.c.Do(ctx, http.MethodGet, "/api/collections/", nil, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}

func (a *CollectionsAPI) Create(ctx context.Context, form CreateCollectionForm) (*entities.Collection, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var collection entities.Collection
	if err := a.c.Do(ctx, http.MethodPost, "/api/collections/", form, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

func (a *CollectionsAPI) Update(ctx context.Context, id entities.ID, form UpdateCollectionForm) (*entities.Collection, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var collection entities.Collection
	if err := a.c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/collections/%s/", id), form, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

func (a *CollectionsAPI) Delete(ctx context.Context, id entities.ID) error {
	return a.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/collections/%s/", id), nil, nil)
}

// PreferencesAPI covers the preferences endpoints
type PreferencesAPI struct{ c *Client }

// Preferences returns the preferences API
func (c *Client) Preferences() *PreferencesAPI { return &PreferencesAPI{c: c} }

// Get fetches the couple's preferences. The endpoint is a one-element list;
// no preferences yet yields nil without error.
func (a *PreferencesAPI) Get(ctx context.Context) (*entities.Preferences, error) {
	var raw json.RawMessage
	if err := a.c.Do(ctx, http.MethodGet, "/api/preferences/", nil, &raw); err != nil {
		return nil, err
	}

	var list []entities.Preferences
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}

	var prefs entities.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return &prefs, nil
}

func (a *PreferencesAPI) Update(ctx context.Context, id entities.ID, form UpdatePreferencesForm) (*entities.Preferences, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var prefs entities.Preferences
	if err := a.c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/preferences/%s/", id), form, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// CoupleAPI covers the couple endpoints
type CoupleAPI struct{ c *Client }

// Couple returns the couple API
func (c *Client) Couple() *CoupleAPI { return &CoupleAPI{c: c} }

func (a *CoupleAPI) Get(ctx context.Context) (*entities.Couple, error) {
	var couple entities.Couple
	if err := a.c.Do(ctx, http.MethodGet, "/api/couple/", nil, &couple); err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.IsNotFound() {
			return nil, entities.ErrNotCoupled
		}
		return nil, err
	}
	return &couple, nil
}

func (a *CoupleAPI) Uncouple(ctx context.Context) error {
	return a.c.Do(ctx, http.MethodDelete, "/api/couple/uncouple/", nil, nil)
}

// CouplingCodesAPI covers the pairing-code endpoints
type CouplingCodesAPI struct{ c *Client }

// CouplingCodes returns the coupling-code API
func (c *Client) CouplingCodes() *CouplingCodesAPI { return &CouplingCodesAPI{c: c} }

func (a *CouplingCodesAPI) Create(ctx context.Context) (*entities.CouplingCode, error) {
	var code entities.CouplingCode
	if err := a.c.Do(ctx, http.MethodPost, "/api/coupling-codes/", nil, &code); err != nil {
		return nil, err
	}
	return &code, nil
}

func (a *CouplingCodesAPI) List(ctx context.Context) ([]entities.CouplingCode, error) {
	var codes []entities.CouplingCode
	if err := a.c.Do(ctx, http.MethodGet, "/api/coupling-codes/", nil, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

func (a *CouplingCodesAPI) Use(ctx context.Context, code string) error {
	return a.c.Do(ctx, http.MethodPost, "/api/coupling-codes/use/", map[string]string{"code": code}, nil)
}

// AccountAPI covers account-level operations
type AccountAPI struct{ c *Client }

// Account returns the account API
func (c *Client) Account() *AccountAPI { return &AccountAPI{c: c} }

func (a *AccountAPI) Delete(ctx context.Context, password string) error {
	return a.c.Do(ctx, http.MethodPost, "/api/users/delete_account/", map[string]string{"password": password}, nil)
}

// UsersAPI covers the user listing endpoint
type UsersAPI struct{ c *Client }

// Users returns the users API
func (c *Client) Users() *UsersAPI { return &UsersAPI{c: c} }

func (a *UsersAPI) List(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	if err := a.c.Do(ctx, http.MethodGet, "/api/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DailyConnectionsAPI covers the daily-connection prompt endpoints
type DailyConnectionsAPI struct{ c *Client }

// DailyConnections returns the daily-connection API
func (c *Client) DailyConnections() *DailyConnectionsAPI { return &DailyConnectionsAPI{c: c} }

func (a *DailyConnectionsAPI) List(ctx context.Context) ([]entities.DailyConnection, error) {
	var connections []entities.DailyConnection
	if err := a.c.Do(ctx, http.MethodGet, "/api/daily-connections/", nil, &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

func (a *DailyConnectionsAPI) Today(ctx context.Context) (*entities.DailyConnection, error) {
	var connection entities.DailyConnection
	if err := a.c.Do(ctx, http.MethodGet, "/api/daily-connections/today/", nil, &connection); err != nil {
		return nil, err
	}
	return &connection, nil
}

func (a *DailyConnectionsAPI) SubmitAnswer(ctx context.Context, id entities.ID, answer string) (*entities.DailyConnectionAnswer, error) {
	body := map[string]string{"answer_text": answer}
	var out entities.DailyConnectionAnswer
	if err := a.c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/daily-connections/%s/answer/", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InboxAPI covers the inbox endpoints
type InboxAPI struct{ c *Client }

// Inbox returns the inbox API
func (c *Client) Inbox() *InboxAPI { return &InboxAPI{c: c} }

func (a *InboxAPI) List(ctx context.Context) ([]entities.InboxItem, error) {
	var items []entities.InboxItem
	if err := a.c.Do(ctx, http.MethodGet, "/api/inbox/", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *InboxAPI) Unread(ctx context.Context) ([]entities.InboxItem, error) {
	var items []entities.InboxItem
	if err := a.c.Do(ctx, http.MethodGet, "/api/inbox/unread/", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *InboxAPI) MarkAsRead(ctx context.Context, id entities.ID) (*entities.InboxItem, error) {
	var item entities.InboxItem
	if err := a.c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/inbox/%s/mark_as_read/", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *InboxAPI) MarkAllAsRead(ctx context.Context) error {
	return a.c.Do(ctx, http.MethodPost, "/api/inbox/mark_all_as_read/", nil, nil)
}

func (a *InboxAPI) React(ctx context.Context, id entities.ID) (*entities.InboxItem, error) {
	var item entities.InboxItem
	if err := a.c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/inbox/%s/react/", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *InboxAPI) ShareResponse(ctx context.Context, id entities.ID, response string) (*entities.InboxItem, error) {
	body := map[string]string{"response": response}
	var item entities.InboxItem
	if err := a.c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/inbox/%s/share_response/", id), body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// MemoriesAPI covers the memory endpoints
type MemoriesAPI struct{ c *Client }

// Memories returns the memory API
func (c *Client) Memories() *MemoriesAPI { return &MemoriesAPI{c: c} }

func (a *MemoriesAPI) List(ctx context.Context) ([]entities.Memory, error) {
	var memories []entities.Memory
	if err := a.c.Do(ctx, http.MethodGet, "/api/memories/", nil, &memories); err != nil {
		return nil, err
	}
	return memories, nil
}

func (a *MemoriesAPI) Create(ctx context.Context, form CreateMemoryForm) (*entities.Memory, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var memory entities.Memory
	if err := a.c.Do(ctx, http.MethodPost, "/api/memories/", form, &memory); err != nil {
		return nil, err
	}
	return &memory, nil
}

func (a *MemoriesAPI) Update(ctx context.Context, id entities.ID, form UpdateMemoryForm) (*entities.Memory, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var memory entities.Memory
	if err := a.c.Do(ctx, http.MethodPut, fmt.Sprintf("/api/memories/%s/", id), form, &memory); err != nil {
		return nil, err
	}
	return &memory, nil
}

func (a *MemoriesAPI) Delete(ctx context.Context, id entities.ID) error {
	return a.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/memories/%s/", id), nil, nil)
}

func (a *MemoriesAPI) ToggleFavorite(ctx context.Context, id entities.ID) (*entities.Memory, error) {
	var memory entities.Memory
	if err := a.c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/memories/%s/toggle_favorite/", id), nil, &memory); err != nil {
		return nil, err
	}
	return &memory, nil
}
