package sync

import (
	"context"

	"github.com/synk/client/internal/domain/entities"
	"github.com/synk/client/internal/infrastructure/gateway"
)

// Mutations write to the server first and fold the confirmed entity into
// the local mirror. Updates and deletes apply optimistically; when the
// write then fails, the affected collection is reloaded wholesale so the
// mirror cannot drift from the server.

func (s *Synchronizer) CreateTask(ctx context.Context, form gateway.CreateTaskForm) (*entities.Task, error) {
	task, err := s.api.Tasks().Create(ctx, form)
	if err != nil {
		return nil, err
	}
	s.Tasks.Upsert(*task)
	return task, nil
}

func (s *Synchronizer) UpdateTask(ctx context.Context, id entities.ID, form gateway.UpdateTaskForm) (*entities.Task, error) {
	if existing, ok := s.Tasks.Get(id); ok {
		s.Tasks.Upsert(form.Apply(existing))
	}

	task, err := s.api.Tasks().Update(ctx, id, form)
	if err != nil {
		s.reload(ctx, "tasks", s.loadTasks, err)
		return nil, err
	}
	s.Tasks.Upsert(*task)
	return task, nil
}

func (s *Synchronizer) DeleteTask(ctx context.Context, id entities.ID) error {
	s.Tasks.ApplyDeleted(id)

	if err := s.api.Tasks().Delete(ctx, id); err != nil {
		s.reload(ctx, "tasks", s.loadTasks, err)
		return err
	}
	return nil
}

func (s *Synchronizer) CreateMilestone(ctx context.Context, form gateway.CreateMilestoneForm) (*entities.Milestone, error) {
	milestone, err := s.api.Milestones().Create(ctx, form)
	if err != nil {
		return nil, err
	}
	s.Milestones.Upsert(*milestone)
	return milestone, nil
}

func (s *Synchronizer) UpdateMilestone(ctx context.Context, id entities.ID, form gateway.UpdateMilestoneForm) (*entities.Milestone, error) {
	if existing, ok := s.Milestones.Get(id); ok {
		s.Milestones.Upsert(form.Apply(existing))
	}

	milestone, err := s.api.Milestones().Update(ctx, id, form)
	if err != nil {
		s.reload(ctx, "milestones", s.loadMilestones, err)
		return nil, err
	}
	s.Milestones.Upsert(*milestone)
	return milestone, nil
}

func (s *Synchronizer) DeleteMilestone(ctx context.Context, id entities.ID) error {
	s.Milestones.ApplyDeleted(id)

	if err := s.api.Milestones().Delete(ctx, id); err != nil {
		s.reload(ctx, "milestones", s.loadMilestones, err)
		return err
	}
	return nil
}

func (s *Synchronizer) CreateActivity(ctx context.Context, form gateway.CreateActivityForm) (*entities.Activity, error) {
	activity, err := s.api.Activities().Create(ctx, form)
	if err != nil {
		return nil, err
	}
	s.Activities.Upsert(*activity)
	return activity, nil
}

func (s *Synchronizer) CreateSuggestion(ctx context.Context, form gateway.CreateSuggestionForm) (*entities.Suggestion, error) {
	suggestion, err := s.api.Suggestions().Create(ctx, form)
	if err != nil {
		return nil, err
	}
	s.Suggestions.Upsert(*suggestion)
	return suggestion, nil
}

func (s *Synchronizer) DeleteSuggestion(ctx context.Context, id entities.ID) error {
	s.Suggestions.ApplyDeleted(id)

	if err := s.api.Suggestions().Delete(ctx, id); err != nil {
		s.reload(ctx, "suggestions", s.loadSuggestions, err)
		return err
	}
	return nil
}

func (s *Synchronizer) CreateCollection(ctx context.Context, form gateway.CreateCollectionForm) (*entities.Collection, error) {
	collection, err := s.api.Collections().Create(ctx, form)
	if err != nil {
		return nil, err
	}
	s.Collections.Upsert(*collection)
	return collection, nil
}

func (s *Synchronizer) UpdateCollection(ctx context.Context, id entities.ID, form gateway.UpdateCollectionForm) (*entities.Collection, error) {
	collection, err := s.api.Collections().Update(ctx, id, form)
	if err != nil {
		s.reload(ctx, "collections", s.loadCollections, err)
		return nil, err
	}
	s.Collections.Upsert(*collection)
	return collection, nil
}

func (s *Synchronizer) DeleteCollection(ctx context.Context, id entities.ID) error {
	s.Collections.ApplyDeleted(id)

	if err := s.api.Collections().Delete(ctx, id); err != nil {
		s.reload(ctx, "collections", s.loadCollections, err)
		return err
	}
	return nil
}

func (s *Synchronizer) UpdatePreferences(ctx context.Context, id entities.ID, form gateway.UpdatePreferencesForm) (*entities.Preferences, error) {
	prefs, err := s.api.Preferences().Update(ctx, id, form)
	if err != nil {
		s.reload(ctx, "preferences", s.loadPreferences, err)
		return nil, err
	}
	s.mu.Lock()
	s.preferences = prefs
	s.mu.Unlock()
	return prefs, nil
}

func (s *Synchronizer) CreateMemory(ctx context.Context, form gateway.CreateMemoryForm) (*entities.Memory, error) {
	memory, err := s.api.Memories().Create(ctx, form)
	if err != nil {
		return nil, err
	}
	s.Memories.Upsert(*memory)
	return memory, nil
}

func (s *Synchronizer) UpdateMemory(ctx context.Context, id entities.ID, form gateway.UpdateMemoryForm) (*entities.Memory, error) {
	if existing, ok := s.Memories.Get(id); ok {
		s.Memories.Upsert(form.Apply(existing))
	}

	memory, err := s.api.Memories().Update(ctx, id, form)
	if err != nil {
		s.reload(ctx, "memories", s.loadMemories, err)
		return nil, err
	}
	// Route through ApplyUpdated so the viewer's favorite flag survives
	// the server's response
	if !s.Memories.ApplyUpdated(*memory) {
		s.Memories.Upsert(*memory)
	}
	return memory, nil
}

func (s *Synchronizer) DeleteMemory(ctx context.Context, id entities.ID) error {
	s.Memories.ApplyDeleted(id)

	if err := s.api.Memories().Delete(ctx, id); err != nil {
		s.reload(ctx, "memories", s.loadMemories, err)
		return err
	}
	return nil
}

// ToggleMemoryFavorite flips the viewer-local favorite flag. The server
// response is authoritative here, unlike broadcast updates.
func (s *Synchronizer) ToggleMemoryFavorite(ctx context.Context, id entities.ID) (*entities.Memory, error) {
	if existing, ok := s.Memories.Get(id); ok {
		existing.Favorite = !existing.Favorite
		s.Memories.Upsert(existing)
	}

	memory, err := s.api.Memories().ToggleFavorite(ctx, id)
	if err != nil {
		s.reload(ctx, "memories", s.loadMemories, err)
		return nil, err
	}
	s.Memories.Upsert(*memory)
	return memory, nil
}

func (s *Synchronizer) MarkInboxItemRead(ctx context.Context, id entities.ID) (*entities.InboxItem, error) {
	item, err := s.api.Inbox().MarkAsRead(ctx, id)
	if err != nil {
		s.reload(ctx, "inbox", s.loadInbox, err)
		return nil, err
	}
	s.Inbox.Upsert(*item)
	return item, nil
}

func (s *Synchronizer) MarkAllInboxRead(ctx context.Context) error {
	for _, item := range s.Inbox.All() {
		item.Read = true
		s.Inbox.Upsert(item)
	}

	if err := s.api.Inbox().MarkAllAsRead(ctx); err != nil {
		s.reload(ctx, "inbox", s.loadInbox, err)
		return err
	}
	return nil
}

func (s *Synchronizer) ReactToInboxItem(ctx context.Context, id entities.ID) (*entities.InboxItem, error) {
	item, err := s.api.Inbox().React(ctx, id)
	if err != nil {
		s.reload(ctx, "inbox", s.loadInbox, err)
		return nil, err
	}
	s.Inbox.Upsert(*item)
	return item, nil
}

func (s *Synchronizer) ShareInboxResponse(ctx context.Context, id entities.ID, response string) (*entities.InboxItem, error) {
	item, err := s.api.Inbox().ShareResponse(ctx, id, response)
	if err != nil {
		s.reload(ctx, "inbox", s.loadInbox, err)
		return nil, err
	}
	s.Inbox.Upsert(*item)
	return item, nil
}
