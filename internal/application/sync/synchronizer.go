package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/synk/client/internal/domain/entities"
	"github.com/synk/client/internal/infrastructure/config"
	"github.com/synk/client/internal/infrastructure/gateway"
	"github.com/synk/client/internal/infrastructure/logger"
	"github.com/synk/client/internal/infrastructure/metrics"
	"github.com/synk/client/internal/infrastructure/realtime"
)

// Identity is the slice of the session the synchronizer needs: who the
// current user is, and a way to push a refreshed profile back.
type Identity interface {
	CurrentUser(ctx context.Context) (*entities.User, error)
	SetUser(user *entities.User)
}

// Synchronizer keeps a local mirror of the couple's shared state. Bulk
// loads seed the collections, realtime events keep them current, and
// local mutations go to the server first with a reload as the recovery
// path when a write fails.
type Synchronizer struct {
	api      *gateway.Client
	channel  *realtime.Channel
	identity Identity
	cfg      config.SyncConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics

	Tasks       *Collection[entities.Task]
	Milestones  *Collection[entities.Milestone]
	Activities  *Collection[entities.Activity]
	Suggestions *Collection[entities.Suggestion]
	Collections *Collection[entities.Collection]
	Inbox       *Collection[entities.InboxItem]
	Memories    *Collection[entities.Memory]

	mu          stdsync.RWMutex
	preferences *entities.Preferences
	couple      *entities.Couple

	handlers map[realtime.Kind]realtime.Handler

	stopOnce stdsync.Once
	stop     chan struct{}
	wg       stdsync.WaitGroup
}

// New creates a synchronizer over the given gateway and realtime channel.
// The metrics set may be nil.
func New(api *gateway.Client, channel *realtime.Channel, identity Identity, cfg config.SyncConfig, appLogger *logger.Logger, m *metrics.Metrics) *Synchronizer {
	return &Synchronizer{
		api:      api,
		channel:  channel,
		identity: identity,
		cfg:      cfg,
		logger:   appLogger.WithComponent("sync"),
		metrics:  m,

		Tasks:       NewCollection[entities.Task](),
		Milestones:  NewCollection[entities.Milestone](),
		Activities:  NewCollection[entities.Activity](),
		Suggestions: NewCollection[entities.Suggestion](),
		Collections: NewCollection[entities.Collection](),
		Inbox:       NewCollection[entities.InboxItem](),
		// The favorite flag is per-viewer state the broadcast payload
		// does not carry for us, so remote updates must not clobber it
		Memories: NewMergedCollection(func(existing, incoming entities.Memory) entities.Memory {
			incoming.Favorite = existing.Favorite
			return incoming
		}),

		handlers: map[realtime.Kind]realtime.Handler{},
		stop:     make(chan struct{}),
	}
}

// LoadAll seeds every collection from the server. Each type loads
// independently: one failing endpoint does not keep the others from
// populating. The returned error joins whatever failed.
func (s *Synchronizer) LoadAll(ctx context.Context) error {
	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{"tasks", s.loadTasks},
		{"milestones", s.loadMilestones},
		{"activities", s.loadActivities},
		{"suggestions", s.loadSuggestions},
		{"collections", s.loadCollections},
		{"inbox", s.loadInbox},
		{"memories", s.loadMemories},
		{"preferences", s.loadPreferences},
		{"couple", s.loadCouple},
	}

	var errs []error
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			s.logger.LogSyncReload(l.name, "load", err)
			errs = append(errs, fmt.Errorf("load %s: %w", l.name, err))
			continue
		}
		s.observeReload(l.name, "load")
	}
	return errors.Join(errs...)
}

func (s *Synchronizer) loadTasks(ctx context.Context) error {
	tasks, err := s.api.Tasks().List(ctx)
	if err != nil {
		return err
	}
	s.Tasks.Replace(tasks)
	return nil
}

func (s *Synchronizer) loadMilestones(ctx context.Context) error {
	milestones, err := s.api.Milestones().List(ctx)
	if err != nil {
		return err
	}
	s.Milestones.Replace(milestones)
	return nil
}

func (s *Synchronizer) loadActivities(ctx context.Context) error {
	activities, err := s.api.Activities().List(ctx, s.cfg.ActivityLimit)
	if err != nil {
		return err
	}
	s.Activities.Replace(activities)
	return nil
}

func (s *Synchronizer) loadSuggestions(ctx context.Context) error {
	suggestions, err := s.api.Suggestions().List(ctx)
	if err != nil {
		return err
	}
	s.Suggestions.Replace(suggestions)
	return nil
}

func (s *Synchronizer) loadCollections(ctx context.Context) error {
	collections, err := s.api.Collections().List(ctx)
	if err != nil {
		return err
	}
	s.Collections.Replace(collections)
	return nil
}

func (s *Synchronizer) loadInbox(ctx context.Context) error {
	items, err := s.api.Inbox().List(ctx)
	if err != nil {
		return err
	}
	s.Inbox.Replace(items)
	return nil
}

func (s *Synchronizer) loadMemories(ctx context.Context) error {
	memories, err := s.api.Memories().List(ctx)
	if err != nil {
		return err
	}
	s.Memories.Replace(memories)
	return nil
}

func (s *Synchronizer) loadPreferences(ctx context.Context) error {
	prefs, err := s.api.Preferences().Get(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.preferences = prefs
	s.mu.Unlock()
	return nil
}

func (s *Synchronizer) loadCouple(ctx context.Context) error {
	couple, err := s.api.Couple().Get(ctx)
	if err != nil {
		if errors.Is(err, entities.ErrNotCoupled) {
			s.mu.Lock()
			s.couple = nil
			s.mu.Unlock()
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.couple = couple
	s.mu.Unlock()
	return nil
}

// Preferences returns the last loaded preferences, or nil
func (s *Synchronizer) Preferences() *entities.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferences
}

// Couple returns the current couple, or nil when not coupled
func (s *Synchronizer) Couple() *entities.Couple {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.couple
}

// Bind subscribes the synchronizer to every realtime event it mirrors.
// Calling Bind twice keeps a single registration per event.
func (s *Synchronizer) Bind() {
	s.bind(realtime.TaskCreated, applyCreated(s, s.Tasks, "task"))
	s.bind(realtime.TaskUpdated, applyUpdated(s, s.Tasks, "task"))
	s.bind(realtime.TaskDeleted, applyDeleted(s, s.Tasks, "task"))

	s.bind(realtime.MilestoneCreated, applyCreated(s, s.Milestones, "milestone"))
	s.bind(realtime.MilestoneUpdated, applyUpdated(s, s.Milestones, "milestone"))
	s.bind(realtime.MilestoneDeleted, applyDeleted(s, s.Milestones, "milestone"))

	s.bind(realtime.CollectionCreated, applyCreated(s, s.Collections, "collection"))
	s.bind(realtime.CollectionUpdated, applyUpdated(s, s.Collections, "collection"))
	s.bind(realtime.CollectionDeleted, applyDeleted(s, s.Collections, "collection"))

	s.bind(realtime.InboxCreated, applyCreated(s, s.Inbox, "inbox_item"))
	s.bind(realtime.InboxUpdated, applyUpdated(s, s.Inbox, "inbox_item"))
	s.bind(realtime.InboxDeleted, applyDeleted(s, s.Inbox, "inbox_item"))

	s.bind(realtime.MemoryCreated, applyCreated(s, s.Memories, "memory"))
	s.bind(realtime.MemoryUpdated, applyUpdated(s, s.Memories, "memory"))
	s.bind(realtime.MemoryDeleted, applyDeleted(s, s.Memories, "memory"))

	s.bind(realtime.ActivityCreated, applyCreated(s, s.Activities, "activity"))
	s.bind(realtime.SuggestionCreated, applyCreated(s, s.Suggestions, "suggestion"))
	s.bind(realtime.SuggestionDeleted, applyDeleted(s, s.Suggestions, "suggestion"))

	s.bind(realtime.CoupleCoupled, s.onCoupled)
	s.bind(realtime.CoupleUncoupled, s.onUncoupled)
	s.bind(realtime.PreferencesUpdated, s.onPreferencesUpdated)
}

// Unbind removes every subscription Bind registered. The channel itself
// stays open.
func (s *Synchronizer) Unbind() {
	for kind, h := range s.handlers {
		s.channel.Off(kind, h)
		delete(s.handlers, kind)
	}
}

func (s *Synchronizer) bind(kind realtime.Kind, h realtime.Handler) {
	if _, bound := s.handlers[kind]; bound {
		return
	}
	s.handlers[kind] = h
	s.channel.On(kind, h)
}

// applyCreated builds a handler that inserts a broadcast entity, dropping
// the payload when the id is already held
func applyCreated[T Entity](s *Synchronizer, c *Collection[T], name string) realtime.Handler {
	return func(data json.RawMessage) {
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			s.logger.Warnw("Dropping malformed created event", "entity", name, "error", err)
			return
		}
		c.ApplyCreated(item)
	}
}

func applyUpdated[T Entity](s *Synchronizer, c *Collection[T], name string) realtime.Handler {
	return func(data json.RawMessage) {
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			s.logger.Warnw("Dropping malformed updated event", "entity", name, "error", err)
			return
		}
		c.ApplyUpdated(item)
	}
}

func applyDeleted[T Entity](s *Synchronizer, c *Collection[T], name string) realtime.Handler {
	return func(data json.RawMessage) {
		var payload struct {
			ID entities.ID `json:"id"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			s.logger.Warnw("Dropping malformed deleted event", "entity", name, "error", err)
			return
		}
		c.ApplyDeleted(payload.ID)
	}
}

func (s *Synchronizer) onCoupled(data json.RawMessage) {
	var couple entities.Couple
	if err := json.Unmarshal(data, &couple); err == nil && couple.ID != "" {
		s.mu.Lock()
		s.couple = &couple
		s.mu.Unlock()
	}

	// Coupling changes what every endpoint returns; start over
	s.logger.Info("Coupled, reloading shared state")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.LoadAll(ctx); err != nil {
			s.logger.Warnw("Reload after coupling failed", "error", err)
		}
	}()
}

func (s *Synchronizer) onUncoupled(json.RawMessage) {
	s.mu.Lock()
	s.couple = nil
	s.mu.Unlock()

	s.logger.Info("Uncoupled, reloading shared state")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.LoadAll(ctx); err != nil {
			s.logger.Warnw("Reload after uncoupling failed", "error", err)
		}
	}()
}

func (s *Synchronizer) onPreferencesUpdated(data json.RawMessage) {
	var prefs entities.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		s.logger.Warnw("Dropping malformed preferences event", "error", err)
		return
	}
	s.mu.Lock()
	s.preferences = &prefs
	s.mu.Unlock()
}

// Start launches the background pollers. Activities refresh on a short
// interval since they are append-heavy; the profile refresh keeps the
// cached user in step with server-side changes.
func (s *Synchronizer) Start(ctx context.Context) {
	s.wg.Add(2)
	go s.pollLoop(ctx, s.cfg.ActivityPollInterval, "activities", s.loadActivities)
	go s.pollLoop(ctx, s.cfg.ProfilePollInterval, "profile", s.refreshProfile)
}

func (s *Synchronizer) pollLoop(ctx context.Context, interval time.Duration, name string, fn func(context.Context) error) {
	defer s.wg.Done()

	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			tctx, cancel := context.WithTimeout(ctx, interval)
			err := fn(tctx)
			cancel()
			if err != nil {
				s.logger.Warnw("Poll failed", "poller", name, "error", err)
				continue
			}
			s.observeReload(name, "poll")
		}
	}
}

func (s *Synchronizer) refreshProfile(ctx context.Context) error {
	current, err := s.identity.CurrentUser(ctx)
	if err != nil || current == nil {
		return err
	}

	users, err := s.api.Users().List(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == current.ID {
			s.identity.SetUser(&users[i])
			return nil
		}
	}
	return nil
}

// Close stops the pollers, unbinds the event handlers, and disconnects
// the realtime channel
func (s *Synchronizer) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	s.Unbind()
	s.channel.Disconnect()
}

// reload refreshes a single collection after a failed write. The local
// mirror may have diverged from the server, and a fresh bulk load is the
// only safe way back.
func (s *Synchronizer) reload(ctx context.Context, name string, load func(context.Context) error, cause error) {
	s.logger.LogSyncReload(name, "write_failed", cause)
	s.observeReload(name, "write_failed")
	if err := load(ctx); err != nil {
		s.logger.Warnw("Recovery reload failed", "entity", name, "error", err)
	}
}

func (s *Synchronizer) observeReload(name, reason string) {
	if s.metrics != nil {
		s.metrics.SyncReloadsTotal.WithLabelValues(name, reason).Inc()
	}
}
