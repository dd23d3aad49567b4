package services

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// Durable session keys in the settings store.
const (
	keySettings    = "settings"
	keyActiveTheme = "activeThemeId"
	keySlideIndex  = "lastSlideIndex"
)

// SessionService owns the live presentation state: the deck, the current
// slide, the timer, settings, and the active theme. All transitions
// broadcast to connected clients and persist their durable parts
// best-effort; a persistence failure never blocks navigation.
type SessionService struct {
	mu sync.RWMutex

	deck     *entities.Deck
	current  int
	blackout bool

	settings         entities.Settings
	settingsRestored bool
	theme            entities.Theme

	timerElapsed time.Duration
	timerRunning bool
	timerStart   time.Time

	clock       ports.Clock
	store       ports.SettingsStore
	broadcaster ports.Broadcaster
	resolver    ports.AssetResolver
}

// NewSessionService creates the session over a deck and a fallback theme,
// restoring persisted settings and slide index from the store. The restored
// index is clamped into the deck's range; a position fragment in the URL
// still wins over it on the client.
func NewSessionService(deck *entities.Deck, theme entities.Theme, store ports.SettingsStore, clock ports.Clock) *SessionService {
	if deck == nil {
		deck = &entities.Deck{}
	}
	if clock == nil {
		clock = ports.RealClock{}
	}
	s := &SessionService{
		deck:     deck,
		settings: entities.DefaultSettings(),
		theme:    theme,
		clock:    clock,
		store:    store,
	}
	s.restore()
	return s
}

// SetBroadcaster wires the client fan-out. Called once at startup, before
// the server accepts connections.
func (s *SessionService) SetBroadcaster(b ports.Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// SetAssetResolver wires in the resolver that tracks the assetsBaseHref
// setting. A base restored from the store is applied immediately so a saved
// value survives a restart; otherwise the resolver keeps its startup base.
func (s *SessionService) SetAssetResolver(r ports.AssetResolver) {
	s.mu.Lock()
	s.resolver = r
	restored := s.settingsRestored
	base := s.settings.AssetsBaseHref
	s.mu.Unlock()
	if r != nil && restored {
		r.SetBase(base)
	}
}

func (s *SessionService) restore() {
	if s.store == nil {
		return
	}
	if raw, err := s.store.Get(keySettings); err == nil {
		var saved entities.Settings
		if json.Unmarshal(raw, &saved) == nil {
			if saved.AssetsBaseHref == "" {
				saved.AssetsBaseHref = entities.DefaultSettings().AssetsBaseHref
			}
			s.settings = saved
			s.settingsRestored = true
		}
	}
	if raw, err := s.store.Get(keySlideIndex); err == nil {
		if idx, err := strconv.Atoi(string(raw)); err == nil {
			s.current = s.deck.Clamp(idx)
		}
	}
}

func (s *SessionService) persist(key string, value []byte) {
	if s.store == nil {
		return
	}
	// Best effort: a full disk must not break navigation.
	_ = s.store.Set(key, value)
}

func (s *SessionService) broadcast(eventType string, data any) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(entities.UpdateEvent{
		Type:      eventType,
		Timestamp: s.clock.Now(),
		Data:      data,
	})
}

// elapsedLocked computes the live elapsed time. Callers hold at least the
// read lock.
func (s *SessionService) elapsedLocked() time.Duration {
	if s.timerRunning {
		return s.timerElapsed + s.clock.Now().Sub(s.timerStart)
	}
	return s.timerElapsed
}

func (s *SessionService) viewLocked() entities.ViewState {
	return entities.DeriveViewState(s.deck, s.current, s.elapsedLocked(), s.timerRunning)
}

// Snapshot returns the full state in one consistent read.
func (s *SessionService) Snapshot() ports.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clients := 0
	if s.broadcaster != nil {
		clients = s.broadcaster.ClientCount()
	}
	return ports.SessionSnapshot{
		Index:    s.current,
		View:     s.viewLocked(),
		Settings: s.settings,
		Theme:    s.theme,
		Blackout: s.blackout,
		Clients:  clients,
	}
}

// Deck returns the loaded deck.
func (s *SessionService) Deck() *entities.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck
}

// ReplaceDeck swaps the deck wholesale and clamps the current index.
func (s *SessionService) ReplaceDeck(deck *entities.Deck) {
	if deck == nil {
		deck = &entities.Deck{}
	}
	s.mu.Lock()
	s.deck = deck
	s.current = deck.Clamp(s.current)
	view := s.viewLocked()
	s.mu.Unlock()

	s.broadcast(entities.EventDeckReplaced, view)
}

// GoTo clamps index into range and moves there. Moving to the slide already
// current (after clamping) is a no-op: nothing persists, nothing
// broadcasts.
func (s *SessionService) GoTo(index int) bool {
	s.mu.Lock()
	if s.deck.Len() == 0 {
		s.mu.Unlock()
		return false
	}
	clamped := s.deck.Clamp(index)
	if clamped == s.current {
		s.mu.Unlock()
		return false
	}
	s.current = clamped
	view := s.viewLocked()
	s.mu.Unlock()

	s.persist(keySlideIndex, []byte(strconv.Itoa(clamped)))
	s.broadcast(entities.EventSlideChanged, view)
	return true
}

// Apply performs a navigation or chrome action.
func (s *SessionService) Apply(action entities.Action) bool {
	switch action {
	case entities.ActionNext:
		return s.GoTo(s.currentIndex() + 1)
	case entities.ActionPrev:
		return s.GoTo(s.currentIndex() - 1)
	case entities.ActionFirst:
		return s.GoTo(0)
	case entities.ActionLast:
		return s.GoTo(s.Deck().Len() - 1)
	case entities.ActionToggleTimer:
		// Visibility and running state move together: showing the timer
		// starts it, hiding it stops it.
		settings := s.Settings()
		settings.TimerVisible = !settings.TimerVisible
		if settings.TimerVisible {
			s.StartTimer()
		} else {
			s.StopTimer()
		}
		return s.UpdateSettings(settings) == nil
	case entities.ActionResetTimer:
		s.ResetTimer()
		return true
	case entities.ActionToggleBlackout:
		s.mu.Lock()
		s.blackout = !s.blackout
		state := s.blackout
		s.mu.Unlock()
		s.broadcast(entities.EventSettingsSaved, map[string]any{"blackout": state})
		return true
	case entities.ActionToggleNotes:
		settings := s.Settings()
		settings.NotesVisible = !settings.NotesVisible
		return s.UpdateSettings(settings) == nil
	case entities.ActionToggleFullscreen, entities.ActionToggleOverview, entities.ActionToggleHelp:
		// Purely visual: each client toggles its own chrome.
		s.broadcast("chrome_action", map[string]any{"action": action.String()})
		return true
	}
	return false
}

// HandleKey maps a forwarded key event to an action and applies it. Unknown
// keys report false.
func (s *SessionService) HandleKey(intent entities.NavIntent) bool {
	action := entities.ActionForKey(intent.Key, intent.Shift)
	if action == entities.ActionNone {
		return false
	}
	return s.Apply(action)
}

func (s *SessionService) currentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// TimerState returns the live elapsed duration and whether the timer runs.
func (s *SessionService) TimerState() (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elapsedLocked(), s.timerRunning
}

// StartTimer starts or resumes the timer. The anchor is set to now minus
// the accumulated elapsed time, so resume continues where stop left off.
func (s *SessionService) StartTimer() {
	s.mu.Lock()
	if !s.timerRunning {
		s.timerRunning = true
		s.timerStart = s.clock.Now()
	}
	view := s.viewLocked()
	s.mu.Unlock()
	s.broadcast(entities.EventTimerChanged, view)
}

// StopTimer freezes the timer, folding the running segment into the
// accumulated elapsed time.
func (s *SessionService) StopTimer() {
	s.mu.Lock()
	if s.timerRunning {
		s.timerElapsed += s.clock.Now().Sub(s.timerStart)
		s.timerRunning = false
	}
	view := s.viewLocked()
	s.mu.Unlock()
	s.broadcast(entities.EventTimerChanged, view)
}

// ResetTimer zeroes the elapsed time, re-anchoring if running.
func (s *SessionService) ResetTimer() {
	s.mu.Lock()
	s.timerElapsed = 0
	s.timerStart = s.clock.Now()
	view := s.viewLocked()
	s.mu.Unlock()
	s.broadcast(entities.EventTimerChanged, view)
}

// Settings returns the current settings.
func (s *SessionService) Settings() entities.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings replaces the settings, persists them, and notifies
// clients.
func (s *SessionService) UpdateSettings(settings entities.Settings) error {
	if settings.AssetsBaseHref == "" {
		settings.AssetsBaseHref = entities.DefaultSettings().AssetsBaseHref
	}
	s.mu.Lock()
	s.settings = settings
	resolver := s.resolver
	s.mu.Unlock()

	if resolver != nil {
		resolver.SetBase(settings.AssetsBaseHref)
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	s.persist(keySettings, raw)
	s.broadcast(entities.EventSettingsSaved, settings)
	return nil
}

// ActiveTheme returns the active theme.
func (s *SessionService) ActiveTheme() entities.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetActiveTheme switches the active theme, persists the id, and pushes the
// derived color payload to every client (and through them to embedded
// documents).
func (s *SessionService) SetActiveTheme(theme entities.Theme) error {
	if err := theme.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	s.persist(keyActiveTheme, []byte(theme.ID))
	s.broadcast(entities.EventThemeChanged, map[string]any{
		"theme":     theme,
		"broadcast": theme.Broadcast(),
	})
	return nil
}

// PersistedThemeID returns the durably stored active theme id, if any.
func (s *SessionService) PersistedThemeID() (string, bool) {
	if s.store == nil {
		return "", false
	}
	raw, err := s.store.Get(keyActiveTheme)
	if err != nil || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}
