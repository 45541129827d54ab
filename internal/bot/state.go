package bot

import "sync"

// DialogState marks which free-text input a chat is waiting for.
type DialogState int

const (
	StateIdle DialogState = iota
	StateAwaitTeacherName
	StateAwaitRoomNumber
	StateAwaitSourceTitle
	StateAwaitSourceLink
	StateAwaitTrackName
)

// dialog is the per-chat FSM record. Title carries the pending source name
// between the two add-source steps.
type dialog struct {
	state DialogState
	title string
}

// StateStore keeps per-chat dialog state in memory.
type StateStore struct {
	mu      sync.Mutex
	dialogs map[int64]dialog
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{dialogs: make(map[int64]dialog)}
}

// State returns the current dialog state of a chat.
func (s *StateStore) State(chatID int64) DialogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogs[chatID].state
}

// SetState moves a chat to a new dialog state, keeping pending data.
func (s *StateStore) SetState(chatID int64, state DialogState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dialogs[chatID]
	d.state = state
	s.dialogs[chatID] = d
}

// SetTitle stores the pending source title of a chat.
func (s *StateStore) SetTitle(chatID int64, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dialogs[chatID]
	d.title = title
	s.dialogs[chatID] = d
}

// Title returns the pending source title of a chat.
func (s *StateStore) Title(chatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogs[chatID].title
}

// Clear resets a chat to the idle state and drops pending data.
func (s *StateStore) Clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dialogs, chatID)
}

// Prefs is a user's last selected schedule target.
type Prefs struct {
	SourceID string
	StreamID string
	GroupNum int
}

// PrefStore keeps per-user schedule preferences in memory. Entries are added
// when a user requests a concrete schedule and never evicted.
type PrefStore struct {
	mu    sync.RWMutex
	prefs map[int64]Prefs
}

// NewPrefStore creates an empty preference store.
func NewPrefStore() *PrefStore {
	return &PrefStore{prefs: make(map[int64]Prefs)}
}

// Get returns the stored preferences of a user.
func (p *PrefStore) Get(userID int64) (Prefs, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prefs, ok := p.prefs[userID]
	return prefs, ok
}

// Set stores the preferences of a user.
func (p *PrefStore) Set(userID int64, prefs Prefs) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prefs[userID] = prefs
}
