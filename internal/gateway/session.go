package gateway

import (
  "sort"
  "strings"
  "sync"
  "github.com/google/uuid"
  "github.com/dolbomcare/carelog-backend/internal/apperr"
)

// Fragment is one chunk of captured audio together with the capture-time
// timestamp the client stamped it with. Ordering is decided by that
// timestamp, never by arrival order.
type Fragment struct {
  Timestamp  int64
  Audio      []byte
  Transcript string
}

// Session accumulates fragments for one websocket connection. All methods
// are safe for concurrent use; the gateway reads and the registry cleans up
// from different goroutines.
type Session struct {
  mu           sync.Mutex
  recording    bool
  clientID     uuid.UUID
  careWorkerID uuid.UUID
  fragments    []Fragment
}

func (s *Session) StartRecording(clientID, careWorkerID uuid.UUID) {
  s.mu.Lock()
  defer s.mu.Unlock()
  s.recording = true
  s.clientID = clientID
  s.careWorkerID = careWorkerID
  s.fragments = nil
}

func (s *Session) Recording() bool {
  s.mu.Lock()
  defer s.mu.Unlock()
  return s.recording
}

func (s *Session) ClientID() uuid.UUID {
  s.mu.Lock()
  defer s.mu.Unlock()
  return s.clientID
}

func (s *Session) CareWorkerID() uuid.UUID {
  s.mu.Lock()
  defer s.mu.Unlock()
  return s.careWorkerID
}

// EnsureClient records the target client the first time any event names one.
func (s *Session) EnsureClient(clientID uuid.UUID) {
  s.mu.Lock()
  defer s.mu.Unlock()
  if s.clientID == uuid.Nil && clientID != uuid.Nil {
    s.clientID = clientID
  }
}

func (s *Session) AppendFragment(f Fragment) {
  s.mu.Lock()
  defer s.mu.Unlock()
  s.fragments = append(s.fragments, f)
}

func (s *Session) FragmentCount() int {
  s.mu.Lock()
  defer s.mu.Unlock()
  return len(s.fragments)
}

// Assemble rebuilds the full recording from the buffered fragments: audio
// buffers are concatenated in timestamp order and the per-fragment
// transcripts are joined with single spaces, skipping blanks. Fragments with
// equal timestamps keep their arrival order.
func (s *Session) Assemble() ([]byte, string, error) {
  s.mu.Lock()
  defer s.mu.Unlock()
  if len(s.fragments) == 0 {
    return nil, "", apperr.ErrNoAudioRecorded
  }
  ordered := make([]Fragment, len(s.fragments))
  copy(ordered, s.fragments)
  sort.SliceStable(ordered, func(i, j int) bool {
    return ordered[i].Timestamp < ordered[j].Timestamp
  })

  total := 0
  for _, f := range ordered {
    total += len(f.Audio)
  }
  audio := make([]byte, 0, total)
  parts := make([]string, 0, len(ordered))
  for _, f := range ordered {
    audio = append(audio, f.Audio...)
    if t := strings.TrimSpace(f.Transcript); t != "" {
      parts = append(parts, t)
    }
  }
  transcript := strings.Join(parts, " ")
  if transcript == "" {
    return audio, "", apperr.ErrEmptyTranscript
  }
  return audio, transcript, nil
}

// Clear drops all buffered state. Called after every stop, successful or
// not, so a failed persist never leaks into the next recording.
func (s *Session) Clear() {
  s.mu.Lock()
  defer s.mu.Unlock()
  s.recording = false
  s.clientID = uuid.Nil
  s.careWorkerID = uuid.Nil
  s.fragments = nil
}

// Registry tracks live sessions keyed by connection ID.
type Registry struct {
  mu       sync.RWMutex
  sessions map[string]*Session
}

func NewRegistry() *Registry {
  return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) GetOrCreate(connID string) *Session {
  r.mu.Lock()
  defer r.mu.Unlock()
  if s, ok := r.sessions[connID]; ok {
    return s
  }
  s := &Session{}
  r.sessions[connID] = s
  return s
}

func (r *Registry) Get(connID string) *Session {
  r.mu.RLock()
  defer r.mu.RUnlock()
  return r.sessions[connID]
}

func (r *Registry) Remove(connID string) {
  r.mu.Lock()
  defer r.mu.Unlock()
  delete(r.sessions, connID)
}

func (r *Registry) Len() int {
  r.mu.RLock()
  defer r.mu.RUnlock()
  return len(r.sessions)
}
