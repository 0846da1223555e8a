// Package workflow owns the process-wide workflow state: model configs, the
// current step, working documents, and the capped history log. All mutation
// goes through the Store, which also enforces the history degradation policy
// under storage pressure.
package workflow

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"paper2diagram/gateway"
	"paper2diagram/storage"
)

// ErrNotFound is returned by history lookups for an unknown id.
var ErrNotFound = errors.New("history item not found")

const (
	// maxHistoryItems caps the history log; oldest entries are evicted first.
	maxHistoryItems = 5
	// thumbnailMarkerLen bounds the marker string kept in place of the image.
	thumbnailMarkerLen = 96
)

// HistoryItem is one retained render. Immutable once created. ImageURL is
// always empty at rest: the full rendered image never enters history, only
// the truncated thumbnail marker derived from it.
type HistoryItem struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Schema    string    `json:"schema"`
	ImageURL  string    `json:"image_url"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

// State is the full workflow state. GeneratedImage and ReferenceImages are
// per-session scratch, re-derivable or simply lost on reload; they are never
// part of the persisted subset.
type State struct {
	LogicConfig     gateway.ModelConfig `json:"logic_config"`
	VisionConfig    gateway.ModelConfig `json:"vision_config"`
	Language        string              `json:"language"`
	CurrentStep     int                 `json:"current_step"`
	PaperContent    string              `json:"paper_content"`
	GeneratedSchema string              `json:"generated_schema"`
	GeneratedImage  string              `json:"generated_image,omitempty"`
	ReferenceImages []string            `json:"reference_images,omitempty"`
	History         []HistoryItem       `json:"history"`
	StorageWarning  bool                `json:"storage_warning"`
	Hydrated        bool                `json:"hydrated"`
}

// Store is the single shared mutable resource of the pipeline. Mutations are
// synchronous and atomic; persistence writes are fire-and-forget with a local
// guard that turns the quota signal into the StorageWarning flag instead of
// an error.
type Store struct {
	mu       sync.Mutex
	kv       storage.KV
	state    State
	hydrated bool
}

// NewStore creates a store over the given persistence substrate with the
// given defaults. Persisted values take effect only after Hydrate.
func NewStore(kv storage.KV, defaults State) *Store {
	if defaults.CurrentStep == 0 {
		defaults.CurrentStep = 1
	}
	return &Store{kv: kv, state: defaults}
}

// Snapshot returns a copy of the current state. History and reference image
// slices are copied so callers cannot alias store internals.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.History = append([]HistoryItem(nil), s.state.History...)
	st.ReferenceImages = append([]string(nil), s.state.ReferenceImages...)
	st.Hydrated = s.hydrated
	return st
}

// Hydrated reports whether persisted values have finished loading; before
// that, defaults are in effect.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// --- field accessors ---

func (s *Store) SetLogicConfig(cfg gateway.ModelConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LogicConfig = cfg
	s.persistLocked()
}

func (s *Store) SetVisionConfig(cfg gateway.ModelConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.VisionConfig = cfg
	s.persistLocked()
}

func (s *Store) SetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Language = lang
	s.persistLocked()
}

// SetCurrentStep clamps to the valid 1..3 range.
func (s *Store) SetCurrentStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step < 1 {
		step = 1
	}
	if step > 3 {
		step = 3
	}
	s.state.CurrentStep = step
	s.persistLocked()
}

func (s *Store) SetPaperContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PaperContent = content
	s.persistLocked()
}

func (s *Store) SetGeneratedSchema(schema string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GeneratedSchema = schema
	s.persistLocked()
}

// SetGeneratedImage updates scratch state only; the image is excluded from
// the persisted subset, so nothing is written.
func (s *Store) SetGeneratedImage(imageURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.GeneratedImage = imageURL
}

func (s *Store) SetReferenceImages(images []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ReferenceImages = append([]string(nil), images...)
}

// --- history actions ---

// AddToHistory records a render: fresh id and timestamp, thumbnail marker
// computed from the image payload, ImageURL forcibly emptied, newest first,
// capped at maxHistoryItems. Persistence is attempted once; a quota failure
// raises StorageWarning and keeps the in-memory mutation.
func (s *Store) AddToHistory(schema, imageURL string) HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := HistoryItem{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Schema:    schema,
		Thumbnail: thumbnailMarker(imageURL),
	}
	s.state.History = append([]HistoryItem{item}, s.state.History...)
	if len(s.state.History) > maxHistoryItems {
		s.state.History = s.state.History[:maxHistoryItems]
	}
	s.persistLocked()
	return item
}

// LoadFromHistory restores the stored schema into working state. The
// generated image is always nulled: history never holds a real image, so
// loading can only bring back the schema text.
func (s *Store) LoadFromHistory(id string) (HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.state.History {
		if item.ID == id {
			s.state.GeneratedSchema = item.Schema
			s.state.GeneratedImage = ""
			s.persistLocked()
			return item, nil
		}
	}
	return HistoryItem{}, ErrNotFound
}

// DeleteFromHistory removes one entry. Deleting is the recovery action for a
// full-storage condition, so the warning flag is cleared regardless of how
// the follow-up write goes.
func (s *Store) DeleteFromHistory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.state.History {
		if item.ID == id {
			s.state.History = append(s.state.History[:i], s.state.History[i+1:]...)
			s.persistLocked()
			s.state.StorageWarning = false
			return nil
		}
	}
	return ErrNotFound
}

// ClearHistory removes every entry and clears the warning flag.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.History = nil
	s.persistLocked()
	s.state.StorageWarning = false
}

// ResetProject clears the working documents and returns to step 1. Model
// configs and history are untouched.
func (s *Store) ResetProject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PaperContent = ""
	s.state.GeneratedSchema = ""
	s.state.GeneratedImage = ""
	s.state.ReferenceImages = nil
	s.state.CurrentStep = 1
	s.persistLocked()
}

// thumbnailMarker derives the short, non-restorable stand-in kept in history
// in place of the image payload.
func thumbnailMarker(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	runes := []rune(imageURL)
	if len(runes) <= thumbnailMarkerLen {
		return imageURL
	}
	return string(runes[:thumbnailMarkerLen]) + "..."
}
