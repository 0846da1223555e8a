package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper2diagram/gateway"
	"paper2diagram/storage"
)

func newTestStore() (*Store, *storage.MemKV) {
	kv := storage.NewMemKV()
	return NewStore(kv, State{Language: "en"}), kv
}

func TestAddToHistoryCapAndOrder(t *testing.T) {
	s, _ := newTestStore()

	for i := 1; i <= 7; i++ {
		s.AddToHistory(fmt.Sprintf("schema-%d", i), "data:image/png;base64,AAAA")
	}

	st := s.Snapshot()
	require.Len(t, st.History, 5, "history must be capped at 5")
	for i, item := range st.History {
		// Newest first: 7, 6, 5, 4, 3.
		assert.Equal(t, fmt.Sprintf("schema-%d", 7-i), item.Schema)
		assert.Empty(t, item.ImageURL, "stored items never carry the image")
		assert.NotEmpty(t, item.ID)
		assert.False(t, item.Timestamp.IsZero())
	}
}

func TestThumbnailMarker(t *testing.T) {
	s, _ := newTestStore()

	long := "data:image/png;base64," + strings.Repeat("A", 500)
	item := s.AddToHistory("s", long)
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(item.Thumbnail, "...")),
		"marker must be a truncation of the payload")
	assert.Less(t, len(item.Thumbnail), 110, "marker must stay short")

	noImage := s.AddToHistory("s2", "")
	assert.Empty(t, noImage.Thumbnail)
}

func TestLoadFromHistoryNullsImage(t *testing.T) {
	s, _ := newTestStore()
	item := s.AddToHistory("the stored schema", "data:image/png;base64,AAAA")

	s.SetGeneratedSchema("something newer")
	s.SetGeneratedImage("data:image/png;base64,BBBB")

	got, err := s.LoadFromHistory(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "the stored schema", got.Schema)

	st := s.Snapshot()
	assert.Equal(t, "the stored schema", st.GeneratedSchema)
	assert.Empty(t, st.GeneratedImage, "loading history never restores the picture")
}

func TestLoadFromHistoryUnknownID(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.LoadFromHistory("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuotaFailureRaisesWarningAndKeepsMutation(t *testing.T) {
	s, kv := newTestStore()
	kv.SetErr = storage.ErrQuotaExceeded

	item := s.AddToHistory("schema", "data:image/png;base64,AAAA")

	st := s.Snapshot()
	assert.True(t, st.StorageWarning, "quota failure must surface as the warning flag")
	require.Len(t, st.History, 1, "the in-memory mutation must survive the failed write")
	assert.Equal(t, item.ID, st.History[0].ID)
}

func TestDeleteAndClearResetWarning(t *testing.T) {
	s, kv := newTestStore()
	kv.SetErr = storage.ErrQuotaExceeded
	a := s.AddToHistory("a", "img")
	s.AddToHistory("b", "img")
	require.True(t, s.Snapshot().StorageWarning)

	// Deleting is the recovery action: the flag clears even while the
	// substrate is still full.
	require.NoError(t, s.DeleteFromHistory(a.ID))
	assert.False(t, s.Snapshot().StorageWarning)

	kv.SetErr = storage.ErrQuotaExceeded
	s.AddToHistory("c", "img")
	require.True(t, s.Snapshot().StorageWarning)
	s.ClearHistory()
	st := s.Snapshot()
	assert.False(t, st.StorageWarning)
	assert.Empty(t, st.History)
}

func TestDeleteFromHistoryUnknownID(t *testing.T) {
	s, _ := newTestStore()
	assert.ErrorIs(t, s.DeleteFromHistory("nope"), ErrNotFound)
}

func TestSuccessfulWriteClearsWarning(t *testing.T) {
	s, kv := newTestStore()
	kv.SetErr = storage.ErrQuotaExceeded
	s.AddToHistory("a", "img")
	require.True(t, s.Snapshot().StorageWarning)

	kv.SetErr = nil
	s.SetPaperContent("more text")
	assert.False(t, s.Snapshot().StorageWarning, "a clean write clears the warning")
}

func TestPersistedSubset(t *testing.T) {
	s, kv := newTestStore()
	s.SetLogicConfig(gateway.ModelConfig{BaseURL: "https://a", APIKey: "k1", ModelName: "m1"})
	s.SetVisionConfig(gateway.ModelConfig{BaseURL: "https://b", APIKey: "k2", ModelName: "m2"})
	s.SetPaperContent("paper")
	s.SetGeneratedSchema("schema")
	s.SetGeneratedImage("data:image/png;base64,HUGE")
	s.SetReferenceImages([]string{"data:image/png;base64,REF"})
	s.AddToHistory("schema", "data:image/png;base64,HUGE")

	data, err := kv.Get("paper2diagram-workflow")
	require.NoError(t, err)
	require.NotNil(t, data)

	var persisted map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &persisted))

	assert.Contains(t, persisted, "logic_config")
	assert.Contains(t, persisted, "vision_config")
	assert.Contains(t, persisted, "language")
	assert.Contains(t, persisted, "paper_content")
	assert.Contains(t, persisted, "generated_schema")
	assert.Contains(t, persisted, "history")
	assert.NotContains(t, persisted, "generated_image", "the live image must never be persisted")
	assert.NotContains(t, persisted, "reference_images", "reference images must never be persisted")

	var history []HistoryItem
	require.NoError(t, json.Unmarshal(persisted["history"], &history))
	require.Len(t, history, 1)
	assert.Empty(t, history[0].ImageURL, "history image must be emptied again at write time")
	assert.NotEmpty(t, history[0].Thumbnail)
}

func TestHydrate(t *testing.T) {
	kv := storage.NewMemKV()
	first := NewStore(kv, State{Language: "en"})
	first.SetLogicConfig(gateway.ModelConfig{APIKey: "k", ModelName: "m"})
	first.SetPaperContent("paper")
	first.SetGeneratedSchema("schema")
	first.AddToHistory("schema", "data:image/png;base64,AAAA")

	second := NewStore(kv, State{Language: "en"})
	assert.False(t, second.Hydrated(), "defaults are in effect until Hydrate")
	assert.Empty(t, second.Snapshot().PaperContent)

	require.NoError(t, second.Hydrate())
	assert.True(t, second.Hydrated())

	st := second.Snapshot()
	assert.Equal(t, "m", st.LogicConfig.ModelName)
	assert.Equal(t, "paper", st.PaperContent)
	assert.Equal(t, "schema", st.GeneratedSchema)
	require.Len(t, st.History, 1)
	assert.Empty(t, st.History[0].ImageURL)
	assert.Empty(t, st.GeneratedImage, "scratch state does not survive reload")
	assert.Empty(t, st.ReferenceImages)
}

func TestHydrateMissingAndCorrupt(t *testing.T) {
	kv := storage.NewMemKV()
	s := NewStore(kv, State{Language: "en"})
	require.NoError(t, s.Hydrate())
	assert.True(t, s.Hydrated())
	assert.Equal(t, "en", s.Snapshot().Language)

	require.NoError(t, kv.Set("paper2diagram-workflow", []byte("{not json")))
	s2 := NewStore(kv, State{Language: "en"})
	require.NoError(t, s2.Hydrate(), "corrupt persisted state must be discarded, not fatal")
	assert.True(t, s2.Hydrated())
}

func TestResetProject(t *testing.T) {
	s, _ := newTestStore()
	s.SetLogicConfig(gateway.ModelConfig{APIKey: "k", ModelName: "m"})
	s.SetPaperContent("paper")
	s.SetGeneratedSchema("schema")
	s.SetGeneratedImage("img")
	s.SetReferenceImages([]string{"ref"})
	s.SetCurrentStep(3)
	s.AddToHistory("schema", "img")

	s.ResetProject()

	st := s.Snapshot()
	assert.Empty(t, st.PaperContent)
	assert.Empty(t, st.GeneratedSchema)
	assert.Empty(t, st.GeneratedImage)
	assert.Empty(t, st.ReferenceImages)
	assert.Equal(t, 1, st.CurrentStep)
	assert.Equal(t, "m", st.LogicConfig.ModelName, "configs survive a project reset")
	assert.Len(t, st.History, 1, "history survives a project reset")
}

func TestSetCurrentStepClamps(t *testing.T) {
	s, _ := newTestStore()
	s.SetCurrentStep(7)
	assert.Equal(t, 3, s.Snapshot().CurrentStep)
	s.SetCurrentStep(0)
	assert.Equal(t, 1, s.Snapshot().CurrentStep)
}
