package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/quotegen/internal/docstore"
	"github.com/ziadkadry99/quotegen/internal/export"
	"github.com/ziadkadry99/quotegen/internal/progress"
)

func seed(t *testing.T, n int) *docstore.Memory {
	t.Helper()
	store := docstore.NewMemory()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	languages := []string{"Bengali", "Hindi"}
	for i := 0; i < n; i++ {
		_, err := store.AddRecord(context.Background(), docstore.Record{
			ID:        fmt.Sprintf("r%02d", i),
			Topic:     fmt.Sprintf("Topic %d", i),
			Language:  languages[i%2],
			Tone:      "poetic",
			Quote:     fmt.Sprintf("quote %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	return store
}

func TestCollectWalksEveryPage(t *testing.T) {
	store := seed(t, 25)

	all, err := collect(context.Background(), store, 4, export.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 25)
	assert.Equal(t, "r24", all[0].ID)

	bengali, err := collect(context.Background(), store, 4, export.Filter{Include: []string{"Bengali/**"}})
	require.NoError(t, err)
	assert.Len(t, bengali, 13)
	for _, r := range bengali {
		assert.Equal(t, "Bengali", r.Language)
	}
}

func TestWriteCard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, writeCard(path, docstore.Record{Topic: "Rain", Quote: "It rains."}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)
}

func TestWriteCardsKeepsSameTopicAndMillisecond(t *testing.T) {
	dir := t.TempDir()
	at := time.UnixMilli(1717230600123)
	records := []docstore.Record{
		{ID: "a", Topic: "Rain", Quote: "first", Timestamp: at},
		{ID: "b", Topic: "Rain", Quote: "second", Timestamp: at},
	}

	var log bytes.Buffer
	written, err := writeCards(dir, records, &progress.CIReporter{Task: "cards", Out: &log})
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Contains(t, log.String(), "[2/2] Rain-1717230600123-b.png")
}
