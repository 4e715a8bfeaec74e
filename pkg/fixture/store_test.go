package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waftester/a11ycorpus/pkg/snapshot"
	"github.com/waftester/a11ycorpus/pkg/testutil"
)

func TestStoreSaveLoad(t *testing.T) {
	s := NewStore(t.TempDir())
	rec := Record{
		ID:       "empty-heading",
		Category: "Headings",
		Title:    "Empty heading",
		Page:     testutil.PageFromMarkup("file:///x.html", "<h2></h2>"),
	}
	require.NoError(t, s.Save(rec))

	assert.FileExists(t, filepath.Join(s.Dir(), "headings", "empty-heading.json"))

	got, err := s.Load("headings", "empty-heading")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	title, err := s.Title("Headings", "empty-heading")
	require.NoError(t, err)
	assert.Equal(t, "Empty heading", title)
}

func TestStoreMissingFixture(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Load("headings", "nope")
	assert.ErrorIs(t, err, ErrMissingFixture)
	assert.False(t, IsBuildAbort(err))

	_, err = s.Title("headings", "nope")
	assert.ErrorIs(t, err, ErrMissingFixture)
}

func TestStoreCorruptFixture(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, os.MkdirAll(filepath.Join(s.Dir(), "forms"), 0o755))
	require.NoError(t, os.WriteFile(s.Path("forms", "bad"), []byte("{"), 0o644))

	_, err := s.Load("forms", "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingFixture)

	_, err = s.Title("forms", "bad")
	assert.Error(t, err)
}

func TestStoreList(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, r := range []Record{
		{ID: "b", Category: "Tables"},
		{ID: "a", Category: "Tables"},
		{ID: "c", Category: "Frames"},
	} {
		require.NoError(t, s.Save(r))
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "stray.json"), []byte("{}"), 0o644))

	entries, err := s.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Entry{
		{Category: "tables", ID: "a"},
		{Category: "tables", ID: "b"},
		{Category: "frames", ID: "c"},
	}, entries)
}

func TestStoreListEmptyDir(t *testing.T) {
	entries, err := NewStore(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEncodeFormat(t *testing.T) {
	data, err := Encode(Record{ID: "x", Category: "C", Title: "T"})
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])
	assert.Contains(t, string(data), "\n  \"category\": \"C\",\n")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rec := Record{
		ID:       "empty-page-title",
		Category: "Page title",
		Title:    "Empty page title",
		Page: testutil.PageFromMarkup("file:///tmp/empty-page-title.html",
			"<!DOCTYPE html>\n<html lang=\"en\"><head><title></title></head><body>é</body></html>"),
	}
	rec.Page.Response.Headers = []snapshot.Header{
		{Name: "Content-Type", Value: "text/html"},
		{Name: "X-Test", Value: "a"},
		{Name: "X-Test", Value: "b"},
	}

	data, err := Encode(rec)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	again, err := Encode(got)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding must be deterministic")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}
