package fixture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/gjson"
	"github.com/waftester/a11ycorpus/pkg/defaults"
	"github.com/waftester/a11ycorpus/pkg/iohelper"
	"github.com/waftester/a11ycorpus/pkg/slug"
)

// Entry addresses one fixture in a store.
type Entry struct {
	Category string // directory name, already a slug
	ID       string
}

// Store is a fixture directory on disk.
type Store struct {
	dir  string
	fsys fs.FS
}

// NewStore returns a store rooted at dir. The directory need not exist yet.
func NewStore(dir string) *Store {
	return &Store{dir: dir, fsys: os.DirFS(dir)}
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path of a fixture. category may be given as
// declared or as its slug; both land in the same directory.
func (s *Store) Path(category, id string) string {
	return filepath.Join(s.dir, slug.Normalize(category), id+defaults.FixtureExt)
}

func (s *Store) name(category, id string) string {
	return path.Join(slug.Normalize(category), id+defaults.FixtureExt)
}

// Save writes r into its category directory, replacing any existing file.
func (s *Store) Save(r Record) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.dir, slug.Normalize(r.Category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create category directory: %w", err)
	}
	if err := os.WriteFile(s.Path(r.Category, r.ID), data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", r.ID, err)
	}
	return nil
}

// Load reads and decodes one fixture. A missing file yields an error
// wrapping ErrMissingFixture.
func (s *Store) Load(category, id string) (Record, error) {
	data, err := s.read(category, id)
	if err != nil {
		return Record{}, err
	}
	r, err := Decode(data)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", s.name(category, id), err)
	}
	return r, nil
}

// Title returns the title of a fixture without decoding its page.
func (s *Store) Title(category, id string) (string, error) {
	data, err := s.read(category, id)
	if err != nil {
		return "", err
	}
	title := gjson.GetBytes(data, "title")
	if !title.Exists() {
		return "", fmt.Errorf("%s: no title", s.name(category, id))
	}
	return title.String(), nil
}

// List returns every fixture in the store, sorted by category then id.
func (s *Store) List() ([]Entry, error) {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	matches, err := doublestar.Glob(s.fsys, "*/*"+defaults.FixtureExt)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		category, file := path.Split(m)
		entries = append(entries, Entry{
			Category: strings.TrimSuffix(category, "/"),
			ID:       strings.TrimSuffix(file, defaults.FixtureExt),
		})
	}
	return entries, nil
}

func (s *Store) read(category, id string) ([]byte, error) {
	name := s.name(category, id)
	data, err := iohelper.ReadFile(s.fsys, name, iohelper.DefaultMaxSize)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFixture, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", name, err)
	}
	return data, nil
}
