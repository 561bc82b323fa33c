package dictionary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bastiangx/brailleserve/internal/utils"
	"github.com/bastiangx/brailleserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
)

// Kind names one of the two word lists a Registry can serve.
type Kind string

const (
	KindDefault Kind = "default"
	KindCustom  Kind = "custom"
)

var (
	// ErrUnknownDictionary is returned when switching to a kind that does not exist.
	ErrUnknownDictionary = errors.New("unknown dictionary")
	// ErrNoCustomDictionary is returned when switching to custom before any upload.
	ErrNoCustomDictionary = errors.New("no custom dictionary loaded")
)

// ParseKind maps user input to a Kind. "uploaded" is accepted as an alias
// for custom.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "default", "":
		return KindDefault, nil
	case "custom", "uploaded":
		return KindCustom, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDictionary, s)
}

// Snapshot is one generation of the active dictionary. It is never mutated
// after publication, so a reader holding one sees a consistent word list and
// trie even while the registry switches.
type Snapshot struct {
	Kind       Kind
	Name       string
	Words      []string
	Trie       *suggest.Trie
	Cache      *suggest.Cache
	Generation uint64
}

// Info describes the registry for status displays.
type Info struct {
	Active       Kind   `msgpack:"active"`
	Name         string `msgpack:"name"`
	Words        int    `msgpack:"words"`
	DefaultWords int    `msgpack:"default_words"`
	CustomName   string `msgpack:"custom_name"`
	CustomWords  int    `msgpack:"custom_words"`
	HasCustom    bool   `msgpack:"has_custom"`
	Generation   uint64 `msgpack:"generation"`
}

// Options controls persistence and per-snapshot caching.
type Options struct {
	// DataDir is where the custom list is persisted. Empty disables persistence.
	DataDir string
	// CustomFile is the file name of the persisted custom list.
	CustomFile string
	// CacheSize is the suggestion cache size of every snapshot.
	CacheSize int
	// MaxUploadWords caps an uploaded list; 0 means no cap.
	MaxUploadWords int
}

// DefaultOptions returns options without persistence.
func DefaultOptions() Options {
	return Options{
		CustomFile: "custom_words.txt",
		CacheSize:  256,
	}
}

// Registry owns the default and custom word lists and the active snapshot.
type Registry struct {
	opts Options

	// buildMu orders Switch, Upload and LoadCustom so a snapshot built from
	// a superseded custom list is never published.
	buildMu sync.Mutex

	mu         sync.RWMutex
	defaults   []string
	custom     []string
	customName string
	hasCustom  bool
	active     *Snapshot
	generation uint64
}

// NewRegistry builds a registry serving defaults.
func NewRegistry(defaults []string, opts Options) *Registry {
	if opts.CustomFile == "" {
		opts.CustomFile = DefaultOptions().CustomFile
	}
	r := &Registry{
		opts:     opts,
		defaults: append([]string(nil), defaults...),
	}
	r.generation = 1
	r.active = r.buildSnapshot(KindDefault, "default", r.defaults, r.generation)
	log.Debugf("Dictionary registry ready with %d default words", len(r.defaults))
	return r
}

// Active returns the current snapshot.
func (r *Registry) Active() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Switch makes kind the active dictionary. The new trie is built before the
// swap so concurrent readers never see a partially built one.
func (r *Registry) Switch(kind Kind) (*Snapshot, error) {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	r.mu.RLock()
	var words []string
	var name string
	switch kind {
	case KindDefault:
		words, name = r.defaults, "default"
	case KindCustom:
		if !r.hasCustom {
			r.mu.RUnlock()
			return nil, ErrNoCustomDictionary
		}
		words, name = r.custom, r.customName
	default:
		r.mu.RUnlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownDictionary, kind)
	}
	r.mu.RUnlock()

	snap := r.buildSnapshot(kind, name, words, 0)
	r.publish(snap)
	log.Infof("Switched to %s dictionary (%d words)", kind, len(words))
	return snap, nil
}

// Upload replaces the custom list with the words read from rd, persists it
// and makes it active. Content that is not text yields an empty list, which
// is still a valid dictionary.
func (r *Registry) Upload(name string, rd io.Reader) (*Snapshot, error) {
	words := parseWords(rd, r.opts.MaxUploadWords)
	if name == "" {
		name = "custom"
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	if err := r.persist(words); err != nil {
		return nil, err
	}

	snap := r.buildSnapshot(KindCustom, name, words, 0)

	r.mu.Lock()
	r.custom = words
	r.customName = name
	r.hasCustom = true
	r.mu.Unlock()

	r.publish(snap)
	log.Infof("Loaded custom dictionary %q with %d words", name, len(words))
	return snap, nil
}

// UploadWords is Upload for an already split list.
func (r *Registry) UploadWords(name string, words []string) (*Snapshot, error) {
	return r.Upload(name, strings.NewReader(strings.Join(words, "\n")))
}

// LoadCustom restores a previously persisted custom list without activating
// it. It reports whether one was found.
func (r *Registry) LoadCustom() (bool, error) {
	path := r.customPath()
	if path == "" || !utils.FileExists(path) {
		return false, nil
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return false, fmt.Errorf("failed to lock custom dictionary: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read custom dictionary %s: %w", path, err)
	}
	words := parseWords(bytes.NewReader(data), r.opts.MaxUploadWords)

	r.mu.Lock()
	r.custom = words
	r.customName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	r.hasCustom = true
	r.mu.Unlock()

	log.Debugf("Restored custom dictionary from %s (%d words)", path, len(words))
	return true, nil
}

// Info returns a summary of both lists and the active one.
func (r *Registry) Info() Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Info{
		Active:       r.active.Kind,
		Name:         r.active.Name,
		Words:        len(r.active.Words),
		DefaultWords: len(r.defaults),
		CustomName:   r.customName,
		CustomWords:  len(r.custom),
		HasCustom:    r.hasCustom,
		Generation:   r.active.Generation,
	}
}

func (r *Registry) publish(snap *Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	snap.Generation = r.generation
	r.active = snap
}

func (r *Registry) buildSnapshot(kind Kind, name string, words []string, gen uint64) *Snapshot {
	return &Snapshot{
		Kind:       kind,
		Name:       name,
		Words:      words,
		Trie:       suggest.BuildTrie(words),
		Cache:      suggest.NewCache(r.opts.CacheSize),
		Generation: gen,
	}
}

func (r *Registry) customPath() string {
	if r.opts.DataDir == "" {
		return ""
	}
	return filepath.Join(r.opts.DataDir, r.opts.CustomFile)
}

// persist writes words to the custom list file under an exclusive lock so
// two processes sharing a data dir do not interleave writes.
func (r *Registry) persist(words []string) error {
	path := r.customPath()
	if path == "" {
		return nil
	}
	if err := utils.EnsureDir(r.opts.DataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock custom dictionary: %w", err)
	}
	defer lock.Unlock()

	var buf bytes.Buffer
	for _, w := range words {
		buf.WriteString(w)
		buf.WriteByte('\n')
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save custom dictionary: %w", err)
	}
	log.Debugf("Saved custom dictionary to %s", path)
	return nil
}
