package subscribers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/logging"
)

// Environment captures the OS/shell/package-manager/node-version signals
// spec.md §6's user-profile.json v2 document names.
type Environment struct {
	OS             string `json:"os,omitempty"`
	Shell          string `json:"shell,omitempty"`
	PackageManager string `json:"packageManager,omitempty"`
	NodeVersion    string `json:"nodeVersion,omitempty"`
}

// StableProfile is the durable body of the v2 user-profile document
// (spec.md §6).
type StableProfile struct {
	PreferredLanguage string      `json:"preferredLanguage,omitempty"`
	CodingLanguages   []string    `json:"codingLanguages,omitempty"`
	Environment       Environment `json:"environment,omitempty"`
	Preferences       []string    `json:"preferences,omitempty"`
	RecentFocus       string      `json:"recentFocus,omitempty"`
	LastWorkspace     string      `json:"lastWorkspace,omitempty"`
}

// Profile is the on-disk shape of <homeDir>/user-profile.json.
type Profile struct {
	Version       int           `json:"version"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	StableProfile StableProfile `json:"stableProfile"`
}

// legacyProfile is the v1 shape: a flat map of exit-focus strings keyed by
// session id, with no other structured signal. Migration keeps only the
// most recent one as RecentFocus (spec.md §6 "legacy v1 entries are
// migrated on read, keeping only the latest exit focus").
type legacyProfile struct {
	ExitFocus map[string]string `json:"exitFocus"`
}

// UserProfileSubscriber extracts heuristic signals from user messages and
// summaries and merges them into the durable profile on summary and
// session_end (spec.md §4.5).
//
// Grounded on the *idea* of the teacher's session metadata accumulation
// (old_internal/session/session.go's Session.Config map) generalized
// into a standalone heuristic extractor with no direct teacher
// equivalent — this subscriber and its regex heuristics are new
// SPEC_FULL content (DESIGN.md).
type UserProfileSubscriber struct {
	path string
	log  *logging.Logger

	mu       sync.Mutex
	pending  map[string][]string // sessionID -> accumulated preference/language hints not yet merged
	lastFocus map[string]string
	lastWorkspace map[string]string
}

// NewUserProfileSubscriber builds a subscriber persisting to
// <homeDir>/user-profile.json.
func NewUserProfileSubscriber(homeDir string, log *logging.Logger) *UserProfileSubscriber {
	if log == nil {
		log = logging.New("subscribers.userprofile", nil, logging.Info)
	}
	return &UserProfileSubscriber{
		path:          filepath.Join(homeDir, "user-profile.json"),
		log:           log,
		pending:       make(map[string][]string),
		lastFocus:     make(map[string]string),
		lastWorkspace: make(map[string]string),
	}
}

func (u *UserProfileSubscriber) Handle(evt eventbus.Event) {
	switch e := evt.(type) {
	case eventbus.StartEvent:
		u.mu.Lock()
		u.lastWorkspace[e.Session()] = e.Workspace
		u.mu.Unlock()

	case eventbus.MessageEvent:
		if e.Role != "user" {
			return
		}
		u.observeUserText(e.Session(), e.Content)

	case eventbus.SummaryEvent:
		u.observeUserText(e.Session(), e.Content)
		u.merge(e.Session())

	case eventbus.SessionEndEvent:
		u.merge(e.Session())
		u.mu.Lock()
		delete(u.pending, e.Session())
		delete(u.lastFocus, e.Session())
		delete(u.lastWorkspace, e.Session())
		u.mu.Unlock()
	}
}

var (
	languageWords = map[string]string{
		"golang": "Go", "python": "Python", "typescript": "TypeScript",
		"javascript": "JavaScript", "rust": "Rust", "java": "Java", "ruby": "Ruby", "c++": "C++",
	}
	preferNaturalLanguageRe = regexp.MustCompile(`(?i)(?:respond|reply|talk|speak) (?:to me )?in ([A-Za-z]+)`)
	shellRe                 = regexp.MustCompile(`(?i)\b(zsh|bash|fish|powershell)\b`)
	packageManagerRe        = regexp.MustCompile(`(?i)\b(npm|yarn|pnpm|pip|cargo|bundler|poetry)\b`)
	nodeVersionRe           = regexp.MustCompile(`(?i)\bnode(?:\.js)?\s*v?(\d+(?:\.\d+)*)\b`)
	osRe                    = regexp.MustCompile(`(?i)\b(macos|linux|windows|ubuntu|debian)\b`)
	preferenceRe            = regexp.MustCompile(`(?i)\bI (?:prefer|like|want|always use) ([^.\n]{3,60})`)
)

// observeUserText scans text for heuristic signals and stashes them as
// "kind:value" pending hints, merged into the durable profile on the next
// summary/session_end boundary.
func (u *UserProfileSubscriber) observeUserText(sessionID, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	var hints []string

	lower := strings.ToLower(text)
	for word, lang := range languageWords {
		if strings.Contains(lower, word) {
			hints = append(hints, "lang:"+lang)
		}
	}
	if m := preferNaturalLanguageRe.FindStringSubmatch(text); m != nil {
		hints = append(hints, "natural:"+m[1])
	}
	if m := shellRe.FindStringSubmatch(text); m != nil {
		hints = append(hints, "shell:"+strings.ToLower(m[1]))
	}
	if m := packageManagerRe.FindStringSubmatch(text); m != nil {
		hints = append(hints, "pm:"+strings.ToLower(m[1]))
	}
	if m := nodeVersionRe.FindStringSubmatch(text); m != nil {
		hints = append(hints, "node:"+m[1])
	}
	if m := osRe.FindStringSubmatch(text); m != nil {
		hints = append(hints, "os:"+strings.ToLower(m[1]))
	}
	if m := preferenceRe.FindStringSubmatch(text); m != nil {
		hints = append(hints, "pref:"+strings.TrimSpace(m[1]))
	}

	if len(hints) == 0 {
		return
	}
	u.mu.Lock()
	u.pending[sessionID] = append(u.pending[sessionID], hints...)
	u.lastFocus[sessionID] = oneLineFocus(text)
	u.mu.Unlock()
}

func oneLineFocus(text string) string {
	s := strings.Join(strings.Fields(text), " ")
	const maxFocus = 160
	if len(s) > maxFocus {
		s = s[:maxFocus]
	}
	return s
}

// merge folds accumulated hints for sessionID into the durable profile
// file, read-modify-write under a process-wide lock (spec.md §4.5
// "merges them into a single durable JSON profile").
func (u *UserProfileSubscriber) merge(sessionID string) {
	u.mu.Lock()
	hints := u.pending[sessionID]
	u.pending[sessionID] = nil
	focus := u.lastFocus[sessionID]
	workspace := u.lastWorkspace[sessionID]
	u.mu.Unlock()

	if len(hints) == 0 && focus == "" && workspace == "" {
		return
	}

	profile, err := u.load()
	if err != nil {
		u.log.Error("load user profile: %v", err)
		profile = &Profile{Version: 2}
	}

	applyHints(&profile.StableProfile, hints)
	if focus != "" {
		profile.StableProfile.RecentFocus = focus
	}
	if workspace != "" {
		profile.StableProfile.LastWorkspace = workspace
	}
	profile.Version = 2
	profile.UpdatedAt = time.Now()

	if err := u.save(profile); err != nil {
		u.log.Error("save user profile: %v", err)
	}
}

func applyHints(sp *StableProfile, hints []string) {
	langSet := toSet(sp.CodingLanguages)
	prefSet := toSet(sp.Preferences)

	for _, h := range hints {
		kind, value, ok := strings.Cut(h, ":")
		if !ok {
			continue
		}
		switch kind {
		case "lang":
			if !langSet[value] {
				sp.CodingLanguages = append(sp.CodingLanguages, value)
				langSet[value] = true
			}
		case "natural":
			sp.PreferredLanguage = value
		case "shell":
			sp.Environment.Shell = value
		case "pm":
			sp.Environment.PackageManager = value
		case "node":
			sp.Environment.NodeVersion = value
		case "os":
			sp.Environment.OS = value
		case "pref":
			if !prefSet[value] {
				sp.Preferences = append(sp.Preferences, value)
				prefSet[value] = true
			}
		}
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, i := range items {
		set[i] = true
	}
	return set
}

func (u *UserProfileSubscriber) load() (*Profile, error) {
	data, err := os.ReadFile(u.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Profile{Version: 2}, nil
		}
		return nil, err
	}

	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return &Profile{Version: 2}, nil
	}
	if probe.Version == 2 {
		var p Profile
		if err := json.Unmarshal(data, &p); err != nil {
			return &Profile{Version: 2}, nil
		}
		return &p, nil
	}

	// v1 migration: keep only the latest exit focus.
	var legacy legacyProfile
	if err := json.Unmarshal(data, &legacy); err != nil {
		return &Profile{Version: 2}, nil
	}
	migrated := &Profile{Version: 2}
	var latest string
	for _, focus := range legacy.ExitFocus {
		latest = focus
	}
	migrated.StableProfile.RecentFocus = latest
	return migrated, nil
}

func (u *UserProfileSubscriber) save(p *Profile) error {
	if err := os.MkdirAll(filepath.Dir(u.path), 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(u.path, encoded, 0o644)
}
