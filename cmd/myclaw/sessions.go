package main

import (
	"fmt"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/persistence"
	"github.com/sworddut/myclaw/internal/session"
)

// resumeSession loads the persisted session matching specifier ("latest",
// a 1-based index, or a session id) for rt.cfg.Workspace, reattaches it to
// the in-memory store and the SessionLogSubscriber, and publishes the
// session_resume event (spec.md §4.6).
func resumeSession(rt *runtime, specifier string) (*session.Session, error) {
	summaries, err := persistence.ListForWorkspace(rt.cfg.HomeDir, rt.cfg.Workspace)
	if err != nil {
		return nil, fmt.Errorf("list persisted sessions: %w", err)
	}
	picked, ok := persistence.PickSession(summaries, specifier)
	if !ok {
		return nil, fmt.Errorf("no persisted session matches %q in this workspace", specifier)
	}

	sess, messageCount, err := persistence.Resume(rt.cfg.HomeDir, picked.SessionID, session.Runtime{
		MaxSteps:          rt.cfg.Runtime.MaxSteps,
		ContextWindowSize: rt.cfg.Runtime.ContextWindowSize,
	}, defaultSystemPrompt)
	if err != nil {
		return nil, err
	}

	rt.store.Put(sess)
	rt.sessionLog.Attach(sess.ID, sess.LogPath)
	rt.bus.Publish(eventbus.NewSessionResume(sess.ID, messageCount))
	return sess, nil
}
