package engine

import (
	"fmt"
	"testing"

	"github.com/sworddut/myclaw/internal/session"
)

func appendUserAssistantPairs(sess *session.Session, pairs int) {
	for i := 0; i < pairs; i++ {
		sess.AppendMessage(session.Message{Role: session.RoleUser, Content: fmt.Sprintf("user message %d", i)})
		sess.AppendMessage(session.Message{Role: session.RoleAssistant, Content: fmt.Sprintf("assistant reply %d", i)})
	}
}

func TestCompressFoldsOldestMessagesOnceTriggerIsCrossed(t *testing.T) {
	eng, sess := newTestEngine(t, &scriptedChat{})
	// One pair over the trigger: enough to fold exactly one chunk and land
	// back at or under the trigger, so only one summary block is produced.
	appendUserAssistantPairs(sess, compressionTrigger/2+1)

	eng.compress(sess)

	if sess.CompressedCount() != compressionChunk {
		t.Fatalf("expected compressedCount to advance by exactly one chunk (%d), got %d", compressionChunk, sess.CompressedCount())
	}
	summaries := sess.Summaries()
	if len(summaries) != 1 {
		t.Fatalf("expected exactly one summary block, got %d", len(summaries))
	}
	if summaries[0].From != 0 || summaries[0].To != compressionChunk-1 {
		t.Fatalf("expected summary block to cover [0,%d], got [%d,%d]", compressionChunk-1, summaries[0].From, summaries[0].To)
	}
}

func TestCompressLoopsUntilBacklogIsBelowTrigger(t *testing.T) {
	eng, sess := newTestEngine(t, &scriptedChat{})
	appendUserAssistantPairs(sess, compressionTrigger+3*compressionChunk)

	eng.compress(sess)

	if sess.MessageCount()-sess.CompressedCount() > compressionTrigger {
		t.Fatalf("expected backlog to drop to at most compressionTrigger, got %d messages with compressedCount %d", sess.MessageCount(), sess.CompressedCount())
	}
	if len(sess.Summaries()) < 2 {
		t.Fatalf("expected a single compress call to fold multiple chunks when far over trigger, got %d summaries", len(sess.Summaries()))
	}
}

// TestCompressSummaryMonotonicity exercises the "Summary monotonicity"
// property: across repeated compression cycles, compressedCount and each
// summary block's To only ever advance, never regress.
func TestCompressSummaryMonotonicity(t *testing.T) {
	eng, sess := newTestEngine(t, &scriptedChat{})

	lastCompressed := sess.CompressedCount()
	lastTo := -1
	for cycle := 0; cycle < 5; cycle++ {
		appendUserAssistantPairs(sess, compressionChunk)
		eng.compress(sess)

		if sess.CompressedCount() < lastCompressed {
			t.Fatalf("cycle %d: compressedCount regressed from %d to %d", cycle, lastCompressed, sess.CompressedCount())
		}
		lastCompressed = sess.CompressedCount()

		if summaries := sess.Summaries(); len(summaries) > 0 {
			latest := summaries[len(summaries)-1].To
			if latest < lastTo {
				t.Fatalf("cycle %d: newest summary block To regressed from %d to %d", cycle, lastTo, latest)
			}
			lastTo = latest
		}
	}
}

func TestCompressIsNoOpBelowTrigger(t *testing.T) {
	eng, sess := newTestEngine(t, &scriptedChat{})
	appendUserAssistantPairs(sess, compressionTrigger/4)

	eng.compress(sess)

	if sess.CompressedCount() != 0 {
		t.Fatalf("expected compressedCount to stay 0 below the trigger, got %d", sess.CompressedCount())
	}
	if len(sess.Summaries()) != 0 {
		t.Fatalf("expected no summary blocks below the trigger, got %d", len(sess.Summaries()))
	}
}
