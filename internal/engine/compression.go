package engine

import (
	"strings"

	"github.com/sworddut/myclaw/internal/eventbus"
	"github.com/sworddut/myclaw/internal/session"
)

const summaryLineMaxChars = 180

// compress runs spec.md §4.3's sliding-window compression: while the
// non-system backlog exceeds compressionTrigger messages past
// compressedCount, fold the next compressionChunk messages into a
// SummaryBlock and advance compressedCount. Loops because a single
// burst of appended messages (e.g. a resumed session) may require
// several successive summary blocks.
func (e *Engine) compress(sess *session.Session) {
	for sess.MessageCount()-sess.CompressedCount() > compressionTrigger {
		messages := sess.Messages()
		from := sess.CompressedCount()
		to := from + compressionChunk - 1
		if to >= len(messages) {
			to = len(messages) - 1
		}
		chunk := messages[from : to+1]

		content := summarizeChunk(chunk)
		block := session.SummaryBlock{From: from, To: to, Content: content}
		if err := sess.AppendSummary(block); err != nil {
			e.log.Error("compression produced an invalid summary block: %v", err)
			return
		}
		e.Bus.Publish(eventbus.NewSummary(sess.ID, from, to, content))
	}
}

// summarizeChunk produces the plain-text summary spec.md §4.3 describes:
// the last three user intents, last three assistant actions, and last
// five tool results from the chunk, each one-lined and truncated.
func summarizeChunk(chunk []session.Message) string {
	var users, assistants, tools []string
	for _, m := range chunk {
		line := oneLine(m.Content)
		switch m.Role {
		case session.RoleUser:
			users = append(users, line)
		case session.RoleAssistant:
			assistants = append(assistants, line)
		case session.RoleTool:
			tools = append(tools, line)
		}
	}

	var b strings.Builder
	writeTail(&b, "User", users, 3)
	writeTail(&b, "Assistant", assistants, 3)
	writeTail(&b, "Tool", tools, 5)
	return strings.TrimSpace(b.String())
}

func writeTail(b *strings.Builder, label string, lines []string, n int) {
	start := len(lines) - n
	if start < 0 {
		start = 0
	}
	for _, line := range lines[start:] {
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > summaryLineMaxChars {
		s = s[:summaryLineMaxChars]
	}
	return s
}
