package object

import (
	"fmt"
	"time"
)

// Signature identifies an author, committer, or tagger.
type Signature struct {
	Name  string
	Email string
}

// render formats the identity line the way git does: "Name <email> <unix>
// <zone>". Dates are stored UTC and truncated to seconds, so the zone
// column is always +0000.
func (s Signature) render(when time.Time) string {
	return fmt.Sprintf("%s <%s> %d +0000", s.Name, s.Email, when.Unix())
}

// normalizeDate converts a date to the canonical form embedded in commit
// and tag encodings: UTC, whole seconds.
func normalizeDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
