package fingerprint

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// SessionColors is the palette for session groups and connection lines.
var SessionColors = []string{"red", "orange", "purple", "brown", "pink", "gray", "olive", "cyan"}

// SessionHex maps SessionColors to terminal/PNG colours.
var SessionHex = map[string]string{
	"red":    "#d62728",
	"orange": "#ff7f0e",
	"purple": "#9467bd",
	"brown":  "#8c564b",
	"pink":   "#e377c2",
	"gray":   "#7f7f7f",
	"olive":  "#bcbd22",
	"cyan":   "#17becf",
}

// Session is the matched points sharing one session id.
type Session struct {
	ID     int
	Points []Match
}

// GroupBySession groups matches by session id in order of first appearance.
// Matches without a session id belong to session 0.
func GroupBySession(matches []Match) []Session {
	var out []Session
	index := map[int]int{}
	for _, m := range matches {
		id := m.SessionID()
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, Session{ID: id})
		}
		out[i].Points = append(out[i].Points, m)
	}
	return out
}

// HasSessions reports whether the first match carries a session id; the
// plots then colour matches per session instead of in one colour.
func HasSessions(matches []Match) bool {
	return len(matches) > 0 && matches[0].HasSession
}

// SessionID is the session of m, 0 when absent.
func (m Match) SessionID() int {
	if !m.HasSession {
		return 0
	}
	return m.Session
}

// GroupColor is the colour of the i-th session group.
func GroupColor(i int) string {
	return SessionColors[mod(i, len(SessionColors))]
}

// ConnectionColor is the colour of connection lines for a session id.
func ConnectionColor(sessionID int) string {
	return SessionColors[mod(sessionID, len(SessionColors))]
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

// SessionScore is a session present in both source and query, with the
// number of source points that have a same-hash partner in the query.
type SessionScore struct {
	ID      int
	Matches int
}

// TopSessions ranks the sessions common to source and query by hash matches
// and returns at most n of them. Ties go to the lower session id.
func TopSessions(source, query []Match, n int) []SessionScore {
	src := lo.SliceToMap(GroupBySession(source), func(s Session) (int, []Match) { return s.ID, s.Points })
	qry := lo.SliceToMap(GroupBySession(query), func(s Session) (int, []Match) { return s.ID, s.Points })

	common := lo.Filter(lo.Keys(src), func(id int, _ int) bool {
		_, ok := qry[id]
		return ok
	})

	scores := lo.Map(common, func(id int, _ int) SessionScore {
		return SessionScore{ID: id, Matches: countHashMatches(src[id], qry[id])}
	})
	slices.SortFunc(scores, func(a, b SessionScore) int {
		if c := cmp.Compare(b.Matches, a.Matches); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if n >= 0 && len(scores) > n {
		scores = scores[:n]
	}
	return scores
}

func countHashMatches(source, query []Match) int {
	hashes := lo.SliceToMap(lo.Filter(query, func(m Match, _ int) bool { return m.Hash != "" }),
		func(m Match) (string, struct{}) { return m.Hash, struct{}{} })
	return lo.CountBy(source, func(m Match) bool {
		_, ok := hashes[m.Hash]
		return m.Hash != "" && ok
	})
}

// Connection joins a source match to the query match with the same hash.
type Connection struct {
	Session int
	Color   string
	Source  Match
	Query   Match
}

// Connections links every source point of the top n sessions to the first
// query point of the same session with the same hash.
func Connections(source, query []Match, n int) []Connection {
	if len(source) == 0 || len(query) == 0 {
		return nil
	}
	src := lo.SliceToMap(GroupBySession(source), func(s Session) (int, []Match) { return s.ID, s.Points })
	qry := lo.SliceToMap(GroupBySession(query), func(s Session) (int, []Match) { return s.ID, s.Points })

	var out []Connection
	for _, top := range TopSessions(source, query, n) {
		for _, sp := range src[top.ID] {
			if sp.Hash == "" {
				continue
			}
			qp, ok := lo.Find(qry[top.ID], func(m Match) bool { return m.Hash == sp.Hash })
			if !ok {
				continue
			}
			out = append(out, Connection{
				Session: top.ID,
				Color:   ConnectionColor(top.ID),
				Source:  sp,
				Query:   qp,
			})
		}
	}
	return out
}
