package similarity

// Reference is a historical title a new candidate is scored against.
type Reference struct {
	ID    string
	Kind  string
	Title string
}

// Match reports the closest reference found for a candidate title.
type Match struct {
	ID    string
	Kind  string
	Score float64
}

// Nearest scores title against every reference and returns the best match.
// References are scanned in order and only a strictly greater score replaces
// the current best, so earlier references win ties. Returns a zero Match when
// the list is empty or nothing overlaps.
func Nearest(title string, refs []Reference) Match {
	candidate := Shingles(title)
	var best Match
	for _, ref := range refs {
		score := scoreSets(candidate, Shingles(ref.Title))
		if score > best.Score {
			best = Match{ID: ref.ID, Kind: ref.Kind, Score: score}
		}
	}
	return best
}
