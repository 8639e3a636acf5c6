// Package similarity scores how close two candidate titles are using
// character bigram Jaccard overlap.
//
// Titles are normalized before comparison: full-width punctuation is folded,
// text is lowercased, and whitespace plus common CJK and ASCII punctuation is
// stripped. The surviving runes form overlapping two-character shingles; the
// score is the Jaccard index of the two shingle sets. Short titles that fit
// inside a single shingle compare as whole strings.
//
// Scores are advisory. Callers record the verdict alongside the candidate
// rather than silently discarding near-duplicates.
package similarity
