package matcher

import (
	"log/slog"
	"math"
	"strconv"

	"audiopilot/internal/logging"
	"audiopilot/internal/naming"
	"audiopilot/internal/room"
)

// Matcher resolves filenames against room entries.
type Matcher struct {
	policy Policy
	logger *slog.Logger
}

// New builds a Matcher. A nil logger discards decision logs.
func New(policy Policy, logger *slog.Logger) *Matcher {
	return &Matcher{
		policy: policy.normalized(),
		logger: logging.NewComponentLogger(logger, "matcher"),
	}
}

// Policy returns the effective thresholds.
func (m *Matcher) Policy() Policy {
	return m.policy
}

// Match resolves filename to an entry of roomID.
func (m *Matcher) Match(filename, roomID string, ids []room.Identity) Match {
	lang, ok := naming.ExtractLanguage(filename)
	if !ok {
		m.logDecision(filename, MatchNone, "no_language_suffix")
		return noMatch(filename, "")
	}

	token, _ := naming.TrailingToken(filename)
	numeric := naming.IsNumeric(token)
	part := naming.SlugPart(filename, roomID)

	if numeric {
		if n, err := strconv.Atoi(token); err == nil {
			if c, ok := resolveIndex(n, ids); ok {
				return m.accept(filename, roomID, lang, c)
			}
		}
	} else if c, ok := exactStrategy(filename, roomID, ids, lang); ok {
		return m.accept(filename, roomID, lang, c)
	}

	var guesses []candidate
	if !numeric {
		if c, ok := slugStrategy(part, ids); ok {
			if c.Score > m.policy.SlugThreshold {
				return m.accept(filename, roomID, lang, c)
			}
			guesses = append(guesses, c)
		}
	}
	if c, ok := indexStrategy(part, ids); ok {
		if c.Score > m.policy.IndexThreshold {
			return m.accept(filename, roomID, lang, c)
		}
		guesses = append(guesses, c)
	}
	if c, ok := levenshteinStrategy(filename, roomID, ids, lang); ok {
		if c.Score >= m.policy.MinAutoFix {
			return m.accept(filename, roomID, lang, c)
		}
		guesses = append(guesses, c)
	}

	if len(guesses) == 0 {
		m.logDecision(filename, MatchNone, "no_candidates")
		return noMatch(filename, lang)
	}
	best := guesses[0]
	for _, g := range guesses[1:] {
		if g.Score > best.Score {
			best = g
		}
	}
	out := m.build(filename, roomID, lang, best)
	out.RequiresHumanReview = true
	m.logDecision(filename, best.MatchType, "best_guess_"+best.Reason)
	return out
}

func (m *Matcher) accept(filename, roomID string, lang naming.Language, c candidate) Match {
	out := m.build(filename, roomID, lang, c)
	out.RequiresHumanReview = c.Score < m.policy.MinAutoFix
	m.logDecision(filename, c.MatchType, c.Reason)
	return out
}

func (m *Matcher) build(filename, roomID string, lang naming.Language, c candidate) Match {
	return Match{
		Filename: filename,
		Language: lang,
		MatchedEntry: &EntryRef{
			Slug:  c.Identity.Label(),
			Token: c.Identity.Token(),
			Index: c.Identity.Position,
		},
		Confidence:         int(math.Round(c.Score * 100)),
		MatchType:          c.MatchType,
		SuggestedCanonical: c.Identity.Pair(roomID).For(lang),
	}
}

func (m *Matcher) logDecision(filename string, matchType MatchType, reason string) {
	attrs := logging.DecisionAttrs("audio_match", matchType.String(), reason)
	attrs = append(attrs, logging.String("filename", filename))
	m.logger.Debug("audio match evaluated", logging.Args(attrs...)...)
}

// Batch partitions orphan matches.
type Batch struct {
	AutoRepairs []Match `json:"autoRepairs"`
	HumanReview []Match `json:"humanReview"`
}

// BatchMatchOrphans matches every file. A match lands in AutoRepairs only
// when it resolved an entry with enough confidence and needs no review;
// everything else goes to HumanReview.
func (m *Matcher) BatchMatchOrphans(files []string, roomID string, ids []room.Identity) Batch {
	batch := Batch{AutoRepairs: []Match{}, HumanReview: []Match{}}
	for _, file := range files {
		match := m.Match(file, roomID, ids)
		if match.Matched() && match.Confidence >= m.policy.AutoRepairConfidence && !match.RequiresHumanReview {
			batch.AutoRepairs = append(batch.AutoRepairs, match)
			continue
		}
		batch.HumanReview = append(batch.HumanReview, match)
	}
	return batch
}
