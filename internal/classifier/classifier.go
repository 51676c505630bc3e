package classifier

import (
	"strings"

	"tracksuit_watcher/internal/domain"
)

// Rules holds the configured match sets. Entries are slices rather than maps:
// the team and brand scans try entries in order and the first match wins, so
// configuration order is the tie-break when a title mentions more than one.
type Rules struct {
	ForbiddenKeywords  []string `yaml:"forbidden_keywords"`
	AgeKeywords        []string `yaml:"age_keywords"`
	CompleteSetPhrases []string `yaml:"complete_set_phrases"`
	TopTerms           []string `yaml:"top_terms"`
	BottomTerms        []string `yaml:"bottom_terms"`
	AllowedSizes       []string `yaml:"allowed_sizes"`
	Teams              []string `yaml:"teams"`
	Brands             []string `yaml:"brands"`
	Conditions         []string `yaml:"conditions"`
}

// Classifier decides whether a listing is an approved complete adult
// tracksuit. It is pure: no I/O, no state, identical input gives an
// identical verdict.
type Classifier struct {
	forbidden []string
	phrases   []string
	tops      []string
	bottoms   []string
	age       []string
	teams     []string
	brands    []string
	sizes     map[string]struct{}
	conds     map[string]struct{}
}

func New(rules Rules) *Classifier {
	c := &Classifier{
		forbidden: lowerAll(append(append([]string{}, rules.ForbiddenKeywords...), rules.AgeKeywords...)),
		phrases:   lowerAll(rules.CompleteSetPhrases),
		tops:      lowerAll(rules.TopTerms),
		bottoms:   lowerAll(rules.BottomTerms),
		age:       lowerAll(rules.AgeKeywords),
		teams:     lowerAll(rules.Teams),
		brands:    lowerAll(rules.Brands),
		sizes:     make(map[string]struct{}, len(rules.AllowedSizes)),
		conds:     make(map[string]struct{}, len(rules.Conditions)),
	}
	for _, s := range rules.AllowedSizes {
		c.sizes[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	for _, cond := range rules.Conditions {
		c.conds[cond] = struct{}{}
	}
	return c
}

// Classify runs the rule pipeline over one listing. Rules short-circuit in a
// fixed order: forbidden keywords, set completeness, size, team, condition.
// The first failing rule decides the rejection reason.
func (c *Classifier) Classify(l domain.Listing) domain.Verdict {
	title := strings.ToLower(l.Title)
	desc := strings.ToLower(l.Description)

	if containsAny(title, c.forbidden) || containsAny(desc, c.forbidden) {
		return rejected(domain.ReasonForbiddenKeyword)
	}

	if !c.isCompleteSet(title, desc) {
		return rejected(domain.ReasonIncompleteSet)
	}

	if size := strings.ToUpper(strings.TrimSpace(l.Size)); size != "" {
		if containsAny(strings.ToLower(size), c.age) {
			return rejected(domain.ReasonSizeNotAllowed)
		}
		if _, ok := c.sizes[size]; !ok {
			return rejected(domain.ReasonSizeNotAllowed)
		}
	}

	team := firstMatch(title, desc, c.teams)
	if team == "" {
		return rejected(domain.ReasonTeamNotApproved)
	}

	if l.Condition != "" {
		if _, ok := c.conds[l.Condition]; !ok {
			return rejected(domain.ReasonConditionNotAcceptable)
		}
	}

	return domain.Verdict{
		Approved: true,
		Reason:   domain.ReasonValid,
		Team:     team,
		Brand:    c.Brand(l.Title, l.Description),
	}
}

// Brand extracts the first configured brand mentioned in the given text, or
// "" when none matches. Exposed separately so rejected items can still be
// persisted with a brand for inspection.
func (c *Classifier) Brand(title, description string) string {
	return firstMatch(strings.ToLower(title), strings.ToLower(description), c.brands)
}

// A listing is a complete set if any complete-set phrase appears, or failing
// that, if the title names both a garment top and a garment bottom.
func (c *Classifier) isCompleteSet(title, desc string) bool {
	if containsAny(title, c.phrases) || containsAny(desc, c.phrases) {
		return true
	}
	return containsAny(title, c.tops) && containsAny(title, c.bottoms)
}

func rejected(reason string) domain.Verdict {
	return domain.Verdict{Approved: false, Reason: reason}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// containsAny reports whether text contains any of the needles. Matching is
// plain substring containment, not word-boundary aware.
func containsAny(text string, needles []string) bool {
	if text == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func firstMatch(title, desc string, needles []string) string {
	for _, n := range needles {
		if strings.Contains(title, n) || strings.Contains(desc, n) {
			return n
		}
	}
	return ""
}
