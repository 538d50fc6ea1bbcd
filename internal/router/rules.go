package router

import (
	"sort"
	"strings"

	"github.com/pkordes/case-gallery/internal/domain"
)

// Rule is one address pattern under the gallery base. Pattern segments
// wrapped in braces are captures: {slug}, {case}, {term}, {n}.
type Rule struct {
	Name     string
	Pattern  string
	Priority int
	View     domain.ViewType

	segs []string
}

type ruleMatch struct {
	view     domain.ViewType
	slug     string
	caseSlug string
	term     string
	page     int
}

func newRule(base, name string, priority int, view domain.ViewType, pattern ...string) Rule {
	p := "/" + base + "/"
	if len(pattern) > 0 {
		p += strings.Join(pattern, "/") + "/"
	}
	return Rule{Name: name, Pattern: p, Priority: priority, View: view, segs: pattern}
}

func favoritesRule(base string) Rule {
	return newRule(base, "favorites", 100, domain.ViewFavorites, segFavorites)
}

// virtualRules returns the virtual rule set sorted by descending priority.
func virtualRules(base string) []Rule {
	rules := []Rule{
		favoritesRule(base),
		newRule(base, "search-paged", 90, domain.ViewSearch, segSearch, "{term}", segPage, "{n}"),
		newRule(base, "search", 85, domain.ViewSearch, segSearch, "{term}"),
		newRule(base, "index-paged", 80, domain.ViewIndex, segPage, "{n}"),
		newRule(base, "taxonomy-paged", 70, domain.ViewTaxonomy, "{slug}", segPage, "{n}"),
		newRule(base, "single", 60, domain.ViewSingle, "{slug}", "{case}"),
		newRule(base, "taxonomy", 50, domain.ViewTaxonomy, "{slug}"),
		newRule(base, "index", 10, domain.ViewIndex),
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority > rules[j].Priority })
	return rules
}

// matchRules returns the first rule, in slice order, that matches segs.
func matchRules(rules []Rule, segs []string) (ruleMatch, bool) {
	for _, rule := range rules {
		if m, ok := rule.match(segs); ok {
			return m, true
		}
	}
	return ruleMatch{}, false
}

func (rule Rule) match(segs []string) (ruleMatch, bool) {
	if len(segs) != len(rule.segs) {
		return ruleMatch{}, false
	}
	m := ruleMatch{view: rule.View, page: 1}
	for i, want := range rule.segs {
		got := segs[i]
		switch want {
		case "{slug}":
			if IsReserved(got) {
				return ruleMatch{}, false
			}
			m.slug = got
		case "{case}":
			m.caseSlug = got
		case "{term}":
			m.term = got
		case "{n}":
			n, ok := parsePage(got)
			if !ok {
				return ruleMatch{}, false
			}
			m.page = n
		default:
			if got != want {
				return ruleMatch{}, false
			}
		}
	}
	return m, true
}

// IsReserved reports whether seg is a fixed first segment under the gallery
// base. A term with a reserved slug cannot be addressed in virtual mode.
func IsReserved(seg string) bool {
	switch seg {
	case segSearch, segPage, segFavorites:
		return true
	}
	return false
}
