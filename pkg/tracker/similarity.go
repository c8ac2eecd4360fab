package tracker

import (
	"strings"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/models"
)

// FindSimilar returns an open issue for host whose title overlaps
// candidateTitle by more than half of the candidate's tokens (§4.6:
// "the fraction of candidate tokens present in the other title exceeds
// 0.5"). This is intentionally asymmetric — unlike the executor's
// Jaccard dedup — matching original_source/issue_tracker.py's
// find_similar_issue keyword-overlap check.
func (t *Tracker) FindSimilar(host, candidateTitle string) (models.Issue, bool) {
	candidateWords := titleTokens(candidateTitle)
	if len(candidateWords) == 0 {
		return models.Issue{}, false
	}

	for _, issue := range t.List(Filter{Host: host, Status: models.IssueOpen}) {
		existingWords := titleTokens(issue.Title)
		overlap := 0
		for w := range candidateWords {
			if existingWords[w] {
				overlap++
			}
		}
		if float64(overlap)/float64(len(candidateWords)) > 0.5 {
			return issue, true
		}
	}

	return models.Issue{}, false
}

func titleTokens(s string) map[string]bool {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// AutoResolveIfFixed resolves every open issue for host whose title and
// description tokens no longer appear (whole-word, case-insensitive) in
// any of currentlyDetected. Returns the count resolved.
func (t *Tracker) AutoResolveIfFixed(host string, currentlyDetected []string) (int, error) {
	detected := make([]string, len(currentlyDetected))
	for i, d := range currentlyDetected {
		detected[i] = strings.ToLower(d)
	}

	resolved := 0
	for _, issue := range t.List(Filter{Host: host, Status: models.IssueOpen}) {
		if stillDetected(issue, detected) {
			continue
		}
		if err := t.Resolve(issue.ID, "problem no longer detected"); err != nil {
			return resolved, err
		}
		resolved++
	}
	return resolved, nil
}

// stillDetected reports whether any token of issue's title or
// description still appears, whole-word, in any detected string.
func stillDetected(issue models.Issue, detected []string) bool {
	words := titleTokens(issue.Title + " " + issue.Description)
	for word := range words {
		for _, d := range detected {
			if containsWord(d, word) {
				return true
			}
		}
	}
	return false
}

func containsWord(haystack, word string) bool {
	for _, tok := range strings.Fields(haystack) {
		if tok == word {
			return true
		}
	}
	return false
}
