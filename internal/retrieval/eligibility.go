package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/janseva/janseva/internal/language"
)

// Profile holds what the citizen has told us about themselves. Zero values
// mean unknown; criteria that need an unknown field are reported as
// unmatched rather than failing the check.
type Profile struct {
	Age          int     `json:"age,omitempty"`
	AnnualIncome int64   `json:"annual_income,omitempty"` // rupees
	State        string  `json:"state,omitempty"`
	Gender       string  `json:"gender,omitempty"` // "male", "female", "other"
	Occupation   string  `json:"occupation,omitempty"`
	LandAcres    float64 `json:"land_acres,omitempty"`
}

// EligibilityResult is an advisory verdict, never persisted.
type EligibilityResult struct {
	SchemeID    string   `json:"scheme_id"`
	Eligible    bool     `json:"eligible"`
	Matched     []string `json:"matched,omitempty"`
	Unmatched   []string `json:"unmatched,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// CheckEligibility evaluates the citizen's profile against the current
// eligibility criteria of a scheme. Criteria with a recognizable rule shape
// (income, age, land, gender, occupation, state) are compared
// deterministically; only free-text criteria are judged by the generator.
// The verdict requires every criterion to match.
func (r *Retriever) CheckEligibility(ctx context.Context, schemeID string, profile Profile, lang language.Language) (*EligibilityResult, error) {
	doc, err := r.searcher.GetCurrent(ctx, schemeID)
	if err != nil {
		return nil, err
	}

	// Rules are parsed from the English criteria; the Hindi lines are
	// translations of the same facts.
	criteria := doc.Eligibility.In(language.English)

	result := &EligibilityResult{SchemeID: schemeID, Eligible: true}
	var freeText []string

	for _, criterion := range criteria {
		verdict, ok := matchRule(criterion, profile)
		if !ok {
			freeText = append(freeText, criterion)
			continue
		}
		if verdict {
			result.Matched = append(result.Matched, criterion)
		} else {
			result.Unmatched = append(result.Unmatched, criterion)
			result.Eligible = false
		}
	}

	if len(freeText) > 0 && r.generator != nil {
		matched, unmatched, err := r.judgeFreeText(ctx, freeText, profile)
		if err != nil {
			// Advisory check stays useful on generator failure; the
			// unjudged criteria surface as unmatched-unknown.
			r.logger.Warn("generative eligibility judgment failed", "error", err)
			result.Unmatched = append(result.Unmatched, freeText...)
		} else {
			result.Matched = append(result.Matched, matched...)
			result.Unmatched = append(result.Unmatched, unmatched...)
			if len(unmatched) > 0 {
				result.Eligible = false
			}
		}
	} else if len(freeText) > 0 {
		result.Unmatched = append(result.Unmatched, freeText...)
	}

	name := doc.Name.In(lang)
	if result.Eligible {
		result.Explanation = fmt.Sprintf("%s: %d of %d criteria matched", name, len(result.Matched), len(criteria))
	} else {
		result.Explanation = fmt.Sprintf("%s: %d criteria not matched", name, len(result.Unmatched))
	}
	return result, nil
}

var (
	incomeBelowRe = regexp.MustCompile(`(?i)income\s+(?:below|under|less than|not exceeding|up to)\s+(?:rs\.?\s*)?([\d.]+)\s*(lakh|crore)?`)
	ageAboveRe    = regexp.MustCompile(`(?i)age\s+(?:above|over|at least|minimum)\s+(\d+)`)
	ageBelowRe    = regexp.MustCompile(`(?i)age\s+(?:below|under|at most|maximum)\s+(\d+)`)
	ageBetweenRe  = regexp.MustCompile(`(?i)age\s+(?:between\s+)?(\d+)\s*(?:to|-|and)\s*(\d+)`)
	landBelowRe   = regexp.MustCompile(`(?i)(?:land|landholding)\s+(?:below|under|up to|less than)\s+([\d.]+)\s*(?:acres?|hectares?)`)
)

// matchRule tries to interpret one criterion as a comparable rule against
// the profile. The second return is false when the criterion has no
// recognizable rule shape or the profile lacks the needed field.
func matchRule(criterion string, p Profile) (verdict, ok bool) {
	lower := strings.ToLower(criterion)

	if m := incomeBelowRe.FindStringSubmatch(criterion); m != nil && p.AnnualIncome > 0 {
		limit, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return false, false
		}
		switch strings.ToLower(m[2]) {
		case "lakh":
			limit *= 100_000
		case "crore":
			limit *= 10_000_000
		}
		return float64(p.AnnualIncome) < limit, true
	}

	if m := ageBetweenRe.FindStringSubmatch(criterion); m != nil && p.Age > 0 {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return p.Age >= lo && p.Age <= hi, true
	}
	if m := ageAboveRe.FindStringSubmatch(criterion); m != nil && p.Age > 0 {
		min, _ := strconv.Atoi(m[1])
		return p.Age >= min, true
	}
	if m := ageBelowRe.FindStringSubmatch(criterion); m != nil && p.Age > 0 {
		max, _ := strconv.Atoi(m[1])
		return p.Age <= max, true
	}

	if m := landBelowRe.FindStringSubmatch(criterion); m != nil && p.LandAcres > 0 {
		limit, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return false, false
		}
		return p.LandAcres <= limit, true
	}

	if strings.Contains(lower, "women") || strings.Contains(lower, "female") {
		if p.Gender == "" {
			return false, false
		}
		return p.Gender == "female", true
	}

	if strings.Contains(lower, "farmer") {
		if p.Occupation == "" {
			return false, false
		}
		return strings.Contains(strings.ToLower(p.Occupation), "farmer"), true
	}

	if strings.Contains(lower, "resident of ") && p.State != "" {
		idx := strings.Index(lower, "resident of ")
		wanted := strings.Trim(lower[idx+len("resident of "):], " .")
		return strings.EqualFold(wanted, p.State), true
	}

	return false, false
}

const eligibilityPromptFormat = `Given this citizen profile, judge each criterion.
Profile: %s
Criteria:
%s
Reply with one line per criterion, in order: "yes" if the profile satisfies it, "no" if it does not or you cannot tell. Nothing else.`

func (r *Retriever) judgeFreeText(ctx context.Context, criteria []string, p Profile) (matched, unmatched []string, err error) {
	var list strings.Builder
	for i, c := range criteria {
		fmt.Fprintf(&list, "%d. %s\n", i+1, c)
	}

	reply, err := r.generator.Generate(ctx,
		fmt.Sprintf(eligibilityPromptFormat, describeProfile(p), list.String()))
	if err != nil {
		return nil, nil, err
	}

	lines := nonEmptyLines(reply)
	if len(lines) != len(criteria) {
		return nil, nil, fmt.Errorf("expected %d verdicts, got %d", len(criteria), len(lines))
	}
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), "yes") {
			matched = append(matched, criteria[i])
		} else {
			unmatched = append(unmatched, criteria[i])
		}
	}
	return matched, unmatched, nil
}

func describeProfile(p Profile) string {
	var parts []string
	if p.Age > 0 {
		parts = append(parts, fmt.Sprintf("age %d", p.Age))
	}
	if p.AnnualIncome > 0 {
		parts = append(parts, fmt.Sprintf("annual income Rs %d", p.AnnualIncome))
	}
	if p.State != "" {
		parts = append(parts, "state "+p.State)
	}
	if p.Gender != "" {
		parts = append(parts, "gender "+p.Gender)
	}
	if p.Occupation != "" {
		parts = append(parts, "occupation "+p.Occupation)
	}
	if p.LandAcres > 0 {
		parts = append(parts, fmt.Sprintf("landholding %.1f acres", p.LandAcres))
	}
	if len(parts) == 0 {
		return "no details provided"
	}
	return strings.Join(parts, ", ")
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}
