package enhancements

import (
	"sort"
	"strings"
	"unicode"
)

// Analysis is the rule-based keyword comparison stored with an enhancement.
// It is computed once at creation and never touches the generator.
type Analysis struct {
	Score   int      `json:"score"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

const maxJobKeywords = 30

// Common English plus job-posting boilerplate. Tokens here never count as
// keywords.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "an": {}, "to": {}, "of": {}, "in": {},
	"on": {}, "for": {}, "with": {}, "is": {}, "are": {}, "was": {}, "be": {},
	"as": {}, "at": {}, "by": {}, "or": {}, "we": {}, "you": {}, "your": {},
	"our": {}, "will": {}, "have": {}, "has": {}, "this": {}, "that": {},
	"from": {}, "it": {}, "its": {}, "their": {}, "they": {}, "them": {},
	"these": {}, "those": {}, "can": {}, "should": {}, "must": {}, "about": {},
	"into": {}, "over": {}, "under": {}, "per": {}, "than": {}, "able": {},
	"etc": {}, "role": {}, "work": {}, "working": {}, "team": {}, "teams": {},
	"job": {}, "candidate": {}, "candidates": {}, "years": {}, "year": {},
	"strong": {}, "plus": {}, "preferred": {}, "required": {},
	"requirements": {}, "responsibilities": {}, "qualifications": {},
	"skills": {}, "ability": {}, "including": {}, "include": {},
	"includes": {}, "looking": {}, "join": {}, "help": {}, "new": {},
	"using": {}, "use": {}, "used": {}, "well": {}, "within": {},
	"also": {}, "both": {}, "each": {}, "any": {}, "all": {}, "who": {},
	"what": {}, "when": {}, "where": {}, "how": {}, "while": {}, "more": {},
	"other": {}, "across": {}, "least": {}, "during": {}, "like": {},
	"experience": {}, "knowledge": {}, "excellent": {}, "related": {},
}

// AnalyzeJob compares the resume text against keywords extracted from the job
// description. Deterministic: same inputs, same output, lists sorted.
func AnalyzeJob(resumeText, jobText string) Analysis {
	keywords := jobKeywords(jobText)
	return matchKeywords(resumeText, keywords)
}

// AnalyzeIndustry compares the resume text against the industry profile's
// focus keywords.
func AnalyzeIndustry(resumeText string, profile IndustryProfile) Analysis {
	return matchKeywords(resumeText, profile.Keywords)
}

func matchKeywords(resumeText string, keywords []string) Analysis {
	// Leading and trailing spaces make word-boundary matching a plain
	// substring check, for multi-word keywords too.
	normalized := " " + normalizeText(resumeText) + " "
	var matched, missing []string
	for _, kw := range keywords {
		if strings.Contains(normalized, " "+normalizeText(kw)+" ") {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	score := 0
	if len(keywords) > 0 {
		score = (len(matched)*100 + len(keywords)/2) / len(keywords)
	}
	return Analysis{Score: score, Matched: matched, Missing: missing}
}

// jobKeywords ranks distinct meaningful tokens by frequency, ties broken
// alphabetically, and keeps the top maxJobKeywords.
func jobKeywords(jobText string) []string {
	counts := make(map[string]int)
	for _, tok := range tokenize(jobText) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if len(tok) < 2 {
			continue
		}
		counts[tok]++
	}

	keywords := make([]string, 0, len(counts))
	for tok := range counts {
		keywords = append(keywords, tok)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > maxJobKeywords {
		keywords = keywords[:maxJobKeywords]
	}
	return keywords
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		// '+' and '#' stay so c++ and c# survive tokenization.
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

func normalizeText(s string) string {
	return strings.Join(tokenize(s), " ")
}
