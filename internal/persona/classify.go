package persona

import (
	"strings"
	"unicode"
)

// organizationPhrases mark a restatement that still describes a business
// rather than one person. Matched case-insensitively as substrings.
var organizationPhrases = []string{
	"this business",
	"this company",
	"the company",
	"this organization",
	"the organization",
	"this organisation",
	"the organisation",
	"this startup",
	"the startup",
	"this firm",
	"the firm",
	"this agency",
	"they provide",
	"they offer",
	"we provide",
	"we offer",
	"our company",
	"our team",
	"our mission",
}

// businessKeywords mark a seed that describes an organization. Matched
// against whole words.
var businessKeywords = map[string]bool{
	"business":      true,
	"businesses":    true,
	"company":       true,
	"companies":     true,
	"startup":       true,
	"startups":      true,
	"organization":  true,
	"organisation":  true,
	"nonprofit":     true,
	"firm":          true,
	"agency":        true,
	"corporation":   true,
	"enterprise":    true,
	"inc":           true,
	"llc":           true,
	"ltd":           true,
	"brand":         true,
	"manufacturer":  true,
	"retailer":      true,
	"provider":      true,
	"institution":   true,
	"cooperative":   true,
	"consultancy":   true,
	"franchise":     true,
	"subsidiary":    true,
	"conglomerate":  true,
	"partnership":   true,
	"establishment": true,
}

// fallbackRoles are the person nouns used when a business seed has to be
// turned into an individual without help from the service.
var fallbackRoles = []string{
	"founder",
	"manager",
	"director",
	"owner",
	"operations lead",
	"consultant",
}

type titleRule struct {
	keywords []string
	title    string
}

// titleRules infer a coarse professional title; first match wins.
var titleRules = []titleRule{
	{[]string{"teacher", "professor", "educator", "tutor", "lecturer"}, "Educator"},
	{[]string{"engineer", "developer", "programmer", "software", "data scientist"}, "Tech Professional"},
	{[]string{"doctor", "nurse", "physician", "surgeon", "therapist", "pharmacist"}, "Healthcare Professional"},
	{[]string{"designer", "artist", "writer", "musician", "photographer"}, "Creative Professional"},
	{[]string{"researcher", "scientist", "biologist", "chemist", "physicist"}, "Researcher"},
	{[]string{"lawyer", "attorney", "paralegal", "judge"}, "Legal Professional"},
	{[]string{"accountant", "analyst", "banker", "financial"}, "Finance Professional"},
	{[]string{"marketing", "sales", "advertising"}, "Marketing Professional"},
	{[]string{"manager", "executive", "director", "founder", "entrepreneur", "owner"}, "Business Leader"},
	{[]string{"student", "graduate", "undergraduate"}, "Student"},
	{[]string{"chef", "cook", "baker", "barista"}, "Culinary Professional"},
	{[]string{"farmer", "rancher", "grower"}, "Agricultural Professional"},
}

const defaultTitle = "Professional"

// DescribesOrganization reports whether text reads as a business description.
func DescribesOrganization(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range organizationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// HasBusinessKeyword reports whether any word in text is a business keyword.
func HasBusinessKeyword(text string) bool {
	for _, word := range words(text) {
		if businessKeywords[word] {
			return true
		}
	}
	return false
}

// InferTitle maps profession keywords in text to a coarse title. Keywords
// match whole words, or a run of words for phrases such as "data scientist";
// a plural final word also matches.
func InferTitle(text string) string {
	tokens := words(text)
	for _, rule := range titleRules {
		for _, kw := range rule.keywords {
			if containsPhrase(tokens, strings.Fields(kw)) {
				return rule.title
			}
		}
	}
	return defaultTitle
}

func containsPhrase(tokens, phrase []string) bool {
	n := len(phrase)
	if n == 0 {
		return false
	}
	for i := 0; i+n <= len(tokens); i++ {
		match := true
		for j, p := range phrase {
			tok := tokens[i+j]
			if tok == p || (j == n-1 && (tok == p+"s" || tok == p+"es")) {
				continue
			}
			match = false
			break
		}
		if match {
			return true
		}
	}
	return false
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
