package dialogue

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/janseva/janseva/internal/retrieval"
)

// Citizens state facts about themselves in passing ("main 65 saal ki vidhwa
// hoon"). These patterns pull those facts into the session profile so a
// later eligibility check has something to work with. A later statement
// overwrites an earlier one; fields never mentioned stay zero.

var (
	ageStatedRe = regexp.MustCompile(`(\d{1,3})\s*(?:years?\s+old|saal|sal|varsh|साल|वर्ष)`)
	ageLeadRe   = regexp.MustCompile(`(?:age|umar|umr|उम्र)\D{0,8}?(\d{1,3})`)
	incomeRe    = regexp.MustCompile(`(?:income|salary|aamdani|kamai|आय|आमदनी|कमाई)\D{0,24}?([\d,]+(?:\.\d+)?)\s*(lakh|lac|lakhs|लाख|crore|करोड़)?`)
	landRe      = regexp.MustCompile(`([\d.]+)\s*(?:acres?|ekad|ekar|एकड़)`)
)

// femaleWords are checked before maleWords; "female" contains "male".
var (
	femaleWords = []string{
		"vidhwa", "widow", "विधवा", "mahila", "महिला", "aurat", "औरत",
		"female", "woman", "ladki", "लड़की",
	}
	maleWords = []string{"purush", "पुरुष", "aadmi", "आदमी", "male"}
)

var occupationWords = []struct {
	word       string
	occupation string
}{
	{"kisan", "farmer"}, {"किसान", "farmer"}, {"farmer", "farmer"}, {"kheti", "farmer"},
	{"mazdoor", "labourer"}, {"मजदूर", "labourer"}, {"labourer", "labourer"}, {"laborer", "labourer"},
	{"vidyarthi", "student"}, {"विद्यार्थी", "student"}, {"chhatra", "student"}, {"छात्र", "student"}, {"student", "student"},
	{"shikshak", "teacher"}, {"शिक्षक", "teacher"}, {"teacher", "teacher"},
}

var stateNames = []struct {
	word  string
	state string
}{
	{"uttar pradesh", "Uttar Pradesh"}, {"उत्तर प्रदेश", "Uttar Pradesh"},
	{"madhya pradesh", "Madhya Pradesh"}, {"मध्य प्रदेश", "Madhya Pradesh"},
	{"andhra pradesh", "Andhra Pradesh"}, {"आंध्र प्रदेश", "Andhra Pradesh"},
	{"maharashtra", "Maharashtra"}, {"महाराष्ट्र", "Maharashtra"},
	{"bihar", "Bihar"}, {"बिहार", "Bihar"},
	{"rajasthan", "Rajasthan"}, {"राजस्थान", "Rajasthan"},
	{"gujarat", "Gujarat"}, {"गुजरात", "Gujarat"},
	{"karnataka", "Karnataka"}, {"कर्नाटक", "Karnataka"},
	{"tamil nadu", "Tamil Nadu"}, {"तमिलनाडु", "Tamil Nadu"},
	{"west bengal", "West Bengal"}, {"पश्चिम बंगाल", "West Bengal"},
	{"telangana", "Telangana"}, {"तेलंगाना", "Telangana"},
	{"kerala", "Kerala"}, {"केरल", "Kerala"},
	{"punjab", "Punjab"}, {"पंजाब", "Punjab"},
	{"haryana", "Haryana"}, {"हरियाणा", "Haryana"},
	{"odisha", "Odisha"}, {"ओडिशा", "Odisha"},
	{"jharkhand", "Jharkhand"}, {"झारखंड", "Jharkhand"},
	{"chhattisgarh", "Chhattisgarh"}, {"छत्तीसगढ़", "Chhattisgarh"},
	{"assam", "Assam"}, {"असम", "Assam"},
	{"delhi", "Delhi"}, {"दिल्ली", "Delhi"},
}

// absorbProfile updates the profile with any personal facts found in the
// utterance. Unrecognized text leaves the profile untouched.
func absorbProfile(p *retrieval.Profile, utterance string) {
	lower := strings.ToLower(utterance)

	if m := ageLeadRe.FindStringSubmatch(lower); m != nil {
		setAge(p, m[1])
	} else if m := ageStatedRe.FindStringSubmatch(lower); m != nil {
		setAge(p, m[1])
	}

	if m := incomeRe.FindStringSubmatch(lower); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			switch m[2] {
			case "lakh", "lac", "lakhs", "लाख":
				v *= 100_000
			case "crore", "करोड़":
				v *= 10_000_000
			}
			p.AnnualIncome = int64(v)
		}
	}

	if containsWord(lower, femaleWords) {
		p.Gender = "female"
	} else if containsWord(lower, maleWords) {
		p.Gender = "male"
	}

	for _, ow := range occupationWords {
		if strings.Contains(lower, ow.word) {
			p.Occupation = ow.occupation
			break
		}
	}

	for _, sn := range stateNames {
		if strings.Contains(lower, sn.word) {
			p.State = sn.state
			break
		}
	}

	if m := landRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			p.LandAcres = v
		}
	}
}

func setAge(p *retrieval.Profile, digits string) {
	if n, err := strconv.Atoi(digits); err == nil && n > 0 && n <= 120 {
		p.Age = n
	}
}
