package util

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// KeyDetails is a best-effort reading of a job posting. The heuristics are
// plain keyword and pattern matches and miss anything phrased differently.
type KeyDetails struct {
	Seniority       string   `json:"seniority,omitempty"`
	MinYears        int      `json:"min_years,omitempty"`
	Skills          []string `json:"skills"`
	Remote          bool     `json:"remote"`
	EmploymentTypes []string `json:"employment_types"`
}

var (
	experienceRegex = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:\+|plus)?\s*(?:-\s*\d{1,2}\s*)?(?:years?|yrs?|yoe)\b`)
	seniorityRegex  = regexp.MustCompile(`(?i)\b(intern|junior|entry[\s-]?level|graduate|mid[\s-]?level|senior|staff|principal|lead|head of|director)\b`)
	remoteRegex     = regexp.MustCompile(`(?i)\b(remote|work from home|wfh|distributed team)\b`)
	employmentRegex = regexp.MustCompile(`(?i)\b(full[\s-]?time|part[\s-]?time|contract|freelance|internship|temporary)\b`)

	skillPatterns = map[string]*regexp.Regexp{
		"Go":         regexp.MustCompile(`\b(Go|Golang|golang)\b`),
		"Python":     regexp.MustCompile(`(?i)\bpython\b`),
		"Java":       regexp.MustCompile(`(?i)\bjava\b`),
		"JavaScript": regexp.MustCompile(`(?i)\b(javascript|node\.?js)\b`),
		"TypeScript": regexp.MustCompile(`(?i)\btypescript\b`),
		"React":      regexp.MustCompile(`(?i)\breact\b`),
		"SQL":        regexp.MustCompile(`(?i)\b(sql|postgres(ql)?|mysql)\b`),
		"AWS":        regexp.MustCompile(`(?i)\b(aws|amazon web services)\b`),
		"GCP":        regexp.MustCompile(`(?i)\b(gcp|google cloud)\b`),
		"Azure":      regexp.MustCompile(`(?i)\bazure\b`),
		"Docker":     regexp.MustCompile(`(?i)\bdocker\b`),
		"Kubernetes": regexp.MustCompile(`(?i)\b(kubernetes|k8s)\b`),
		"REST":       regexp.MustCompile(`(?i)\b(rest(ful)?\s*apis?)\b`),
		"gRPC":       regexp.MustCompile(`(?i)\bgrpc\b`),
		"LLM":        regexp.MustCompile(`(?i)\b(llms?|large language models?)\b`),
	}
)

// ExtractKeyDetails scans job text for seniority, years of experience, skills,
// remote work and employment type mentions.
func ExtractKeyDetails(text string) KeyDetails {
	d := KeyDetails{
		Skills:          []string{},
		EmploymentTypes: []string{},
	}

	if m := seniorityRegex.FindStringSubmatch(text); m != nil {
		d.Seniority = normalizeKeyword(m[1])
	}

	for _, m := range experienceRegex.FindAllStringSubmatch(text, -1) {
		years, err := strconv.Atoi(m[1])
		if err != nil || years == 0 || years > 40 {
			continue
		}
		if d.MinYears == 0 || years < d.MinYears {
			d.MinYears = years
		}
	}

	for name, re := range skillPatterns {
		if re.MatchString(text) {
			d.Skills = append(d.Skills, name)
		}
	}
	sort.Strings(d.Skills)

	d.Remote = remoteRegex.MatchString(text)

	seen := map[string]bool{}
	for _, m := range employmentRegex.FindAllStringSubmatch(text, -1) {
		kind := normalizeKeyword(m[1])
		if !seen[kind] {
			seen[kind] = true
			d.EmploymentTypes = append(d.EmploymentTypes, kind)
		}
	}
	return d
}

func normalizeKeyword(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "-", "--", "-").Replace(s)
	return s
}
