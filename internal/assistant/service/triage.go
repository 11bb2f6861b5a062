package service

import "strings"

// emergencyKeywords short-circuit symptom analysis before any model call.
// Matching is plain substring on the lowercased symptom text.
var emergencyKeywords = []string{
	"chest pain",
	"difficulty breathing",
	"unconsciousness",
	"fainting",
	"heavy bleeding",
	"severe abdominal pain",
	"high fever",
	"pregnancy",
	"breathing difficulty",
	"cannot breathe",
}

// isEmergency applies the triage rules: a red-flag keyword, or severe
// symptoms at the vulnerable ends of the age range.
func isEmergency(symptoms string, age int, severity string) bool {
	lower := strings.ToLower(symptoms)
	for _, keyword := range emergencyKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	severe := strings.EqualFold(severity, "severe")
	return (age < 5 && severe) || (age > 65 && severe)
}
