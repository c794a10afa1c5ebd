package broker

import "strings"

const (
	SubjectPrefix = "minijira"

	// AllEvents matches every subject published by the outbox.
	AllEvents = SubjectPrefix + ".>"
)

// SubjectFor names the subject an entity's events for one team are published on,
// e.g. minijira.task.<team id>. Events without a team go to minijira.<entity>.global.
func SubjectFor(entity, teamID string) string {
	if teamID == "" {
		teamID = "global"
	}
	return strings.Join([]string{SubjectPrefix, entity, teamID}, ".")
}

// subjectMatches applies NATS wildcard rules: "*" matches one token, ">" the rest.
func subjectMatches(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, tok := range pt {
		if tok == ">" {
			return len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if tok != "*" && tok != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}
