package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// pastTenseVerbs are leading verbs that mark a task as already phrased as
// an accomplishment.
var pastTenseVerbs = []string{
	"completed", "finished", "worked", "assisted", "participated", "attended",
	"prepared", "reviewed", "updated", "fixed", "added", "modified",
	"coordinated", "supported", "delivered", "documented", "analyzed",
	"designed", "tested", "deployed", "created", "developed", "implemented",
	"wrote", "built", "met", "discussed", "presented", "organized", "managed",
	"led", "conducted", "performed", "executed",
}

// presentToPast maps leading present-tense verbs (or verb phrases) to their
// past tense.
var presentToPast = map[string]string{
	"do":          "did",
	"does":        "did",
	"create":      "created",
	"develop":     "developed",
	"implement":   "implemented",
	"complete":    "completed",
	"finish":      "finished",
	"work on":     "worked on",
	"work":        "worked",
	"assist":      "assisted",
	"participate": "participated",
	"attend":      "attended",
	"prepare":     "prepared",
	"review":      "reviewed",
	"update":      "updated",
	"fix":         "fixed",
	"add":         "added",
	"modify":      "modified",
	"coordinate":  "coordinated",
	"support":     "supported",
	"deliver":     "delivered",
	"document":    "documented",
	"analyze":     "analyzed",
	"design":      "designed",
	"test":        "tested",
	"deploy":      "deployed",
	"write":       "wrote",
	"build":       "built",
	"meet":        "met",
	"discuss":     "discussed",
	"present":     "presented",
	"organize":    "organized",
	"manage":      "managed",
	"lead":        "led",
	"conduct":     "conducted",
	"perform":     "performed",
	"execute":     "executed",
}

// RuleBasedRewrite converts a task to a past-tense accomplishment without a
// model: it swaps a known leading present-tense verb for its past tense,
// capitalizes the first letter, and ends sentences of more than three words
// with a period.
func RuleBasedRewrite(task string) string {
	task = strings.TrimSpace(task)
	if task == "" {
		return task
	}

	if !startsWithPastTense(task) {
		task = convertLeadingVerb(task)
	}

	task = capitalizeFirst(task)
	if !strings.HasSuffix(task, ".") && !strings.HasSuffix(task, "!") && !strings.HasSuffix(task, "?") &&
		len(strings.Fields(task)) > 3 {
		task += "."
	}
	return task
}

func startsWithPastTense(task string) bool {
	fields := strings.Fields(task)
	if len(fields) < 2 {
		return false
	}
	first := strings.ToLower(fields[0])
	for _, v := range pastTenseVerbs {
		if first == v {
			return true
		}
	}
	return false
}

// convertLeadingVerb replaces the longest matching present-tense prefix.
// A prefix only matches when followed by whitespace.
func convertLeadingVerb(task string) string {
	lower := strings.ToLower(task)
	best := ""
	for verb := range presentToPast {
		if len(verb) <= len(best) || !strings.HasPrefix(lower, verb) {
			continue
		}
		rest := task[len(verb):]
		if r, _ := utf8.DecodeRuneInString(rest); rest == "" || !unicode.IsSpace(r) {
			continue
		}
		best = verb
	}
	if best == "" {
		return task
	}
	rest := strings.TrimLeftFunc(task[len(best):], unicode.IsSpace)
	return presentToPast[best] + " " + rest
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
