// Package extract holds the deterministic text heuristics the conversation
// flows are built on. Every function here is pure: free text in, typed value
// plus an ok flag out. The flows depend on these exact matching semantics,
// so changes here must keep the package tests green.
package extract

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Answer is the result of yes/no parsing. Unknown must never advance a flow.
type Answer int

const (
	AnswerUnknown Answer = iota
	AnswerYes
	AnswerNo
)

var yesTokens = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "sure": true,
	"ok": true, "okay": true, "correct": true, "right": true, "true": true,
}

var noTokens = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true,
	"negative": true, "wrong": true, "false": true,
}

// ParseYesNo scans the message for a canonical yes or no token. The first
// recognized token wins.
func ParseYesNo(s string) Answer {
	for _, tok := range tokenize(s) {
		if yesTokens[tok] {
			return AnswerYes
		}
		if noTokens[tok] {
			return AnswerNo
		}
	}
	return AnswerUnknown
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TimeWindow is one of the four canonical training slots.
type TimeWindow struct {
	Name  string
	Start string
	End   string
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s (%s-%s)", w.Name, w.Start, w.End)
}

var (
	WindowMorning   = TimeWindow{Name: "morning", Start: "06:00", End: "10:00"}
	WindowAfternoon = TimeWindow{Name: "afternoon", Start: "12:00", End: "16:00"}
	WindowEvening   = TimeWindow{Name: "evening", Start: "17:00", End: "21:00"}
	WindowAfterWork = TimeWindow{Name: "after work", Start: "17:00", End: "20:00"}
)

var (
	meridiemRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clock24Re  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
)

// ParseClockTime pulls a time expression out of free text and normalizes it:
// clock times become "HH:MM" (24h), daypart words stay as words. The second
// return is false when no time expression is present.
func ParseClockTime(s string) (string, bool) {
	lower := strings.ToLower(s)

	if strings.Contains(lower, "after work") {
		return "after work", true
	}

	if m := meridiemRe.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 {
			if strings.EqualFold(m[3], "pm") && hour != 12 {
				hour += 12
			}
			if strings.EqualFold(m[3], "am") && hour == 12 {
				hour = 0
			}
			return fmt.Sprintf("%02d:%02d", hour, minute), true
		}
	}

	if m := clock24Re.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return fmt.Sprintf("%02d:%02d", hour, minute), true
		}
	}

	for _, word := range []string{"morning", "afternoon", "evening", "night"} {
		if strings.Contains(lower, word) {
			return word, true
		}
	}

	return "", false
}

// MapWindow converts a normalized time expression to its canonical window.
// Unparseable input defaults to the evening window.
func MapWindow(normalized string) TimeWindow {
	switch normalized {
	case "morning":
		return WindowMorning
	case "afternoon":
		return WindowAfternoon
	case "evening", "night":
		return WindowEvening
	case "after work":
		return WindowAfterWork
	}

	if m := clock24Re.FindStringSubmatch(normalized); m != nil {
		hour, _ := strconv.Atoi(m[1])
		switch {
		case hour >= 5 && hour < 12:
			return WindowMorning
		case hour >= 12 && hour < 17:
			return WindowAfternoon
		default:
			return WindowEvening
		}
	}

	return WindowEvening
}

const (
	cmPerFoot  = 30.48
	cmPerInch  = 2.54
	kgPerPound = 0.453592
)

var (
	heightCmRe     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:cm|centimeters?|centimetres?)\b`)
	heightMetersRe = regexp.MustCompile(`(?i)\b(\d(?:\.\d+)?)\s*(?:m|meters?|metres?)\b`)
	heightFeetRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:feet|foot|ft|')(?:\s*(?:and\s*)?(\d+(?:\.\d+)?)\s*(?:inches|inch|in|"))?`)
	bareNumberRe   = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*$`)
)

// ParseHeight extracts a height in centimeters from metric or imperial input.
// A bare number is resolved by magnitude: above 100 reads as centimeters,
// below 8 as feet.
func ParseHeight(s string) (float64, bool) {
	if m := heightCmRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v, true
	}
	if m := heightFeetRe.FindStringSubmatch(s); m != nil {
		feet, _ := strconv.ParseFloat(m[1], 64)
		inches := 0.0
		if m[2] != "" {
			inches, _ = strconv.ParseFloat(m[2], 64)
		}
		return feet*cmPerFoot + inches*cmPerInch, true
	}
	if m := heightMetersRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		if v >= 1 && v <= 2.5 {
			return v * 100, true
		}
	}
	if m := bareNumberRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		switch {
		case v > 100 && v < 260:
			return v, true
		case v > 0 && v < 8:
			return v * cmPerFoot, true
		}
	}
	return 0, false
}

var (
	weightKgRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:kg|kgs|kilos?|kilograms?)\b`)
	weightLbRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:lb|lbs|pounds?)\b`)
)

// ParseWeight extracts a weight in kilograms. Pounds convert at 0.453592.
// A bare number between 30 and 200 reads as kilograms; above that up to 500
// as pounds.
func ParseWeight(s string) (float64, bool) {
	if m := weightKgRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v, true
	}
	if m := weightLbRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v * kgPerPound, true
	}
	if m := bareNumberRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		switch {
		case v >= 30 && v <= 200:
			return v, true
		case v > 200 && v <= 500:
			return v * kgPerPound, true
		}
	}
	return 0, false
}

// BMI computes body mass index rounded to one decimal.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	meters := heightCm / 100
	return math.Round(weightKg/(meters*meters)*10) / 10
}

var namePrefixes = []string{
	"my name is", "my name's", "i am called", "you can call me",
	"call me", "i am", "i'm", "im", "it's", "its", "this is",
}

// ParseName pulls a person's name out of a reply, stripping common
// pleasantries. Up to two words are kept.
func ParseName(s string) (string, bool) {
	cleaned := strings.TrimSpace(s)
	lower := strings.ToLower(cleaned)
	for _, p := range namePrefixes {
		if strings.HasPrefix(lower, p+" ") {
			cleaned = strings.TrimSpace(cleaned[len(p):])
			break
		}
	}

	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return "", false
	}
	if len(words) > 2 {
		words = words[:2]
	}

	parts := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,!?")
		if w == "" {
			continue
		}
		for _, r := range w {
			if !unicode.IsLetter(r) && r != '-' && r != '\'' {
				return "", false
			}
		}
		if yesTokens[strings.ToLower(w)] || noTokens[strings.ToLower(w)] {
			return "", false
		}
		parts = append(parts, strings.ToUpper(w[:1])+w[1:])
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// Training philosophy presets.
const (
	PhilosophyHighVolume    = "high_volume"
	PhilosophyHighIntensity = "high_intensity"
	PhilosophyStrength      = "strength"
	PhilosophyBalanced      = "balanced"
)

var philosophyKeywords = []struct {
	preset string
	words  []string
}{
	{PhilosophyHighVolume, []string{"volume", "hypertrophy", "bodybuilding", "pump"}},
	{PhilosophyHighIntensity, []string{"intensity", "intense", "hiit", "hit", "heavy"}},
	{PhilosophyStrength, []string{"strength", "powerlifting", "power"}},
	{PhilosophyBalanced, []string{"balanced", "balance", "general", "mix"}},
}

// ParsePhilosophy maps free text to a training philosophy preset.
func ParsePhilosophy(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, entry := range philosophyKeywords {
		for _, w := range entry.words {
			if strings.Contains(lower, w) {
				return entry.preset, true
			}
		}
	}
	return "", false
}

// ParsePlanSize maps a reply to a 3 or 6 day plan.
func ParsePlanSize(s string) (int, bool) {
	lower := strings.ToLower(s)
	for _, w := range []string{"3", "three", "small", "light"} {
		if strings.Contains(lower, w) {
			return 3, true
		}
	}
	for _, w := range []string{"6", "six", "full", "big"} {
		if strings.Contains(lower, w) {
			return 6, true
		}
	}
	return 0, false
}

var weekdayAliases = []struct {
	canonical string
	aliases   []string
}{
	{"monday", []string{"monday", "mon"}},
	{"tuesday", []string{"tuesday", "tues", "tue"}},
	{"wednesday", []string{"wednesday", "wed"}},
	{"thursday", []string{"thursday", "thurs", "thur", "thu"}},
	{"friday", []string{"friday", "fri"}},
	{"saturday", []string{"saturday", "sat"}},
	{"sunday", []string{"sunday", "sun"}},
}

// ParseWeekdays returns the weekday names mentioned in the text, in week
// order, without duplicates.
func ParseWeekdays(s string) []string {
	tokens := tokenize(s)
	present := map[string]bool{}
	for _, tok := range tokens {
		for _, day := range weekdayAliases {
			for _, alias := range day.aliases {
				if tok == alias {
					present[day.canonical] = true
				}
			}
		}
	}

	var days []string
	for _, day := range weekdayAliases {
		if present[day.canonical] {
			days = append(days, day.canonical)
		}
	}
	return days
}
