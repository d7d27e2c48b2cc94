package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseYesNo_CanonicalTokens(t *testing.T) {
	yes := []string{"yes", "y", "yeah", "yep", "sure", "ok", "okay", "correct", "right", "true"}
	for _, tok := range yes {
		assert.Equal(t, AnswerYes, ParseYesNo(tok), "token %q", tok)
	}

	no := []string{"no", "n", "nope", "nah", "negative", "wrong", "false"}
	for _, tok := range no {
		assert.Equal(t, AnswerNo, ParseYesNo(tok), "token %q", tok)
	}
}

func TestParseYesNo_Unknown(t *testing.T) {
	for _, s := range []string{"maybe", "tomorrow", "", "what do you mean"} {
		if got := ParseYesNo(s); got != AnswerUnknown {
			t.Errorf("ParseYesNo(%q) = %v, want unknown", s, got)
		}
	}
}

func TestParseYesNo_InSentence(t *testing.T) {
	assert.Equal(t, AnswerYes, ParseYesNo("yeah, that works"))
	assert.Equal(t, AnswerNo, ParseYesNo("no thanks"))
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"7pm", "19:00", true},
		{"7 PM", "19:00", true},
		{"7:30pm", "19:30", true},
		{"12am", "00:00", true},
		{"12pm", "12:00", true},
		{"18:30", "18:30", true},
		{"I go in the morning", "morning", true},
		{"usually in the evening", "evening", true},
		{"after work mostly", "after work", true},
		{"whenever", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseClockTime(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseClockTime(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMapWindow(t *testing.T) {
	assert.Equal(t, WindowMorning, MapWindow("morning"))
	assert.Equal(t, WindowMorning, MapWindow("07:00"))
	assert.Equal(t, WindowAfternoon, MapWindow("14:00"))
	assert.Equal(t, WindowEvening, MapWindow("evening"))
	assert.Equal(t, WindowEvening, MapWindow("night"))
	assert.Equal(t, WindowEvening, MapWindow("19:00"))
	assert.Equal(t, WindowAfterWork, MapWindow("after work"))
	// Unparseable defaults to evening.
	assert.Equal(t, WindowEvening, MapWindow("whenever"))
}

func TestParseHeight(t *testing.T) {
	cm, ok := ParseHeight("175 cm")
	if !ok || cm != 175 {
		t.Fatalf("ParseHeight(175 cm) = (%v, %v)", cm, ok)
	}

	cm, ok = ParseHeight("5 feet 9 inches")
	if !ok || math.Abs(cm-175) > 1 {
		t.Fatalf("ParseHeight(5 feet 9 inches) = (%v, %v), want ~175", cm, ok)
	}

	cm, ok = ParseHeight("1.8m")
	if !ok || math.Abs(cm-180) > 0.01 {
		t.Fatalf("ParseHeight(1.8m) = (%v, %v), want 180", cm, ok)
	}

	// Bare number magnitude heuristics.
	cm, ok = ParseHeight("182")
	if !ok || cm != 182 {
		t.Fatalf("bare 182 should read as cm, got (%v, %v)", cm, ok)
	}
	cm, ok = ParseHeight("6")
	if !ok || math.Abs(cm-182.88) > 0.01 {
		t.Fatalf("bare 6 should read as feet, got (%v, %v)", cm, ok)
	}

	if _, ok := ParseHeight("tall"); ok {
		t.Fatal("ParseHeight(tall) should fail")
	}
}

func TestParseWeight(t *testing.T) {
	kg, ok := ParseWeight("70 kg")
	if !ok || kg != 70 {
		t.Fatalf("ParseWeight(70 kg) = (%v, %v)", kg, ok)
	}

	kg, ok = ParseWeight("154 lbs")
	if !ok || math.Abs(kg-70) > 1 {
		t.Fatalf("ParseWeight(154 lbs) = (%v, %v), want ~70", kg, ok)
	}

	kg, ok = ParseWeight("80")
	if !ok || kg != 80 {
		t.Fatalf("bare 80 should read as kg, got (%v, %v)", kg, ok)
	}

	kg, ok = ParseWeight("300")
	if !ok || math.Abs(kg-136.08) > 0.1 {
		t.Fatalf("bare 300 should read as pounds, got (%v, %v)", kg, ok)
	}

	if _, ok := ParseWeight("heavy"); ok {
		t.Fatal("ParseWeight(heavy) should fail")
	}
}

func TestBMI(t *testing.T) {
	if got := BMI(70, 175); got != 22.9 {
		t.Errorf("BMI(70, 175) = %v, want 22.9", got)
	}
	if got := BMI(70, 0); got != 0 {
		t.Errorf("BMI with zero height = %v, want 0", got)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"John", "John", true},
		{"my name is John", "John", true},
		{"I'm sarah", "Sarah", true},
		{"call me Jo-Ann", "Jo-Ann", true},
		{"Mary Jane", "Mary Jane", true},
		{"123", "", false},
		{"", "", false},
		{"yes", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseName(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseName(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePhilosophy(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"high volume please", PhilosophyHighVolume},
		{"I like hypertrophy work", PhilosophyHighVolume},
		{"high intensity", PhilosophyHighIntensity},
		{"heavy and short", PhilosophyHighIntensity},
		{"pure strength", PhilosophyStrength},
		{"something balanced", PhilosophyBalanced},
	}
	for _, tt := range tests {
		got, ok := ParsePhilosophy(tt.in)
		if !ok || got != tt.want {
			t.Errorf("ParsePhilosophy(%q) = (%q, %v), want %q", tt.in, got, ok, tt.want)
		}
	}
	if _, ok := ParsePhilosophy("whatever"); ok {
		t.Error("ParsePhilosophy(whatever) should fail")
	}
}

func TestParsePlanSize(t *testing.T) {
	for in, want := range map[string]int{"3": 3, "three days": 3, "6": 6, "six": 6, "the full plan": 6} {
		got, ok := ParsePlanSize(in)
		if !ok || got != want {
			t.Errorf("ParsePlanSize(%q) = (%d, %v), want %d", in, got, ok, want)
		}
	}
	if _, ok := ParsePlanSize("every day"); ok {
		t.Error("ParsePlanSize(every day) should fail")
	}
}

func TestParseWeekdays(t *testing.T) {
	days := ParseWeekdays("I train Mon, Wednesday and fri")
	assert.Equal(t, []string{"monday", "wednesday", "friday"}, days)

	// Week order and dedup.
	days = ParseWeekdays("friday monday friday")
	assert.Equal(t, []string{"monday", "friday"}, days)

	assert.Empty(t, ParseWeekdays("no days here"))
}
