package telephony

import (
	"strings"
	"testing"
)

func TestBuildWakeupScript(t *testing.T) {
	out, err := BuildWakeupScript(WakeupScriptOptions{
		WeatherLine:   "The current weather is Sunny with a temperature of 68 degrees Fahrenheit.",
		CustomMessage: "Meeting at nine.",
		ActionURL:     "https://example.com/webhooks/interaction/42",
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"<Response>",
		"Good morning! This is your wake-up call.",
		"Sunny with a temperature of 68 degrees Fahrenheit",
		"Meeting at nine.",
		`action="https://example.com/webhooks/interaction/42"`,
		`numDigits="1"`,
		"Press 1 to snooze for 10 minutes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("script missing %q:\n%s", want, out)
		}
	}
}

func TestBuildWakeupScriptSnoozed(t *testing.T) {
	out, err := BuildWakeupScript(WakeupScriptOptions{
		Snoozed:   true,
		ActionURL: "https://example.com/webhooks/interaction/42",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out, "Rise and shine!") {
		t.Errorf("snoozed script should use the snooze greeting:\n%s", out)
	}
	if strings.Contains(out, "Good morning!") {
		t.Errorf("snoozed script should not use the first-call greeting:\n%s", out)
	}
}

func TestBuildSayResponse(t *testing.T) {
	out, err := BuildSayResponse("Snoozing for 10 minutes. Sweet dreams!")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Snoozing for 10 minutes. Sweet dreams!") {
		t.Errorf("unexpected response:\n%s", out)
	}
	if !strings.HasPrefix(out, xmlHeader) {
		t.Error("response missing XML header")
	}
}
