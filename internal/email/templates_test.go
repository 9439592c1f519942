package email

import (
	"strings"
	"testing"
	"time"
)

func testMatchDetails() MatchDetails {
	return MatchDetails{
		LeagueName: "Scolia 180 League",
		HomeTeam:   "Bullseye Bandits",
		AwayTeam:   "Triple Trouble",
		Matchday:   4,
		Date:       time.Date(2026, 3, 20, 19, 0, 0, 0, time.UTC),
	}
}

func TestFormatMatchDate(t *testing.T) {
	got := FormatMatchDate(time.Date(2026, 3, 20, 19, 0, 0, 0, time.UTC))
	if got != "Friday, Mar 20, 2026" {
		t.Errorf("FormatMatchDate = %q", got)
	}
}

func TestBuildMatchReminder(t *testing.T) {
	msg := BuildMatchReminder(testMatchDetails())

	if !strings.Contains(msg.Subject, "Bullseye Bandits vs Triple Trouble") {
		t.Errorf("subject = %q", msg.Subject)
	}
	for _, want := range []string{
		"Scolia 180 League",
		"Matchday: 4",
		"Friday, Mar 20, 2026",
		"photo of the scoreboard",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Body)
		}
	}
}

func TestBuildMatchReminder_DefaultLeagueName(t *testing.T) {
	details := testMatchDetails()
	details.LeagueName = "  "
	msg := BuildMatchReminder(details)
	if !strings.Contains(msg.Body, "League: your league") {
		t.Errorf("body = %q", msg.Body)
	}
}

func TestBuildConfirmationRequest(t *testing.T) {
	msg := BuildConfirmationRequest(ResultDetails{
		MatchDetails: testMatchDetails(),
		HomeLegs:     3,
		AwayLegs:     1,
	}, "Bullseye Bandits")

	if !strings.Contains(msg.Subject, "Awaiting Confirmation") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Bullseye Bandits submitted a result for matchday 4.") {
		t.Errorf("body = %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "3 - 1 legs") {
		t.Errorf("body missing score: %q", msg.Body)
	}
}

func TestBuildResultConfirmed(t *testing.T) {
	msg := BuildResultConfirmed(ResultDetails{
		MatchDetails: testMatchDetails(),
		HomeLegs:     2,
		AwayLegs:     2,
	})

	if !strings.Contains(msg.Subject, "Result Confirmed") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "2 - 2 legs") {
		t.Errorf("body missing score: %q", msg.Body)
	}
}

func TestBuildTeamApproved(t *testing.T) {
	msg := BuildTeamApproved("Bullseye Bandits", "B")
	if !strings.Contains(msg.Subject, "Bullseye Bandits") {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "league tier B") {
		t.Errorf("body = %q", msg.Body)
	}
}
