package email

import (
	"fmt"
	"strings"
	"time"
)

type Message struct {
	Subject string
	Body    string
}

type MatchDetails struct {
	LeagueName string
	HomeTeam   string
	AwayTeam   string
	Matchday   int
	Date       time.Time
}

type ResultDetails struct {
	MatchDetails
	HomeLegs int
	AwayLegs int
}

func FormatMatchDate(date time.Time) string {
	return date.Format("Monday, Jan 2, 2006")
}

// BuildMatchReminder is sent to both captains the day before a fixture.
func BuildMatchReminder(details MatchDetails) Message {
	leagueName := strings.TrimSpace(details.LeagueName)
	if leagueName == "" {
		leagueName = "your league"
	}

	subject := fmt.Sprintf("Match Reminder - %s vs %s", details.HomeTeam, details.AwayTeam)
	lines := []string{
		"Reminder: your darts match is coming up.",
		"",
		fmt.Sprintf("League: %s", leagueName),
		fmt.Sprintf("Matchday: %d", details.Matchday),
		fmt.Sprintf("Fixture: %s vs %s", details.HomeTeam, details.AwayTeam),
		fmt.Sprintf("Date: %s", FormatMatchDate(details.Date)),
		"",
		"Remember to take a photo of the scoreboard for result submission.",
	}

	return Message{Subject: subject, Body: strings.Join(lines, "\n")}
}

// BuildConfirmationRequest tells the opposing captain a result is waiting.
func BuildConfirmationRequest(details ResultDetails, submittedBy string) Message {
	subject := fmt.Sprintf("Result Awaiting Confirmation - %s vs %s", details.HomeTeam, details.AwayTeam)
	lines := []string{
		fmt.Sprintf("%s submitted a result for matchday %d.", submittedBy, details.Matchday),
		"",
		fmt.Sprintf("Fixture: %s vs %s", details.HomeTeam, details.AwayTeam),
		fmt.Sprintf("Reported score: %d - %d legs", details.HomeLegs, details.AwayLegs),
		"",
		"Please confirm or dispute the result in the league portal.",
	}
	return Message{Subject: subject, Body: strings.Join(lines, "\n")}
}

// BuildResultConfirmed is sent to both captains once a match completes.
func BuildResultConfirmed(details ResultDetails) Message {
	subject := fmt.Sprintf("Result Confirmed - %s vs %s", details.HomeTeam, details.AwayTeam)
	lines := []string{
		"The match result has been confirmed and the standings are updated.",
		"",
		fmt.Sprintf("Matchday: %d", details.Matchday),
		fmt.Sprintf("Fixture: %s vs %s", details.HomeTeam, details.AwayTeam),
		fmt.Sprintf("Final score: %d - %d legs", details.HomeLegs, details.AwayLegs),
	}
	return Message{Subject: subject, Body: strings.Join(lines, "\n")}
}

// BuildTeamApproved welcomes a team after admin approval.
func BuildTeamApproved(teamName string, tier string) Message {
	subject := fmt.Sprintf("Registration Approved - %s", teamName)
	lines := []string{
		fmt.Sprintf("Your team %s has been approved for league tier %s.", teamName, tier),
		"",
		"You will receive the fixture list once the schedule is published.",
	}
	return Message{Subject: subject, Body: strings.Join(lines, "\n")}
}
