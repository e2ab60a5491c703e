package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/spielplan/internal/calendar"
	"github.com/pfrederiksen/spielplan/internal/match"
)

func main() {
	records := []match.Record{
		{
			MatchID:         "sample-1",
			Team:            "U13 Junioren",
			Competition:     "Kreisliga München",
			CompetitionType: "Meisterschaft",
			Date:            "15.03.2026",
			Time:            "15:00",
			Home:            "SV Lerchenau",
			Away:            "FC Schwabing",
		},
		{
			MatchID:         "sample-2",
			Team:            "U13 Junioren",
			Competition:     "Kreispokal",
			CompetitionType: "Pokal",
			Date:            "28.06.2026",
			Time:            "10:30",
			Home:            "TSV Milbertshofen",
			Away:            "SV Lerchenau",
			PrePublished:    true,
		},
		{
			Team:        "U13 Junioren",
			Competition: "Hallenturnier",
			Home:        "SV Lerchenau",
			Away:        "SG Würmtal",
		},
	}

	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	icsContent, skipped := calendar.GenerateICS(records, calendar.Options{
		Name:     "U13 Junioren",
		Location: loc,
	})

	// Write to file (owner read/write only)
	filename := "sample-spielplan.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file: %s (%d events, %d without kickoff skipped)\n\n",
		filename, len(records)-skipped, skipped)
	fmt.Println("Check it by importing it into Google Calendar, Apple Calendar or Outlook.")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
