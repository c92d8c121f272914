package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/shocklateboy92/bonarr/internal/library"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "report which episodes of a season already exist in the library",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "show", Usage: "TMDB show id", Required: true},
			&cli.IntFlag{Name: "season", Usage: "season number", Value: 1},
			&cli.StringFlag{Name: "name", Usage: "show name; looked up on TMDB when omitted"},
			&cli.IntSliceFlag{Name: "episode", Usage: "episode numbers to check; defaults to the whole season"},
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
		},
		Action: check,
	}
}

func check(c *cli.Context) error {
	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()

	showID := c.Int("show")
	seasonNumber := c.Int("season")

	name := c.String("name")
	if name == "" {
		show, err := rt.tmdb.GetShow(c.Context, showID)
		if err != nil {
			return fmt.Errorf("failed to load show: %w", err)
		}
		name = show.Name
	}

	episodes := c.IntSlice("episode")
	if len(episodes) == 0 {
		season, err := rt.tmdb.GetSeason(c.Context, showID, seasonNumber)
		if err != nil {
			return fmt.Errorf("failed to load season: %w", err)
		}
		for _, ep := range season.CoreEpisodes() {
			episodes = append(episodes, ep.EpisodeNumber)
		}
	}

	results := rt.matchingService().CheckExisting(library.CheckRequest{
		ShowName:     name,
		ShowID:       showID,
		SeasonNumber: seasonNumber,
		Episodes:     episodes,
	})

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		state := "missing"
		if r.Exists {
			state = "present"
		}
		fmt.Printf("E%02d  %-7s  %s\n", r.Episode, state, r.FilePath)
	}
	fmt.Printf("%d of %d episode(s) in library\n", library.ExistingCount(results), len(results))
	return nil
}
