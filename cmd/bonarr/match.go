package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/shocklateboy92/bonarr/internal/identify"
	"github.com/shocklateboy92/bonarr/internal/library"
	"github.com/shocklateboy92/bonarr/internal/torrent"
)

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:      "match",
		Usage:     "match the files of a .torrent to a season and optionally link them",
		ArgsUsage: "<file.torrent>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "show", Usage: "TMDB show id", Required: true},
			&cli.IntFlag{Name: "season", Usage: "season number", Value: 1},
			&cli.StringFlag{Name: "download-dir", Usage: "directory holding the torrent's content"},
			&cli.StringSliceFlag{Name: "assign", Usage: "manual override as EPISODE=FILE_INDEX, or EPISODE= to clear"},
			&cli.BoolFlag{Name: "apply", Usage: "hard-link matched files into the library"},
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
		},
		Action: match,
	}
}

func match(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one .torrent file", 2)
	}

	overrides, err := parseAssignments(c.StringSlice("assign"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	rt, err := setup(c)
	if err != nil {
		return err
	}
	defer rt.close()

	downloadDir := c.String("download-dir")
	if downloadDir == "" {
		downloadDir = rt.cfg.Library.TorrentFilterPath
	}

	tor, err := torrent.LoadMetainfo(c.Args().First(), downloadDir)
	if err != nil {
		return err
	}

	matching := rt.matchingService()
	session, err := matching.StartSessionWithTorrent(c.Context, c.Int("show"), c.Int("season"), tor)
	if err != nil {
		return err
	}

	for _, o := range overrides {
		if _, err := matching.AssignFile(session.ID, o.episode, o.fileIndex); err != nil {
			return fmt.Errorf("assign episode %d: %w", o.episode, err)
		}
	}

	out := struct {
		Session any                  `json:"session"`
		Apply   *library.ApplyResult `json:"apply,omitempty"`
	}{Session: session.View()}

	if c.Bool("apply") {
		out.Apply, err = matching.ApplySession(session.ID)
		if err != nil {
			return err
		}
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printRecords(os.Stdout, session.Files, session.Records())
	if out.Apply != nil {
		printApply(os.Stdout, out.Apply)
		if !out.Apply.Success {
			return cli.Exit("", 1)
		}
	}
	return nil
}

type assignment struct {
	episode   int
	fileIndex *int
}

// parseAssignments reads "EPISODE=FILE_INDEX" overrides. An empty index clears
// the episode.
func parseAssignments(values []string) ([]assignment, error) {
	out := make([]assignment, 0, len(values))
	for _, v := range values {
		epStr, idxStr, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q: want EPISODE=FILE_INDEX", v)
		}

		ep, err := strconv.Atoi(strings.TrimSpace(epStr))
		if err != nil {
			return nil, fmt.Errorf("invalid episode in %q", v)
		}

		a := assignment{episode: ep}
		if idxStr = strings.TrimSpace(idxStr); idxStr != "" {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, fmt.Errorf("invalid file index in %q", v)
			}
			a.fileIndex = &idx
		}
		out = append(out, a)
	}
	return out, nil
}

func printRecords(w io.Writer, files []identify.TorrentFile, records []identify.MatchRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "FILES")
	for i, f := range files {
		marker := ""
		if !identify.IsVideoFile(f.Name) {
			marker = "(not video)"
		}
		fmt.Fprintf(tw, "  [%d]\t%s\t%s\n", i, f.Name, marker)
	}

	fmt.Fprintln(tw, "EPISODES")
	for _, r := range records {
		file := "-"
		if r.File != nil {
			file = r.File.Name
		}
		fmt.Fprintf(tw, "  E%02d\t%s\t%s\t%s\n", r.Episode.EpisodeNumber, r.Episode.Name, r.Confidence, file)
	}

	s := identify.Summarize(records)
	fmt.Fprintf(tw, "matched %d/%d (high %d, medium %d, low %d)\n", s.Matched, s.Total, s.High, s.Medium, s.Low)
}

func printApply(w io.Writer, result *library.ApplyResult) {
	fmt.Fprintf(w, "linked %d episode(s), skipped %d\n", result.ProcessedCount, len(result.Skipped))
	for _, d := range result.Details {
		if d.Status == library.StatusSuccess {
			fmt.Fprintf(w, "  E%02d %s\n", d.Episode, d.TargetFile)
		}
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
}
