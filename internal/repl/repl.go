// Package repl implements the interactive prompt used to record station
// visits and list route progress.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jusunglee/mtr-progress/internal/logging"
	"github.com/jusunglee/mtr-progress/internal/models"
	"github.com/jusunglee/mtr-progress/internal/progress"
)

const (
	mainPrompt   = "Enter the name of a station you have visited (or 'q' to quit. To see the progress of all lines, press 'l'.): "
	choicePrompt = "Enter the number of the station you have visited: "
)

// Tracker is the part of the client a session drives
type Tracker interface {
	SearchStations(query string) ([]string, error)
	MarkVisited(ctx context.Context, station string) (models.Progress, error)
	GetAllRouteProgress() ([]models.Progress, error)
	GetCompletedRoutes() ([]string, error)
}

// Session reads commands from in and writes prompts and reports to out
type Session struct {
	tracker Tracker
	in      *bufio.Scanner
	out     io.Writer
	logger  *slog.Logger
}

// NewSession creates a session over the given streams
func NewSession(tracker Tracker, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		tracker: tracker,
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  logger,
	}
}

// Run processes commands until "q", end of input or ctx is done
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, ok := s.prompt(mainPrompt)
		if !ok {
			return s.in.Err()
		}
		line = strings.ToLower(line)

		switch line {
		case "q":
			return nil
		case "l":
			s.listProgress()
		default:
			if !s.search(ctx, line) {
				return s.in.Err()
			}
		}
	}
}

// prompt returns the next input line as typed
func (s *Session) prompt(text string) (string, bool) {
	fmt.Fprint(s.out, text)
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Session) listProgress() {
	routes, err := s.tracker.GetAllRouteProgress()
	if err != nil {
		s.fail("failed to compute route progress", err)
		return
	}

	for _, p := range routes {
		if p.Complete() {
			fmt.Fprintf(s.out, "%s:  COMPLETE\n", p.Route)
		}
		fmt.Fprintf(s.out, "%s: %s\n", p.Route, progress.Format(p))
	}

	completed, err := s.tracker.GetCompletedRoutes()
	if err != nil {
		s.fail("failed to list completed routes", err)
		return
	}
	fmt.Fprintf(s.out, "Completed lines:%s\n", strings.Join(completed, ", "))
}

// search lists matches for query and records the chosen one. It returns
// false when input ends.
func (s *Session) search(ctx context.Context, query string) bool {
	matches, err := s.tracker.SearchStations(query)
	if err != nil {
		s.fail("failed to search stations", err)
		return true
	}

	if len(matches) == 0 {
		fmt.Fprintln(s.out, "No station with that name exists.")
		return true
	}

	fmt.Fprintln(s.out, "Stations found:")
	for i, name := range matches {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, name)
	}
	fmt.Fprintln(s.out, "Enter 'b' to go back to the main menu.")

	choice, ok := s.prompt(choicePrompt)
	if !ok {
		return false
	}
	if choice == "b" {
		return true
	}

	n, err := strconv.Atoi(choice)
	if err != nil || !isDigits(choice) || n < 1 || n > len(matches) {
		fmt.Fprintln(s.out, "Invalid choice. Please enter a valid number.")
		return true
	}

	station := matches[n-1]
	overall, err := s.tracker.MarkVisited(ctx, station)
	if err != nil {
		s.fail("failed to record visit", err)
		return true
	}
	s.logger.Debug("station visited", slog.String("station", station))
	fmt.Fprintln(s.out, progress.Format(overall))
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func (s *Session) fail(message string, err error) {
	logging.LogError(s.logger, message, err)
	fmt.Fprintf(s.out, "Error: %v\n", err)
}
