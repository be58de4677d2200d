package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/bugtracker/internal/resource"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return usageErrorf("unknown output format %q (want text, json or yaml)", format)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// grid is the text rendering of a result: one row per entity.
type grid struct {
	headers []string
	rows    [][]string
}

// printer renders command results. Text output is a styled table on a
// terminal and tab-aligned columns otherwise.
type printer struct {
	w      io.Writer
	format string
	tty    bool
}

func (a *app) printer(cmd *cobra.Command) *printer {
	w := cmd.OutOrStdout()
	return &printer{w: w, format: a.output, tty: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// print renders v as JSON or YAML, or renders g in text format.
func (p *printer) print(v any, g grid) error {
	switch p.format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		return enc.Close()
	default:
		return p.render(g)
	}
}

func (p *printer) render(g grid) error {
	if p.tty {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers(g.headers...).
			Rows(g.rows...)
		_, err := fmt.Fprintln(p.w, t.Render())
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(g.headers, "\t"))
	for _, row := range g.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// deleted reports a successful delete.
func (p *printer) deleted(entity, id string) error {
	if p.format == formatText {
		_, err := fmt.Fprintf(p.w, "Deleted %s %s\n", entity, id)
		return err
	}
	return p.print(map[string]any{"id": id, "deleted": true}, grid{})
}

// page renders a page of tickets followed, in text format, by a summary line.
func (p *printer) page(pg *resource.TicketPage) error {
	pg.Tickets = orEmpty(pg.Tickets)
	if err := p.print(pg, p.ticketGrid(pg.Tickets...)); err != nil {
		return err
	}
	if p.format != formatText {
		return nil
	}
	pages := (pg.Total + pg.Size - 1) / pg.Size
	_, err := fmt.Fprintf(p.w, "page %d of %d (%s tickets)\n",
		pg.Page+1, max(pages, 1), humanize.Comma(int64(pg.Total)))
	return err
}

// due formats a due date; on a terminal the distance from now is appended.
func (p *printer) due(d *civil.Date) string {
	if d == nil {
		return ""
	}
	if !p.tty {
		return d.String()
	}
	return fmt.Sprintf("%s (%s)", d, humanize.Time(d.In(time.Local)))
}

func (p *printer) ticketGrid(tickets ...*types.Ticket) grid {
	g := grid{headers: []string{"ID", "TITLE", "DUE", "DONE", "PROJECT", "ASSIGNEE", "LABELS"}}
	for _, t := range tickets {
		var project, assignee string
		if t.Project != nil {
			project = t.Project.Name
		}
		if t.AssignedTo != nil {
			assignee = t.AssignedTo.Login
		}
		values := make([]string, 0, len(t.Labels()))
		for _, l := range t.Labels() {
			values = append(values, l.Value)
		}
		g.rows = append(g.rows, []string{
			t.ID, t.Title, p.due(t.DueDate), strconv.FormatBool(t.Done),
			project, assignee, strings.Join(values, ","),
		})
	}
	return g
}

func projectGrid(projects ...*types.Project) grid {
	g := grid{headers: []string{"ID", "NAME", "DESCRIPTION"}}
	for _, pr := range projects {
		g.rows = append(g.rows, []string{pr.ID, pr.Name, pr.Description})
	}
	return g
}

func labelGrid(labels ...*types.Label) grid {
	g := grid{headers: []string{"ID", "VALUE", "TICKETS"}}
	for _, l := range labels {
		g.rows = append(g.rows, []string{l.ID, l.Value, strconv.Itoa(len(l.Tickets()))})
	}
	return g
}

func userGrid(users ...*types.User) grid {
	g := grid{headers: []string{"ID", "LOGIN", "NAME", "EMAIL"}}
	for _, u := range users {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		g.rows = append(g.rows, []string{u.ID, u.Login, name, u.Email})
	}
	return g
}

// orEmpty keeps JSON output of an empty list as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
