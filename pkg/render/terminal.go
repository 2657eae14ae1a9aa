package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/yuriiter/freccia/pkg/models"
	"golang.org/x/term"
)

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Terminal writes search output for the interactive prompt. Colours and the
// markdown table are only used when styled is set; otherwise every line is
// plain text.
type Terminal struct {
	out      io.Writer
	styled   bool
	profile  termenv.Profile
	markdown *glamour.TermRenderer
}

func NewTerminal(w io.Writer) *Terminal {
	return newTerminal(w, IsTerminal(w))
}

// NewPlainTerminal never styles its output.
func NewPlainTerminal(w io.Writer) *Terminal {
	return newTerminal(w, false)
}

func newTerminal(w io.Writer, styled bool) *Terminal {
	t := &Terminal{out: w, styled: styled, profile: termenv.Ascii}
	if styled {
		t.profile = termenv.ColorProfile()
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120)); err == nil {
			t.markdown = r
		}
	}
	return t
}

func (t *Terminal) Writer() io.Writer { return t.out }

func (t *Terminal) paint(s, color string, bold bool) string {
	if !t.styled {
		return s
	}
	st := termenv.String(s).Foreground(t.profile.Color(color))
	if bold {
		st = st.Bold()
	}
	return st.String()
}

func (t *Terminal) Println(a ...any) {
	fmt.Fprintln(t.out, a...)
}

func (t *Terminal) Notice(msg string) {
	fmt.Fprintln(t.out, t.paint(msg, "#fb7185", false))
}

func (t *Terminal) Progress(msg string) {
	fmt.Fprintln(t.out, t.paint(msg, "#a78bfa", false))
}

func (t *Terminal) Stations(stations []models.Station) {
	for i, s := range stations {
		fmt.Fprintf(t.out, "%s: %s\n", t.paint(fmt.Sprint(i), "#818cf8", true), s.DisplayName)
	}
}

// Day prints a day's solutions, or the "nothing found" notice.
func (t *Terminal) Day(day models.DayResult, emptyNotice string) {
	if day.Empty() {
		t.Notice(emptyNotice)
		return
	}
	if t.markdown != nil {
		if out, err := t.markdown.Render(Markdown(day)); err == nil {
			fmt.Fprint(t.out, out)
			return
		}
	}
	fmt.Fprintf(t.out, "\nSolutions for %s:\n", day.Date.Format("2006-01-02"))
	for _, s := range day.Solutions {
		fmt.Fprintln(t.out, "\n"+strings.TrimSpace(SolutionLine(s)))
	}
}
