// Package cli runs wordfix from the terminal: an interactive loop for trying
// corrections and a batch mode that writes reports.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordfix/pkg/correct"
)

var (
	changedStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	keptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#797593", Dark: "#908caa"})
)

// InputHandler reads words line by line and prints the correction of each,
// followed by its best ranked candidates.
type InputHandler struct {
	engine        *correct.Engine
	limit         int
	maxWordLength int
	in            io.Reader
	out           io.Writer
}

// NewInputHandler creates a handler reading from in and printing to out.
// limit caps the number of candidates shown; 0 hides them.
func NewInputHandler(engine *correct.Engine, limit, maxWordLength int, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		engine:        engine,
		limit:         limit,
		maxWordLength: maxWordLength,
		in:            in,
		out:           out,
	}
}

// Start runs the loop until the input ends.
func (h *InputHandler) Start() error {
	log.Print("WordFix CLI")
	log.Print("type a word and press Enter to correct it (Ctrl+D to exit):")

	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		if word := strings.TrimSpace(line); word != "" {
			h.handleInput(word)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (h *InputHandler) handleInput(word string) {
	if h.maxWordLength > 0 && len(word) > h.maxWordLength {
		log.Errorf("Word too long: %d bytes (max %d)", len(word), h.maxWordLength)
		return
	}

	start := time.Now()
	res := h.engine.Correct(word)
	log.Debugf("Took [ %v ] for '%s'", time.Since(start), word)

	if res.Changed {
		fmt.Fprintf(h.out, "%s -> %s (%.1f)\n", word, changedStyle.Render(res.Corrected), res.Score)
	} else {
		fmt.Fprintf(h.out, "%s %s\n", word, keptStyle.Render("(unchanged)"))
	}

	if h.limit < 1 {
		return
	}
	ranked := h.engine.Rank(word)
	if len(ranked) > h.limit {
		ranked = ranked[:h.limit]
	}
	for i, c := range ranked {
		fmt.Fprintf(h.out, "%2d. %-24s %6.2f\n", i+1, c.Word, c.Score)
	}
}
