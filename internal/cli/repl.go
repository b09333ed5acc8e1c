// Package cli implements the interactive search loop used for testing
// formulas and compiled artifacts from a terminal.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shuru-ime/shuru/internal/logger"
	"github.com/shuru-ime/shuru/pkg/engine"
)

// Repl reads codes from stdin and prints ranked candidates. `*use <id>`
// switches the active formula, `*quit` exits. Errors are reported and the
// loop continues; nothing here terminates the process.
type Repl struct {
	engine      *engine.Engine
	resultLimit int
	log         *log.Logger
}

// NewRepl wires the interactive loop to a loaded engine.
func NewRepl(eng *engine.Engine, resultLimit int) *Repl {
	return &Repl{
		engine:      eng,
		resultLimit: resultLimit,
		log:         logger.New("repl"),
	}
}

// Start begins the interface loop. It continuously prompts for input, reads
// a line from stdin and passes the trimmed input to handleInput. The loop
// terminates on *quit or end of input.
func (r *Repl) Start() error {
	reader := bufio.NewReader(os.Stdin)
	r.log.Printf("active formula: %s", r.engine.ActiveFormula())
	r.log.Print("type a code and press Enter (*use <formula> to switch, *quit to exit):")

	for {
		fmt.Print("shuru> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "*quit" {
			return nil
		}
		if id, ok := strings.CutPrefix(input, "*use "); ok {
			r.switchFormula(strings.TrimSpace(id))
			continue
		}
		r.handleInput(input)
	}
}

// switchFormula promotes another formula; an unknown id leaves the current
// one active.
func (r *Repl) switchFormula(id string) {
	if err := r.engine.SetActiveFormula(id); err != nil {
		r.log.Errorf("Cannot switch formula: %v", err)
		return
	}
	r.log.Printf("active formula: %s", id)
}

// handleInput runs one search and prints the ranked candidates.
func (r *Repl) handleInput(code string) {
	start := time.Now()
	results, err := r.engine.Search(code)
	if err != nil {
		r.log.Errorf("Search failed: %v", err)
		return
	}
	r.log.Debugf("Took [ %v ] for code '%s'", time.Since(start), code)

	if len(results) == 0 {
		r.log.Warnf("No candidates for code: '%s'", code)
		return
	}
	if r.resultLimit > 0 && len(results) > r.resultLimit {
		results = results[:r.resultLimit]
	}
	for i, res := range results {
		line := fmt.Sprintf("%2d. %s\t(%s, weight %d)", i+1, res.Text, res.Code, res.Weight)
		if res.Comment != "" {
			line += "  # " + res.Comment
		}
		r.log.Print(line)
	}
}
