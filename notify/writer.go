package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/jrsteele09/go-inventory-ui/internal/colours"
)

var levelColours = map[Level]string{
	LevelInfo:    colours.Cyan,
	LevelSuccess: colours.Green,
	LevelWarning: colours.Yellow,
	LevelError:   colours.Red,
}

var levelSymbols = map[Level]string{
	LevelInfo:    "i",
	LevelSuccess: "✓",
	LevelWarning: "!",
	LevelError:   "✗",
}

// Writer prints one line per notice, e.g. "✗ connection problem: ..."
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	colour bool
}

func NewWriter(out io.Writer, colour bool) *Writer {
	return &Writer{out: out, colour: colour}
}

func (w *Writer) Notify(n Notice) {
	w.mu.Lock()
	defer w.mu.Unlock()
	symbol := colours.Wrap(levelColours[n.Level], levelSymbols[n.Level], w.colour)
	if n.Category == CategoryConnection {
		fmt.Fprintf(w.out, "%s [connection] %s\n", symbol, n.Message)
		return
	}
	fmt.Fprintf(w.out, "%s %s\n", symbol, n.Message)
}
