package events

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cskr/pubsub"
)

// CaptureKeyboard reads lines from r (typically os.Stdin). Entering "q"
// publishes an OsExit event. It returns when r is exhausted.
func CaptureKeyboard(r io.Reader, evPS *pubsub.PubSub) {

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "q", "Q":
			evPS.Pub(true, OsExit)
		case "":
		default:
			fmt.Println("keyboard input:", scanner.Text(), "(press q + enter to stop)")
		}
	}
}
