// Package readtime estimates narration time for a script.
package readtime

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/script-engine/pkg/types"
)

// WordsPerMinute is the narration pace.
const WordsPerMinute = 130

// roundUpAfter is the remainder, in seconds, above which minutes round up.
const roundUpAfter = 45

var tagRe = regexp.MustCompile(`\[[^\]]*\]`)

// Estimate returns the reading time of text with [...] tags removed.
// Seconds above 45 round the minute count up and reset to zero.
func Estimate(text string) types.ReadingTime {
	words := strings.Fields(tagRe.ReplaceAllString(text, " "))
	n := len(words)
	total := n * 60 / WordsPerMinute

	minutes, seconds := total/60, total%60
	if seconds > roundUpAfter {
		minutes++
		seconds = 0
	}

	formatted := fmt.Sprintf("%d:%02d", minutes, seconds)
	return types.ReadingTime{
		Minutes:      minutes,
		Seconds:      seconds,
		TotalSeconds: total,
		WordCount:    n,
		Formatted:    formatted,
		Text:         describe(minutes, seconds),
	}
}

func describe(minutes, seconds int) string {
	switch {
	case minutes == 0 && seconds == 0:
		return "moins d'une seconde"
	case minutes == 0:
		return fmt.Sprintf("%d secondes", seconds)
	case seconds == 0 && minutes == 1:
		return "1 minute"
	case seconds == 0:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes == 1:
		return fmt.Sprintf("1 minute %d secondes", seconds)
	}
	return fmt.Sprintf("%d minutes %d secondes", minutes, seconds)
}
