// Package readingtime estimates how long a post takes to read.
package readingtime

import "strings"

// WordsPerMinute is the assumed reading speed.
const WordsPerMinute = 200

// WordCount counts whitespace-separated tokens.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// Estimate returns ceil(words/WordsPerMinute) minutes, never less than 1.
func Estimate(content string) int {
	words := WordCount(content)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
