package race

import (
	"math"
	"unicode/utf8"
)

const charsPerWord = 5

// WordsPerMinute treats every 5 typed characters as one word.
// elapsedSeconds must be positive.
func WordsPerMinute(typedLength int, elapsedSeconds float64) float64 {
	words := float64(typedLength) / charsPerWord
	return round2(words / elapsedSeconds * 60)
}

func AccuracyPercent(correctChars int, totalChars int) float64 {
	if totalChars == 0 {
		return 100
	}
	return round2(float64(correctChars) / float64(totalChars) * 100)
}

// countCorrect compares typed against text position by position. Positions
// past the end of text never count.
func countCorrect(typed, text []rune) int {
	correct := 0
	for i := 0; i < len(typed) && i < len(text); i++ {
		if typed[i] == text[i] {
			correct++
		}
	}
	return correct
}

func progressPercent(typedLength, textLength int) float64 {
	if textLength == 0 {
		return 0
	}
	return float64(typedLength) / float64(textLength) * 100
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
