package oracle

import (
	"fmt"
	"time"

	"github.com/robalobadob/wordle/apps/game-session/internal/daily"
	"github.com/robalobadob/wordle/apps/game-session/internal/words"
)

// Picker chooses the secret word for a new puzzle.
type Picker interface {
	Pick(user string) string
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(user string) string

func (f PickerFunc) Pick(user string) string { return f(user) }

// Fixed always picks word. Used in test mode.
func Fixed(word string) Picker {
	return PickerFunc(func(string) string { return word })
}

// Random picks a random answer from list.
func Random(list *words.List) Picker {
	return PickerFunc(func(string) string { return list.RandomAnswer() })
}

// Daily picks the same answer for every user on a given schedule day.
func Daily(list *words.List, sched daily.Schedule, now func() time.Time) Picker {
	if now == nil {
		now = time.Now
	}
	return PickerFunc(func(string) string {
		answers := list.Answers()
		return answers[sched.Index(now(), len(answers))]
	})
}

// NewPicker builds a picker by mode name: "fixed", "random" or "daily".
func NewPicker(mode, fixedWord string, sched daily.Schedule, list *words.List) (Picker, error) {
	switch mode {
	case "fixed":
		return Fixed(fixedWord), nil
	case "random", "":
		return Random(list), nil
	case "daily":
		return Daily(list, sched, nil), nil
	}
	return nil, fmt.Errorf("oracle: unknown picker mode %q", mode)
}
