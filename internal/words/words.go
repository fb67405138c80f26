// Package words holds the oracle's answer and allowed-guess lists.
//
// Lists are read from files named in config or, when none are set, from the
// copies embedded in the assets package. If only the allowed file is given it
// doubles as the answer list. Every entry is lowercased and trimmed; blank lines,
// '#' comments and anything that is not Length ASCII letters are skipped.
package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/big"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/robalobadob/wordle/apps/game-session/assets"
)

// Length is the number of letters in every listed word.
const Length = 5

// ErrEmpty is returned when no valid answers could be loaded.
var ErrEmpty = errors.New("words: answers list is empty")

// List is an immutable dictionary. Answers are always allowed guesses.
type List struct {
	answers []string
	answer  map[string]struct{}
	allowed map[string]struct{}
}

// Load builds a List from the given files (either may be empty).
func Load(answersPath, allowedPath string) (*List, error) {
	if answersPath == "" && allowedPath == "" {
		return loadEmbedded()
	}
	allowed, err := parseFile(allowedPath)
	if err != nil {
		return nil, err
	}
	if answersPath == "" {
		return New(allowed, nil)
	}
	answers, err := parseFile(answersPath)
	if err != nil {
		return nil, err
	}
	return New(answers, allowed)
}

func loadEmbedded() (*List, error) {
	answers, err := parseEmbedded(assets.Answers)
	if err != nil {
		return nil, err
	}
	allowed, err := parseEmbedded(assets.Allowed)
	if err != nil {
		return nil, err
	}
	return New(answers, allowed)
}

func parseEmbedded(open func() (fs.File, error)) ([]string, error) {
	f, err := open()
	if err != nil {
		return nil, fmt.Errorf("words: embedded list: %w", err)
	}
	defer f.Close()
	return parse(f)
}

// New builds a List from in-memory slices. Invalid and duplicate words are dropped.
func New(answers, allowed []string) (*List, error) {
	ans := lo.Uniq(clean(answers))
	if len(ans) == 0 {
		return nil, ErrEmpty
	}
	return &List{
		answers: ans,
		answer:  lo.Keyify(ans),
		allowed: lo.Keyify(append(append([]string{}, ans...), clean(allowed)...)),
	}, nil
}

func parseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func clean(in []string) []string {
	return lo.FilterMap(in, func(s string, _ int) (string, bool) {
		w := strings.ToLower(strings.TrimSpace(s))
		return w, valid(w)
	})
}

func valid(w string) bool {
	if len(w) != Length {
		return false
	}
	return !strings.ContainsFunc(w, func(r rune) bool { return r < 'a' || r > 'z' })
}

// Answers returns the canonical answer list.
func (l *List) Answers() []string { return l.answers }

// RandomAnswer returns a uniformly chosen answer.
func (l *List) RandomAnswer() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.answers))))
	if err != nil {
		return l.answers[0]
	}
	return l.answers[n.Int64()]
}

// IsAllowed reports whether w may be guessed.
func (l *List) IsAllowed(w string) bool {
	_, ok := l.allowed[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w can be a secret.
func (l *List) IsAnswer(w string) bool {
	_, ok := l.answer[strings.ToLower(w)]
	return ok
}

// Stats returns (answers, allowed) counts.
func (l *List) Stats() (answers, allowed int) {
	return len(l.answers), len(l.allowed)
}
