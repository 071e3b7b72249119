package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

var ErrScheduleResolution = errors.New("cannot resolve schedule to a cron expression")

// Interpreter turns free-form schedule text into a cron expression when
// neither the phrase table nor literal cron parsing matched. The
// production implementation is an LLM call.
type Interpreter interface {
	InterpretSchedule(ctx context.Context, input string) (string, error)
}

// cronParser accepts standard 5-field expressions only.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// naturalLanguagePatterns maps well-known phrases to cron expressions.
// Matching is a case-insensitive substring check, so the phrase may be
// embedded in a longer sentence.
var naturalLanguagePatterns = []struct {
	phrase string
	expr   string
}{
	{"every morning", "0 9 * * *"},
	{"every evening", "0 18 * * *"},
	{"every monday", "0 9 * * 1"},
	{"twice a day", "0 9,17 * * *"},
	{"every hour", "0 * * * *"},
	{"every 30 minutes", "*/30 * * * *"},
}

// ResolveSchedule resolves user input to a cron expression: phrase
// table first, then literal cron validation, then the interpreter.
// Interpreter output is validated before being trusted; malformed
// output is rejected rather than armed as a broken timer.
func (s *Scheduler) ResolveSchedule(ctx context.Context, input string) (string, error) {
	lower := strings.ToLower(input)
	for _, p := range naturalLanguagePatterns {
		if strings.Contains(lower, p.phrase) {
			return p.expr, nil
		}
	}

	if _, err := cronParser.Parse(input); err == nil {
		return input, nil
	}

	if s.Interpreter == nil {
		return "", fmt.Errorf("%w: %q", ErrScheduleResolution, input)
	}

	expr, err := s.Interpreter.InterpretSchedule(ctx, input)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrScheduleResolution, input, err)
	}
	expr = strings.TrimSpace(expr)
	if _, err := cronParser.Parse(expr); err != nil {
		return "", fmt.Errorf("%w: interpreter produced %q: %v", ErrScheduleResolution, expr, err)
	}
	return expr, nil
}
