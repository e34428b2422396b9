// Package approval evaluates the auto-approval policy for shell commands
// against resolved settings.
//
// The policy is read from EffectiveSettings: autoApprovalEnabled gates the
// whole mechanism, and allowedCommands lists the patterns a command must
// match to run without asking. Evaluation is pure; executing or denying the
// command is the caller's job.
package approval

import (
	"fmt"
	"strings"

	"github.com/codeloom-ai/codeloom/pkg/types"
)

// Policy is an immutable auto-approval policy.
type Policy struct {
	enabled  bool
	patterns []string
}

// FromSettings builds the policy a resolved settings tree implies.
func FromSettings(s *types.EffectiveSettings) *Policy {
	p := &Policy{}
	if s == nil {
		return p
	}
	p.enabled = s.GlobalSettings.AutoApprovalEnabled != nil && *s.GlobalSettings.AutoApprovalEnabled
	p.patterns = s.GlobalSettings.AllowedCommands
	return p
}

// Enabled reports whether auto-approval is switched on at all.
func (p *Policy) Enabled() bool { return p.enabled }

// Decision is the outcome of evaluating one command line.
type Decision struct {
	Approved bool     `json:"approved"`
	Reason   string   `json:"reason"`
	Matched  []string `json:"matched,omitempty"`
}

// Evaluate decides whether a command line is auto-approved. Every simple
// command in the line must match an allowed pattern; one unmatched command
// rejects the whole line.
func (p *Policy) Evaluate(command string) Decision {
	if !p.enabled {
		return Decision{Reason: "auto-approval disabled"}
	}

	commands, err := ParseCommand(command)
	if err != nil {
		return Decision{Reason: err.Error()}
	}
	if len(commands) == 0 {
		return Decision{Reason: "no commands found"}
	}

	var matched []string
	for _, cmd := range commands {
		pattern, ok := p.match(cmd)
		if !ok {
			return Decision{Reason: fmt.Sprintf("%q matches no allowed pattern", cmd.Name)}
		}
		matched = append(matched, pattern)
	}

	return Decision{Approved: true, Reason: "all commands allowed", Matched: matched}
}

func (p *Policy) match(cmd Command) (string, bool) {
	for _, pattern := range p.patterns {
		if MatchPattern(pattern, cmd) {
			return pattern, true
		}
	}
	return "", false
}

// MatchPattern checks a command against one allowed pattern.
//
// A pattern is a space-separated word list. "*" matches any remaining
// words; a pattern without a wildcard matches when its words are a prefix
// of the command, so "git status" allows "git status -s" but not
// "git stash".
func MatchPattern(pattern string, cmd Command) bool {
	parts := strings.Fields(pattern)
	if len(parts) == 0 {
		return false
	}

	words := append([]string{cmd.Name}, cmd.Args...)
	for i, part := range parts {
		if part == "*" {
			return true
		}
		if i >= len(words) || part != words[i] {
			return false
		}
	}
	return true
}
