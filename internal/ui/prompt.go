package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrHeadlessNoDefault is returned when a headless run reaches a
// prompt that has no default to fall back on.
var ErrHeadlessNoDefault = errors.New("ui: interactive input required but no TTY is attached")

// ErrCancelled is returned when the operator aborts a prompt.
var ErrCancelled = errors.New("ui: cancelled")

// Prompter collects operator input. Injected into the orchestrator and
// controller so their logic is testable without a terminal.
type Prompter interface {
	// Input asks for a free-text value, offering def as the initial value.
	Input(title, def string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(title string) (bool, error)

	// Token asks for an exact-match confirmation token. No default is
	// offered; an empty reply is returned as-is for the caller to judge.
	Token(title string) (string, error)
}

// HuhPrompter renders prompts with huh forms. In headless mode Input
// returns its default, Confirm declines, and Token fails: destructive
// confirmation can never be implied without a TTY.
type HuhPrompter struct {
	headless *HeadlessManager
}

// NewHuhPrompter creates the production Prompter.
func NewHuhPrompter(hm *HeadlessManager) *HuhPrompter {
	return &HuhPrompter{headless: hm}
}

// Input implements Prompter.
func (p *HuhPrompter) Input(title, def string) (string, error) {
	if p.headless.IsHeadless() {
		if def == "" {
			return "", ErrHeadlessNoDefault
		}
		return def, nil
	}

	value := def
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).Value(&value),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("prompt: %w", err)
	}
	if value == "" {
		value = def
	}
	return value, nil
}

// Confirm implements Prompter.
func (p *HuhPrompter) Confirm(title string) (bool, error) {
	if p.headless.IsHeadless() {
		return false, nil
	}

	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrCancelled
		}
		return false, fmt.Errorf("prompt: %w", err)
	}
	return confirmed, nil
}

// Token implements Prompter.
func (p *HuhPrompter) Token(title string) (string, error) {
	if p.headless.IsHeadless() {
		return "", ErrHeadlessNoDefault
	}

	var value string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).Value(&value),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("prompt: %w", err)
	}
	return value, nil
}
