// Package interactive implements terminal prompts for the CLI
package interactive

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/config"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// ErrNonInteractive is returned when a prompt is required in non-interactive mode
var ErrNonInteractive = errors.New("interactive prompt not available in non-interactive mode")

// Prompter asks the operator to confirm batches and pick contracts
type Prompter struct {
	nonInteractive bool
}

// NewPrompter creates a new prompter
func NewPrompter(cfg *config.RuntimeConfig) *Prompter {
	return &Prompter{nonInteractive: cfg.NonInteractive}
}

// Confirm asks a yes/no question. A declined prompt returns false without error.
func (p *Prompter) Confirm(label string) (bool, error) {
	if p.nonInteractive {
		return false, ErrNonInteractive
	}
	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return true, nil
}

// SelectContract picks one adopted contract. A single candidate is returned
// without prompting.
func (p *Prompter) SelectContract(ids []models.ContractID, label string) (models.ContractID, error) {
	if len(ids) == 0 {
		return "", fmt.Errorf("no adopted contracts to select from")
	}
	if len(ids) == 1 {
		return ids[0], nil
	}
	if p.nonInteractive {
		return "", ErrNonInteractive
	}

	options := make([]string, len(ids))
	for i, id := range ids {
		options[i] = string(id)
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}
	sel := promptui.Select{
		Label:             label,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          fuzzySearcher(options),
	}
	index, _, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return ids[index], nil
}

// fuzzySearcher matches by substring first, then by fuzzy subsequence
func fuzzySearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}
		input = strings.ToLower(input)
		item := strings.ToLower(items[index])
		if strings.Contains(item, input) {
			return true
		}
		return len(fuzzy.Find(input, []string{item})) > 0
	}
}

// Suggest returns up to limit known ids that fuzzily match input, best first
func Suggest(input string, known []models.ContractID, limit int) []models.ContractID {
	if input == "" || len(known) == 0 {
		return nil
	}
	names := make([]string, len(known))
	for i, id := range known {
		names[i] = strings.ToLower(string(id))
	}
	matches := fuzzy.Find(strings.ToLower(input), names)
	sort.Stable(matches)

	out := make([]models.ContractID, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, known[m.Index])
	}
	return out
}
