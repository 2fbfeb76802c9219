// Package cli is the interactive menu surface. It owns prompts and
// printing only; all remote and persistence failures bubble up from the
// engine packages and are reported here before returning to the menu.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/chat"
	"github.com/zanngujjar/ai-assistants/internal/hive"
	"github.com/zanngujjar/ai-assistants/internal/remote"
	"github.com/zanngujjar/ai-assistants/internal/store"
	"github.com/zanngujjar/ai-assistants/pkg/config"
)

// App wires the menu loop to the engine components.
type App struct {
	svc    remote.Service
	store  store.Store
	hive   *hive.Manager
	cfg    *config.Config
	poll   chat.PollConfig
	logger *zap.Logger

	in  *bufio.Scanner
	out io.Writer
}

func New(svc remote.Service, st store.Store, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) *App {
	poll := chat.PollConfig{
		Interval:    cfg.OpenAI.PollInterval(),
		MaxAttempts: cfg.OpenAI.PollMaxAttempts,
	}
	return &App{
		svc:    svc,
		store:  st,
		hive:   hive.NewManager(svc, st, poll, logger),
		cfg:    cfg,
		poll:   poll,
		logger: logger,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run shows the main menu until the user picks Exit or input ends.
func (a *App) Run(ctx context.Context) error {
	for {
		choice, ok := a.choose("What would you like to do?", []string{
			"Create Assistant",
			"View Assistants",
			"Use Assistant",
			"Delete Assistant",
			"View Chat History",
			"Manage Honeycombs",
			"Exit",
		})
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case 0:
			err = a.createAssistant(ctx)
		case 1:
			err = a.viewAssistants(ctx)
		case 2:
			err = a.useAssistant(ctx)
		case 3:
			err = a.deleteAssistant(ctx)
		case 4:
			err = a.viewChatHistory(ctx)
		case 5:
			err = a.manageHoneycombs(ctx)
		case 6:
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		}
		if err != nil {
			a.logger.Error("command failed", zap.Error(err))
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
	}
}

// prompt reads one line; ok is false when input ended.
func (a *App) prompt(label string) (string, bool) {
	fmt.Fprintf(a.out, "%s ", label)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *App) promptNonEmpty(label string) (string, bool) {
	for {
		answer, ok := a.prompt(label)
		if !ok {
			return "", false
		}
		if answer != "" {
			return answer, true
		}
		fmt.Fprintln(a.out, "A value is required.")
	}
}

// choose prints a numbered menu and returns the selected index.
func (a *App) choose(label string, options []string) (int, bool) {
	fmt.Fprintf(a.out, "\n%s\n", label)
	for i, option := range options {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, option)
	}
	for {
		answer, ok := a.prompt(">")
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, true
		}
		fmt.Fprintf(a.out, "Enter a number between 1 and %d.\n", len(options))
	}
}

func (a *App) confirm(label string) bool {
	answer, ok := a.prompt(label + " (y/N)")
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (a *App) pause() {
	a.prompt("Press Enter to continue...")
}
