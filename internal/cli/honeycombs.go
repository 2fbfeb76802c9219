package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/zanngujjar/ai-assistants/internal/models"
)

func (a *App) manageHoneycombs(ctx context.Context) error {
	for {
		choice, ok := a.choose("Honeycomb Management:", []string{
			"View Honeycombs",
			"Create New Honeycomb",
			"Return to Main Menu",
		})
		if !ok || choice == 2 {
			return nil
		}

		var err error
		switch choice {
		case 0:
			err = a.viewAndManageHoneycombs(ctx)
		case 1:
			err = a.createHoneycomb(ctx)
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) createHoneycomb(ctx context.Context) error {
	name, ok := a.promptNonEmpty("Enter honeycomb name:")
	if !ok {
		return nil
	}
	description, ok := a.promptNonEmpty("Enter honeycomb description:")
	if !ok {
		return nil
	}

	var folder string
	if a.confirm("Do you want to include files from a folder?") {
		folder, ok = a.promptFolder()
		if !ok {
			return nil
		}
	}

	honeycomb, err := a.hive.CreateHoneycomb(ctx, name, description, folder)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Successfully created honeycomb: %s\n", honeycomb.Name)
	for _, file := range honeycomb.Files {
		if file.OpenAIFileID == "" {
			fmt.Fprintf(a.out, "  %s: registration failed, not uploaded\n", file.Name)
		} else {
			fmt.Fprintf(a.out, "  %s: %s\n", file.Name, file.OpenAIFileID)
		}
	}
	return nil
}

func (a *App) viewAndManageHoneycombs(ctx context.Context) error {
	honeycombs, err := a.hive.ListHoneycombs()
	if err != nil {
		return err
	}
	if len(honeycombs) == 0 {
		fmt.Fprintln(a.out, "No honeycombs found.")
		return nil
	}

	options := make([]string, 0, len(honeycombs)+1)
	for _, h := range honeycombs {
		options = append(options, fmt.Sprintf("%s - %s (%d files)", h.Name, h.Description, len(h.Files)))
	}
	options = append(options, "Return")

	idx, ok := a.choose("Select a honeycomb:", options)
	if !ok || idx == len(honeycombs) {
		return nil
	}
	honeycomb := honeycombs[idx]

	action, ok := a.choose(fmt.Sprintf("What would you like to do with %s?", honeycomb.Name), []string{
		"View Details",
		"Add Files",
		"Delete Honeycomb",
		"Return",
	})
	if !ok {
		return nil
	}

	switch action {
	case 0:
		a.printHoneycomb(honeycomb)
		a.pause()
	case 1:
		folder, ok := a.promptFolder()
		if !ok {
			return nil
		}
		if err := a.hive.AddFiles(ctx, honeycomb.ID, folder); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Successfully added all files to honeycomb")
	case 2:
		if a.confirm(fmt.Sprintf("Are you sure you want to delete %s?", honeycomb.Name)) {
			if err := a.hive.DeleteHoneycomb(ctx, honeycomb.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Successfully deleted honeycomb: %s\n", honeycomb.Name)
		}
	}
	return nil
}

func (a *App) printHoneycomb(h *models.Honeycomb) {
	fmt.Fprintln(a.out, "\nHoneycomb Details:")
	fmt.Fprintf(a.out, "Name: %s\n", h.Name)
	fmt.Fprintf(a.out, "Description: %s\n", h.Description)
	fmt.Fprintf(a.out, "Created: %s\n", h.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(a.out, "Files (%d):\n", len(h.Files))
	for _, file := range h.Files {
		fmt.Fprintf(a.out, "- %s (%s)\n", file.Name, file.Path)
	}
}

// promptFolder asks for a directory that contains at least one .txt file.
func (a *App) promptFolder() (string, bool) {
	for {
		folder, ok := a.promptNonEmpty("Enter folder path:")
		if !ok {
			return "", false
		}
		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			fmt.Fprintln(a.out, "Please enter a valid directory path")
			continue
		}
		entries, err := os.ReadDir(folder)
		if err != nil {
			fmt.Fprintln(a.out, "Please enter a valid directory path")
			continue
		}
		txtCount := 0
		for _, entry := range entries {
			if !entry.IsDir() && len(entry.Name()) > 4 && entry.Name()[len(entry.Name())-4:] == ".txt" {
				txtCount++
			}
		}
		if txtCount == 0 {
			fmt.Fprintln(a.out, "Directory must contain at least one .txt file")
			continue
		}
		fmt.Fprintf(a.out, "Found %d .txt files in %s\n", txtCount, folder)
		return folder, true
	}
}
