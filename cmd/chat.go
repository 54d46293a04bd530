package cmd

import (
	"errors"
	"strings"

	"github.com/thariqabe666/finalproj-group-2/internal/interview"
	"github.com/thariqabe666/finalproj-group-2/internal/logger"
	"github.com/thariqabe666/finalproj-group-2/internal/orchestrator"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	menuChat        = "Chat with the assistant"
	menuInterview   = "Run a mock interview"
	menuCoverLetter = "Draft a cover letter"
	menuExit        = "Exit"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant interactively in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			return err
		}

		config, err := getConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		engine, cleanup, err := buildEngine(ctx, config, log)
		if err != nil {
			return err
		}
		defer cleanup()

		// One session for the whole interactive run.
		var sessionID string

		for {
			menu := promptui.Select{
				Label: "What do you want to do",
				Items: []string{menuChat, menuInterview, menuCoverLetter, menuExit},
			}
			_, choice, err := menu.Run()
			if err != nil {
				return err
			}

			switch choice {
			case menuChat:
				sessionID, err = runChatLoop(cmd, engine, sessionID)
			case menuInterview:
				sessionID, err = runInterview(cmd, engine, sessionID)
			case menuCoverLetter:
				sessionID, err = runCoverLetter(cmd, engine, sessionID)
			case menuExit:
				return nil
			}
			if err != nil {
				return err
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChatLoop(cmd *cobra.Command, engine *orchestrator.Orchestrator, sessionID string) (string, error) {
	cmd.Println("Type your message, or /back to return to the menu.")

	for {
		input, err := readLine("You")
		if err != nil {
			return sessionID, err
		}
		if input == "/back" {
			return sessionID, nil
		}
		if input == "" {
			continue
		}

		reply, err := engine.HandleTurn(cmd.Context(), sessionID, input)
		if err != nil {
			cmd.Printf("error: %v\n", err)
			continue
		}
		sessionID = reply.SessionID
		cmd.Printf("\nAssistant: %s\n\n", reply.Content)
	}
}

func runInterview(cmd *cobra.Command, engine *orchestrator.Orchestrator, sessionID string) (string, error) {
	jobDescription, err := readLine("Paste the job description")
	if err != nil {
		return sessionID, err
	}

	start, err := engine.StartInterview(cmd.Context(), sessionID, jobDescription)
	if err != nil {
		cmd.Printf("error: %v\n", err)
		return sessionID, nil
	}
	sessionID = start.SessionID
	cmd.Printf("\nInterviewer: %s\n\n", start.Content)
	cmd.Println("Answer the questions, or /end to finish early.")

	for {
		answer, err := readLine("You")
		if err != nil {
			return sessionID, err
		}

		if answer == "/end" {
			report, err := engine.EndInterview(cmd.Context(), sessionID)
			if err != nil {
				cmd.Printf("error: %v\n", err)
				return sessionID, nil
			}
			cmd.Printf("\n%s\n\n", report.Content)
			return sessionID, nil
		}

		reply, err := engine.HandleTurn(cmd.Context(), sessionID, answer)
		if err != nil {
			if errors.Is(err, interview.ErrStateViolation) {
				return sessionID, nil
			}
			cmd.Printf("error: %v\n", err)
			continue
		}

		cmd.Printf("\nInterviewer: %s\n\n", reply.Content)
		if concluded, ok := reply.Payload["concluded"].(bool); ok && concluded {
			return sessionID, nil
		}
	}
}

func runCoverLetter(cmd *cobra.Command, engine *orchestrator.Orchestrator, sessionID string) (string, error) {
	jobDescription, err := readLine("Paste the target job")
	if err != nil {
		return sessionID, err
	}

	reply, err := engine.GenerateCoverLetter(cmd.Context(), sessionID, jobDescription)
	if err != nil {
		cmd.Printf("error: %v\n", err)
		return sessionID, nil
	}

	cmd.Printf("\n%s\n\n", reply.Content)
	return reply.SessionID, nil
}

func readLine(label string) (string, error) {
	prompt := promptui.Prompt{Label: label}
	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}
