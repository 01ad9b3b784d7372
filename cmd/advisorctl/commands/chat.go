package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hairstory/backend/config"
	"github.com/hairstory/backend/internal/app"
	"github.com/hairstory/backend/internal/domain"
	"github.com/hairstory/backend/internal/usecase"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	openingQuestion = "Tell me about your hair! What's your hair story?"
	chatGoodbye     = "Thank you for sharing your hair story with me! Have a wonderful day!"
	chatErrorReply  = "Sorry, something went wrong. Please try again."
)

// chatTurner answers one conversation turn
type chatTurner interface {
	Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error)
}

func newChatCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the haircare assistant in the terminal",
		Long: `Chat runs the hair-profile conversation interactively. Type quit, exit
or bye to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}

			components, err := app.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer components.Close()

			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), components.Chat)
		},
	}
}

// runChat drives a conversation over in/out until the user quits or input ends
func runChat(ctx context.Context, in io.Reader, out io.Writer, chat chatTurner) error {
	fmt.Fprintln(out, "Welcome to the Hairstory Haircare Assistant!")
	fmt.Fprintln(out, "(Type 'quit' to exit)")
	fmt.Fprintf(out, "\n%s\n", openingQuestion)

	history := []domain.Message{{Role: domain.RoleAssistant, Content: openingQuestion}}
	profile := domain.HairProfile{}
	profiled := false

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			continue
		case "quit", "exit", "bye":
			fmt.Fprintf(out, "\n%s\n", chatGoodbye)
			return nil
		}

		history = append(history, domain.Message{Role: domain.RoleUser, Content: input})

		resp, err := chat.Chat(ctx, &domain.ChatRequest{ConversationHistory: history, UserProfile: profile})
		if err != nil {
			log.Error().Err(err).Msg("[CHAT] turn failed")
			fmt.Fprintf(out, "\n%s\n", chatErrorReply)
			continue
		}
		if resp.Profile != nil {
			profile = resp.Profile
		}

		reply := resp.Message
		if resp.Type == domain.ResponseTypeRecommendation {
			reply = resp.Recommendation
		}
		fmt.Fprintf(out, "\n%s\n", reply)
		history = append(history, domain.Message{Role: domain.RoleAssistant, Content: reply})

		if !profiled && usecase.IsProfileComplete(profile) {
			profiled = true
			fmt.Fprintln(out, "\nYour hair profile is complete.")
			printProfile(out, profile)
		} else if resp.Type == domain.ResponseTypeRecommendation {
			printProfile(out, profile)
		}
	}
}

func printProfile(out io.Writer, profile domain.HairProfile) {
	fmt.Fprintln(out, "\nHAIR PROFILE:")
	for _, line := range usecase.ProfileLines(profile) {
		fmt.Fprintf(out, "  %s\n", line)
	}
	fmt.Fprintln(out)
}

// loadConfig loads the service configuration with the root catalog flags applied
func loadConfig(cmd *cobra.Command, root *rootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("catalog") {
		cfg.Catalog.Path = root.catalogPath
	}
	if cmd.Flags().Changed("catalog-fallback") {
		cfg.Catalog.FallbackPath = root.fallbackPath
	}
	cfg.Matching.EnableDebugLogging = root.verbose
	return cfg, nil
}
