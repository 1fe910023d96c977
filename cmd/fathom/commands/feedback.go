package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fathomdive/fathom/internal/database"
	"github.com/fathomdive/fathom/pkg/jsonutil"
	"github.com/fathomdive/fathom/pkg/timeutil"
)

var (
	feedbackStatus string
	feedbackLimit  int
	feedbackJSON   bool
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Review chatbot feedback",
	Example: `  fathom feedback --status pending
  fathom feedback resolve 4f2a91c8
  fathom feedback dismiss 4f2a91c8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		filter := database.FeedbackFilter{Limit: feedbackLimit}
		if feedbackStatus != "" {
			filter.Status = &feedbackStatus
		}
		records, err := store.QueryFeedback(filter)
		if err != nil {
			return fmt.Errorf("querying feedback: %w", err)
		}

		if feedbackJSON {
			b, _ := json.Marshal(records)
			fmt.Println(jsonutil.PrettyJSON(string(b)))
			return nil
		}

		if len(records) == 0 {
			fmt.Println("No feedback found.")
			return nil
		}
		for _, fb := range records {
			vote := "✗"
			if fb.Helpful {
				vote = "✓"
			}
			fmt.Printf("%-10s %s %-9s %-10s %s\n",
				fb.FeedbackID[:minLen(len(fb.FeedbackID), 10)], vote, fb.Status,
				timeutil.RelativeTime(fb.CreatedAt), fb.Question)
		}
		return nil
	},
}

func newFeedbackReviewCmd(verb, status string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <feedback-id>",
		Short: "Mark a feedback record as " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session := currentSession()
			if session == nil || !session.IsAdmin() {
				return fmt.Errorf("admin login required: run `fathom login` with an admin account")
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ResolveFeedback(args[0], status); err != nil {
				return err
			}
			fmt.Printf("Feedback %s marked %s.\n", args[0], status)
			return nil
		},
	}
}

func minLen(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func init() {
	feedbackCmd.Flags().StringVar(&feedbackStatus, "status", "", "filter by status (pending, resolved, dismissed)")
	feedbackCmd.Flags().IntVar(&feedbackLimit, "limit", 50, "maximum results")
	feedbackCmd.Flags().BoolVar(&feedbackJSON, "json", false, "output as JSON")
	feedbackCmd.AddCommand(newFeedbackReviewCmd("resolve", "resolved"))
	feedbackCmd.AddCommand(newFeedbackReviewCmd("dismiss", "dismissed"))
	rootCmd.AddCommand(feedbackCmd)
}
