package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/vetworks/vetmatch/internal/jobs"
	"github.com/vetworks/vetmatch/internal/logger"
	"github.com/vetworks/vetmatch/internal/matching"
	"github.com/vetworks/vetmatch/internal/server"
	"github.com/vetworks/vetmatch/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes            = "Yes"
	PromptNo             = "No"
	PromptBack           = "back"
	PromptReviewOneByOne = "Review matches one by one"
	PromptMatchesToFile  = "Dump matches to file"
	PromptFeedToFile     = "Dump job feed to file"
	PromptDropSelected   = "Drop from batch"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Save these recommendations?",
	Items: []string{PromptYes, PromptNo, PromptReviewOneByOne, PromptMatchesToFile, PromptFeedToFile},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Generate and review recommendations for a single candidate",
	Run: func(cmd *cobra.Command, _ []string) {
		recommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("user", "u", "", "candidate profile id (required)")
	recommendCmd.Flags().BoolP("auto-approve", "y", false, "save recommendations without asking for confirmation")
	recommendCmd.Flags().IntP("limit", "l", 0, "maximum number of recommendations (overrides matching.limit)")

	recommendCmd.MarkFlagRequired("user")
}

// recommend scores the active feed for one candidate and walks the result
// through an interactive review before persisting it.
func recommend(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	userID, _ := cmd.Flags().GetString("user")

	st, rdb, cleanup := connect(ctx, config, logger)
	defer cleanup()

	profile, err := st.GetProfile(ctx, userID)
	if err != nil {
		logger.Fatal("loading candidate profile", zap.String("user_id", userID), zap.Error(err))
	}

	feed, err := st.ListActiveJobs(ctx)
	if err != nil {
		logger.Fatal("loading job feed", zap.Error(err))
	}

	if feed.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no active postings in the feed"))
		return
	}

	limit := config.limit()
	if flagLimit, err := cmd.Flags().GetInt("limit"); err == nil && flagLimit > 0 {
		limit = flagLimit
	}

	matcher := matching.New(config.weights())
	recs := matcher.Generate(profile, feed, limit)

	if len(recs) == 0 {
		logger.Info("exiting", zap.String("reason", "no postings scored above the threshold"))
		return
	}

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		logger.Info("current list of matches", zap.Int("count", len(recs)))

		if err := handleAction(ctx, action, st, rdb, logger, feed, &recs); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if len(recs) == 0 {
			logger.Info("exiting", zap.String("reason", "no matches left to save"))
			return
		}
	}
}

func handleAction(ctx context.Context, action string, st *store.Store, rdb *redis.Client, logger *zap.Logger, feed *jobs.Jobs, recs *[]*jobs.Recommendation) error {
	switch action {
	case PromptYes:
		return save(ctx, st, rdb, logger, *recs)
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReviewOneByOne:
		return manualReview(logger, feed, recs)
	case PromptMatchesToFile:
		filename, err := dumpToTmpFile(*recs)
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	case PromptFeedToFile:
		filename, err := feed.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump job feed to file: %w", err)
		}
		logger.Info("dumping job feed to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// manualReview walks the recommendations one at a time and lets the operator
// drop individual matches before the batch is saved.
func manualReview(logger *zap.Logger, feed *jobs.Jobs, recs *[]*jobs.Recommendation) error {
	for {
		if len(*recs) == 0 {
			return nil
		}

		items := make([]string, 0, len(*recs)+1)
		for _, rec := range *recs {
			label := fmt.Sprintf("%s score=%d", rec.JobID, rec.Score)
			if posting := feed.FindByID(rec.JobID); posting != nil {
				label = fmt.Sprintf("%s %s / %s / score=%d",
					rec.JobID, posting.Title, posting.Company, rec.Score,
				)
			}
			items = append(items, label)
		}

		matchPrompt := promptui.Select{
			Label: "Choose a match and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := matchPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		jobID := strings.Split(selected, " ")[0]

		idx := -1
		for i, r := range *recs {
			if r.JobID == jobID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("there is no such match for job id %s", jobID)
		}

		detail, _ := json.MarshalIndent((*recs)[idx], "", "  ")
		fmt.Println(string(detail))

		actionPrompt := promptui.Select{
			Label: "Drop this match?",
			Items: []string{PromptDropSelected, PromptBack},
		}
		_, chosen, err := actionPrompt.Run()
		if err != nil {
			return err
		}

		if chosen == PromptDropSelected {
			logger.Info("match dropped from the batch",
				zap.String("job_id", jobID),
				zap.Int("score", (*recs)[idx].Score),
			)
			*recs = append((*recs)[:idx], (*recs)[idx+1:]...)
		}
	}
}

func save(ctx context.Context, st *store.Store, rdb *redis.Client, logger *zap.Logger, recs []*jobs.Recommendation) error {
	saved, err := st.SaveRecommendations(ctx, recs)
	if err != nil {
		return fmt.Errorf("saving recommendations: %w", err)
	}

	logger.Info("successfully saved recommendations", zap.Int("count", len(saved)))

	if rdb != nil && len(saved) > 0 {
		event, _ := json.Marshal(map[string]any{
			"userId": saved[0].UserID,
			"count":  len(saved),
		})
		if err := rdb.Publish(ctx, server.EventRecommendationsGenerated, event).Err(); err != nil {
			logger.Warn("publish event failed", zap.Error(err))
		}
	}

	return errExit
}

func dumpToTmpFile(recs []*jobs.Recommendation) (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return "", err
	}
	return file.Name(), nil
}
