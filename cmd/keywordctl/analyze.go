package main

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/courtsense/internal/clients"
	"github.com/spacesedan/courtsense/internal/keywords"
	"github.com/spacesedan/courtsense/internal/models"
	"github.com/spacesedan/courtsense/internal/sentiment"
)

func newAnalyzeCmd(get appFunc) *cobra.Command {
	var (
		language string
		external bool
		offline  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Score a review text with the current lexicon",
		Long: `Score a review text the way the moderator does and print the result as JSON.

--offline skips the database and scores with the built-in fallback lexicon.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			text := strings.Join(args, " ")

			var result models.SentimentResult
			if offline {
				result = sentiment.AnalyzeWithFallbackLexicon(text)
			} else {
				var ext sentiment.Scorer
				if external {
					client, err := clients.GetOpenAIClient(a.settings.OpenAIAPIKey, a.settings.OpenAIBaseURL, a.settings.OpenAIModel)
					if err != nil {
						return err
					}
					ext = sentiment.NewExternalModelScorer(client, 30*time.Second)
				}
				analyzer := sentiment.NewAnalyzer(sentiment.NewRuleBasedScorer(a.accessor), ext)
				result = analyzer.AnalyzeSentiment(cmd.Context(), text, external, language)
			}

			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", keywords.DefaultLanguage, "language of the text")
	cmd.Flags().BoolVar(&external, "external", false, "score with the external model, falling back to rules")
	cmd.Flags().BoolVar(&offline, "offline", false, "use the built-in fallback lexicon without a database")
	cmd.MarkFlagsMutuallyExclusive("external", "offline")
	return cmd
}
