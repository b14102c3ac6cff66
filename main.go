package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"slack-file-cleaner/clients"
	"slack-file-cleaner/processor"
	"slack-file-cleaner/report"
	"slack-file-cleaner/units"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "slack-file-cleaner",
		Short: "List and delete files stored in a Slack workspace",
		Long: `slack-file-cleaner inventories the files of a Slack workspace and
deletes the ones you no longer need.

List every file ordered by size, or delete files by filetype, by minimum
size or by age. Use --dry to see what would be deleted first.

Examples:
  slack-file-cleaner --token xoxp-... --list
  slack-file-cleaner --token xoxp-... --types png,jpg --dry
  slack-file-cleaner --token xoxp-... --size 100MiB --date 90`,
		Run: process,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.slack-file-cleaner.yaml)")

	// Slack flags
	rootCmd.Flags().StringP("token", "t", "", "Your Slack API token")
	rootCmd.Flags().String("api-url", clients.DefaultBaseURL, "Slack Web API base URL")

	// Mode flags
	rootCmd.Flags().BoolP("list", "l", false, "List all files on Slack ordered by filesize")
	rootCmd.Flags().StringSliceP("types", "x", nil, `A list of filetypes (e.g. "png,jpg,mp3") which will be deleted`)
	rootCmd.Flags().StringP("size", "s", "", "All files above the specified size will be deleted (e.g. 100MiB, 42kB)")
	rootCmd.Flags().IntP("date", "d", 0, "All files older than the specified number of days will be deleted")
	rootCmd.Flags().Bool("dry", false, "Perform a dry run only")
	rootCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")
	rootCmd.Flags().String("format", report.FormatTable, "List output format (table, yaml)")

	// Bind flags to viper
	viper.BindPFlag("token", rootCmd.Flags().Lookup("token"))
	viper.BindPFlag("api_url", rootCmd.Flags().Lookup("api-url"))
	viper.BindPFlag("list", rootCmd.Flags().Lookup("list"))
	viper.BindPFlag("types", rootCmd.Flags().Lookup("types"))
	viper.BindPFlag("size", rootCmd.Flags().Lookup("size"))
	viper.BindPFlag("date", rootCmd.Flags().Lookup("date"))
	viper.BindPFlag("dry", rootCmd.Flags().Lookup("dry"))
	viper.BindPFlag("yes", rootCmd.Flags().Lookup("yes"))
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))

	// Bind environment variables
	viper.BindEnv("token", "SLACK_TOKEN")
	viper.BindEnv("api_url", "SLACK_API_URL")
}

func initConfig() {
	if cfgFile != "" {
		// Use specified config file
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".slack-file-cleaner")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func process(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	opts, err := loadOptions()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	client := clients.NewSlackClient(opts.apiURL, opts.token)
	if err := client.Authenticate(ctx); err != nil {
		log.Fatalf("❌ Error connecting to Slack: %v", err)
	}

	renderOpts := []report.Option{report.WithFormat(opts.format)}
	if opts.format == report.FormatYAML {
		renderOpts = append(renderOpts, report.WithProgressOutput(os.Stderr))
	} else if isTerminal(os.Stdout) {
		renderOpts = append(renderOpts, report.WithProgressBar(40))
	}

	deps := &processor.Dependencies{
		Client:   client,
		Renderer: report.NewRenderer(os.Stdout, renderOpts...),
		Logger:   log.Default(),
	}
	if !opts.yes && isTerminal(os.Stdin) {
		deps.Confirm = confirmDeletion
	}

	proc := processor.NewProcessor(deps)
	if err := proc.Main(ctx, opts.run); err != nil {
		if errors.Is(err, clients.ErrNoResults) {
			log.Fatalf("❌ No files found older than %d days", opts.run.Filter.MaxAgeDays)
		}
		if errors.Is(err, processor.ErrConfirm) {
			log.Fatalf("❌ Could not ask for confirmation: %v", err)
		}
		log.Fatalf("❌ Error connecting to Slack: %v", err)
	}
}

func confirmDeletion(count int, bytes int64) (bool, error) {
	ok := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Delete %d files (%s)?", count, units.Format(bytes)),
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
