package main

import (
	"errors"
	"fmt"
	"strings"

	"slack-file-cleaner/models"
	"slack-file-cleaner/processor"
	"slack-file-cleaner/report"
	"slack-file-cleaner/units"

	"github.com/spf13/viper"
)

var (
	errMissingToken = errors.New("slack API token required. Run with option -h for more info")
	errNoMode       = errors.New("please specify filetypes, a size or an age to delete, or choose to list all files. Run with option -h for more info")
)

// options are the validated settings of one run
type options struct {
	token  string
	apiURL string
	format string
	yes    bool
	run    processor.Config
}

func loadOptions() (options, error) {
	opts := options{
		token:  viper.GetString("token"),
		apiURL: viper.GetString("api_url"),
		format: viper.GetString("format"),
		yes:    viper.GetBool("yes"),
	}

	if opts.token == "" {
		return options{}, errMissingToken
	}

	opts.run.List = viper.GetBool("list")
	filter := models.FilterSpec{
		Types:  splitTypes(viper.GetStringSlice("types")),
		DryRun: viper.GetBool("dry"),
	}

	if size := viper.GetString("size"); size != "" {
		minSize, err := units.ParseSize(size)
		if err != nil {
			return options{}, err
		}
		filter.MinSize = minSize
		filter.HasMinSize = true
	}

	if viper.IsSet("date") {
		days := viper.GetInt("date")
		if days < 0 {
			return options{}, fmt.Errorf("invalid age %d: days must not be negative", days)
		}
		filter.MaxAgeDays = days
		filter.HasMaxAge = true
	}

	if !opts.run.List && !filter.Active() {
		return options{}, errNoMode
	}

	if opts.format == "" {
		opts.format = report.FormatTable
	}
	if !report.ValidFormat(opts.format) {
		return options{}, fmt.Errorf("unknown format %q (valid: %s, %s)", opts.format, report.FormatTable, report.FormatYAML)
	}

	opts.run.Filter = filter
	return opts, nil
}

// splitTypes accepts both repeated flags and comma separated values
func splitTypes(values []string) []string {
	var types []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	return types
}
