package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"slack-file-cleaner/models"
	"slack-file-cleaner/units"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Supported list report formats
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	sizeStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Renderer writes reports to the console
type Renderer struct {
	out    io.Writer
	status io.Writer
	format string
	bar    *progress.Model
}

// Option configures a Renderer
type Option func(*Renderer)

// WithFormat selects the list report format
func WithFormat(format string) Option {
	return func(r *Renderer) {
		if format != "" {
			r.format = format
		}
	}
}

// WithProgressOutput sends listing progress to w instead of the report output
func WithProgressOutput(w io.Writer) Option {
	return func(r *Renderer) {
		r.status = w
	}
}

// WithProgressBar draws listing progress as a bar instead of plain lines
func WithProgressBar(width int) Option {
	return func(r *Renderer) {
		bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(width))
		r.bar = &bar
	}
}

// NewRenderer creates a renderer writing to out
func NewRenderer(out io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		out:    out,
		status: out,
		format: FormatTable,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ValidFormat reports whether format is a known list report format
func ValidFormat(format string) bool {
	return format == FormatTable || format == FormatYAML
}

// Progress reports how much of the listing has been fetched
func (r *Renderer) Progress(cursor models.PageCursor) {
	percent := cursor.Percent()
	if r.bar == nil {
		fmt.Fprintf(r.status, "Fetching files: %d%%\n", percent)
		return
	}

	fmt.Fprintf(r.status, "\rFetching files %s", r.bar.ViewAs(float64(percent)/100))
	if cursor.IsFinal() {
		fmt.Fprintln(r.status)
	}
}

// Criteria announces what the run is going to delete
func (r *Renderer) Criteria(spec models.FilterSpec) {
	if len(spec.Types) > 0 {
		fmt.Fprintln(r.out, "All files with these filetypes will be deleted:", strings.Join(spec.Types, ","))
	}
	if spec.HasMinSize {
		fmt.Fprintln(r.out, "All files with a filesize above this value will be deleted:", units.Format(spec.MinSize))
	}
	if spec.HasMaxAge {
		fmt.Fprintf(r.out, "All files older than %d days will be deleted\n", spec.MaxAgeDays)
	}
	if spec.DryRun {
		fmt.Fprintln(r.out, "DRY RUN: No files will actually be deleted.")
	}
}

// Files renders every file ordered by size, largest first, followed by the total
func (r *Renderer) Files(files []models.FileRecord) error {
	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, func(a, b models.FileRecord) int {
		return cmp.Compare(b.Size, a.Size)
	})

	var total int64
	for _, f := range files {
		total += f.Size
	}

	if r.format == FormatYAML {
		return r.filesYAML(sorted, total)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SIZE", "NAME").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return sizeStyle
			default:
				return cellStyle
			}
		})
	for _, f := range sorted {
		t.Row(units.Format(f.Size), f.Name)
	}

	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintln(r.out, "Total:", units.Format(total))
	return nil
}

type yamlFile struct {
	Size     string `yaml:"size"`
	Bytes    int64  `yaml:"bytes"`
	Name     string `yaml:"name"`
	Filetype string `yaml:"filetype"`
	ID       string `yaml:"id"`
	Created  string `yaml:"created"`
}

type yamlListing struct {
	Files      []yamlFile `yaml:"files"`
	Total      string     `yaml:"total"`
	TotalBytes int64      `yaml:"total_bytes"`
}

func (r *Renderer) filesYAML(sorted []models.FileRecord, total int64) error {
	listing := yamlListing{
		Files:      make([]yamlFile, 0, len(sorted)),
		Total:      units.Format(total),
		TotalBytes: total,
	}
	for _, f := range sorted {
		listing.Files = append(listing.Files, yamlFile{
			Size:     units.Format(f.Size),
			Bytes:    f.Size,
			Name:     f.Name,
			Filetype: f.Filetype,
			ID:       f.ID,
			Created:  f.Created().UTC().Format(time.RFC3339),
		})
	}

	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(listing); err != nil {
		return fmt.Errorf("failed to encode listing: %w", err)
	}
	return enc.Close()
}

// Summary prints the result of a deletion pass
func (r *Renderer) Summary(stats models.DeletionStats, dryRun bool) {
	fmt.Fprintf(r.out, "Deleted: %d files (%s)\n", stats.DeletedCount, units.Format(stats.DeletedBytes))
	if stats.Failed > 0 {
		fmt.Fprintf(r.out, "Failed: %d files\n", stats.Failed)
	}
	if dryRun {
		fmt.Fprintln(r.out, "DRY RUN: No files were actually deleted.")
	}
}
