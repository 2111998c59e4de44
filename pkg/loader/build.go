package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/metrics"
	"github.com/DipokalLab/intellect/pkg/model"
)

// BuildOptions locates the YAML sources of a document.
type BuildOptions struct {
	PersonsDir       string // Directory of <person>.yml files
	AchievementsFile string // Single YAML list of achievements

	// WarningHandler receives skipped-record messages. Defaults to the debug log.
	WarningHandler func(string)
}

// DefaultBuildOptions returns the conventional data/ layout under root.
func DefaultBuildOptions(root string) BuildOptions {
	return BuildOptions{
		PersonsDir:       filepath.Join(root, "data", "persons"),
		AchievementsFile: filepath.Join(root, "data", "achievements.yml"),
	}
}

// personFile is the on-disk shape of one person.
type personFile struct {
	ScholarID   string `yaml:"scholar_id"`
	Name        string `yaml:"name"`
	Birth       int    `yaml:"birth"`
	Death       int    `yaml:"death"`
	Field       string `yaml:"field"`
	Nationality string `yaml:"nationality"`
	PhotoURL    string `yaml:"photo_url"`
}

// achievementEntry is one item of achievements.yml.
type achievementEntry struct {
	Key          string   `yaml:"key"`
	Year         int      `yaml:"year"`
	Title        string   `yaml:"title"`
	Category     string   `yaml:"category"`
	Text         string   `yaml:"text"`
	Participants []string `yaml:"participants"`
}

// BuildResult is the assembled document plus what was skipped on the way.
type BuildResult struct {
	Document *model.GraphDocument
	Skipped  []string
}

// Build assembles a graph document from the YAML sources. Person files are
// parsed concurrently; their order in the output follows sorted file names.
// Records without an id key are skipped with a warning. Edges are emitted
// for every listed participant and are not checked here.
func Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	defer metrics.TimerWithCallback(metrics.DocumentBuild, func(d time.Duration) {
		debug.LogTiming("build graph document", d)
	})()

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) { debug.Log("build: %s", msg) }
	}
	result := &BuildResult{Document: &model.GraphDocument{
		Achievements: []model.AchievementNode{},
		Edges:        []model.Edge{},
		Persons:      []model.PersonNode{},
	}}
	skip := func(msg string) {
		result.Skipped = append(result.Skipped, msg)
		warn(msg)
	}

	files, err := filepath.Glob(filepath.Join(opts.PersonsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("listing person files: %w", err)
	}
	sort.Strings(files)

	persons, err := parsePersonFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	for i, p := range persons {
		if p.ScholarID == "" {
			skip(fmt.Sprintf("skipping %s: missing 'scholar_id'", files[i]))
			continue
		}
		result.Document.Persons = append(result.Document.Persons, model.PersonNode{
			ID:          p.ScholarID,
			Type:        string(model.KindPerson),
			Name:        p.Name,
			Birth:       p.Birth,
			Death:       p.Death,
			Field:       p.Field,
			Nationality: p.Nationality,
			PhotoURL:    p.PhotoURL,
		})
	}

	data, err := os.ReadFile(opts.AchievementsFile)
	if err != nil {
		return nil, fmt.Errorf("reading achievements: %w", err)
	}
	var entries []achievementEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", opts.AchievementsFile, err)
	}
	for i, a := range entries {
		if a.Key == "" {
			skip(fmt.Sprintf("skipping achievement #%d: missing 'key'", i+1))
			continue
		}
		result.Document.Achievements = append(result.Document.Achievements, model.AchievementNode{
			ID:       a.Key,
			Type:     string(model.KindAchievement),
			Year:     a.Year,
			Title:    a.Title,
			Category: a.Category,
			Text:     a.Text,
		})
		for _, participant := range a.Participants {
			result.Document.Edges = append(result.Document.Edges, model.Edge{Source: participant, Target: a.Key})
		}
	}

	debug.Log("build: %d persons, %d achievements, %d edges",
		len(result.Document.Persons), len(result.Document.Achievements), len(result.Document.Edges))
	return result, nil
}

// parsePersonFiles decodes every file concurrently, keeping input order.
func parsePersonFiles(ctx context.Context, files []string) ([]personFile, error) {
	out := make([]personFile, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			if err := yaml.Unmarshal(data, &out[i]); err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
