// cmd/tools/housing-ranker/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"homematch-workers/internal/common/logger"
	"homematch-workers/internal/dataset"
	"homematch-workers/internal/matching"
	"homematch-workers/internal/models"
	"homematch-workers/internal/preferences"
	"homematch-workers/pkg/registry"
)

func main() {
	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "rank":
		return rankCmd(ctx, args, out)
	case "validate":
		return validateCmd(ctx, args, out)
	case "registry":
		return registryCmd(args, out)
	case "help":
		help(out)
		return nil
	default:
		help(out)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type datasetFlags struct {
	path     *string
	encoding *string
	seed     *int64
	verbose  *bool
}

func addDatasetFlags(fs *flag.FlagSet) datasetFlags {
	return datasetFlags{
		path:     fs.String("data", "housing_data.csv", "Path to the housing CSV export"),
		encoding: fs.String("encoding", "latin1", "CSV encoding (latin1 or utf8)"),
		seed:     fs.Int64("seed", 0, "Seed for vibe backfill (0 uses the clock)"),
		verbose:  fs.Bool("verbose", false, "Log dataset loading to stderr"),
	}
}

func (f datasetFlags) load(ctx context.Context) ([]models.Listing, error) {
	seed := *f.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log := logger.NewNoOpLogger()
	if *f.verbose {
		log = logger.NewStructured("debug", "console", "stderr")
	}
	loader := dataset.NewLoader(
		dataset.NewCSVSource(*f.path, *f.encoding),
		log,
		dataset.WithRand(rand.New(rand.NewSource(seed))),
	)
	return loader.Load(ctx)
}

func rankCmd(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("rank", flag.ContinueOnError)
	fs.SetOutput(out)
	data := addDatasetFlags(fs)
	budget := fs.Float64("budget", models.DefaultBudget, "Weekly budget in S$")
	vibes := fs.String("vibe", "", "Comma separated desired vibes (e.g. Social,Sports)")
	faculty := fs.String("faculty", "", "Faculty (e.g. \"SoC(Computing)\")")
	aircon := fs.Bool("aircon", false, "Require air-con")
	meals := fs.Bool("meals", false, "Require a meal plan")
	modules := fs.Bool("modules", false, "Want residential modules")
	room := fs.String("room", models.RoomAny, "Room preference (Any, Single, Double, Apt)")
	policy := fs.String("policy", "count", "Vibe scoring policy (count or jaccard)")
	top := fs.Int("top", 10, "Number of results in ranked mode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	raw := map[string]interface{}{
		preferences.KeyBudget:         *budget,
		preferences.KeyVibes:          *vibes,
		preferences.KeyFaculty:        *faculty,
		preferences.KeyNeedsAirCon:    *aircon,
		preferences.KeyNeedsMeals:     *meals,
		preferences.KeyWantsModules:   *modules,
		preferences.KeyRoomPreference: *room,
	}
	prefs, err := preferences.Parse(raw)
	if err != nil {
		return err
	}

	vp, err := matching.PolicyByName(*policy)
	if err != nil {
		return err
	}

	listings, err := data.load(ctx)
	if err != nil {
		return err
	}

	rec, err := matching.NewRecommender(
		matching.NewRanker(matching.NewScorer(vp), matching.WithMaxResults(*top)),
	).Recommend(ctx, listings, prefs)
	if err != nil {
		return err
	}

	printRecommendation(out, rec)
	return nil
}

func printRecommendation(out io.Writer, rec models.Recommendation) {
	fmt.Fprintf(out, "%s (%d)\n", rec.Title, len(rec.Listings))
	if rec.BudgetTip != "" {
		fmt.Fprintf(out, "Tip: %s\n", rec.BudgetTip)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tFEE\tSCORE\tMATCH\tWHY")
	for _, s := range rec.Listings {
		match := "-"
		if s.MatchPercent != nil {
			match = fmt.Sprintf("%d%%", *s.MatchPercent)
		}
		fmt.Fprintf(tw, "%d\t%s\tS$%s\t%s\t%s\t%s\n",
			s.Rank, s.Listing.Name, matching.FormatPoints(s.Listing.WeeklyFee),
			matching.FormatPoints(s.Score), match, s.Explanation)
	}
	tw.Flush()
}

func validateCmd(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(out)
	data := addDatasetFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	listings, err := data.load(ctx)
	if err != nil {
		return err
	}

	var minFee, maxFee float64
	var aircon, meals, modules, defaultFee int
	vibeCounts := make(map[string]int)
	for i, l := range listings {
		if i == 0 || l.WeeklyFee < minFee {
			minFee = l.WeeklyFee
		}
		if l.WeeklyFee > maxFee {
			maxFee = l.WeeklyFee
		}
		if l.AirCon {
			aircon++
		}
		if l.MealPlan {
			meals++
		}
		if l.Modules {
			modules++
		}
		if dataset.ParseFee(l.FeeText, -1) < 0 {
			defaultFee++
		}
		for _, v := range l.Vibes {
			vibeCounts[v]++
		}
	}

	fmt.Fprintf(out, "Listings:        %d\n", len(listings))
	fmt.Fprintf(out, "Weekly fee:      S$%s - S$%s\n", matching.FormatPoints(minFee), matching.FormatPoints(maxFee))
	fmt.Fprintf(out, "Default fee:     %d\n", defaultFee)
	fmt.Fprintf(out, "Air-con:         %d\n", aircon)
	fmt.Fprintf(out, "Meal plan:       %d\n", meals)
	fmt.Fprintf(out, "Modules:         %d\n", modules)

	tags := make([]string, 0, len(vibeCounts))
	for _, tag := range models.VibeVocabulary {
		if n := vibeCounts[tag]; n > 0 {
			tags = append(tags, fmt.Sprintf("%s=%d", tag, n))
		}
	}
	fmt.Fprintf(out, "Vibes:           %s\n", strings.Join(tags, ", "))
	return nil
}

func registryCmd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("registry", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", "", "Registry file to check (defaults to the embedded registry)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		reg *registry.ActivityRegistry
		err error
	)
	if *path == "" {
		reg, err = registry.Default()
	} else {
		reg, err = registry.LoadRegistry(*path)
	}
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: housing-ranker <command> [flags]

Commands:
  rank      Rank the housing dataset for a set of preferences
  validate  Load the dataset and print summary statistics
  registry  Validate the activity registry
  help      Show this help message

Examples:
  housing-ranker rank -data housing_data.csv -budget 250 -vibe Social,Sports -faculty "SoC(Computing)" -aircon
  housing-ranker rank -data housing_data.csv -policy jaccard -top 5 -seed 42
  housing-ranker validate -data housing_data.csv -encoding utf8
  housing-ranker registry -path configs/activity-registry.json

Use 'housing-ranker <command> -h' for more information about a command.`)
}
