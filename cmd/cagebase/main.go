package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"

	"github.com/cagebase/cagebase/internal/config"
	"github.com/cagebase/cagebase/internal/database"
	"github.com/cagebase/cagebase/internal/jobs"
	"github.com/cagebase/cagebase/internal/output"
	"github.com/cagebase/cagebase/internal/services"
)

const usage = `Usage: cagebase <command> [flags]

Commands:
  migrate                 run database migrations
  serve                   run reconciliation on an interval until interrupted
  reconcile [-dry-run]    match and link all unlinked perspective records
  audit [-slack]          run the consistency check and print (or post) issues
  link <uuid>             match and link a single perspective record
  sync-fight <uuid>       propagate an authoritative fight edit to its perspectives
  resolve <uuid>          print the live overlay view of a perspective record
  record <fighter-uuid>   print a fighter's full record, live overlay applied
  conflicts <uuid>        print field-level conflicts of a linked perspective
  import <file>           import legacy records from a JSON-lines file
`

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it (this is fine if using environment variables): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := database.Connect(cfg.DatabaseURL, logger.Warn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	db := database.DB

	tuning, err := config.LoadMatchTuning(cfg.MatchTuningFile)
	if err != nil {
		log.Fatalf("Failed to load match tuning: %v", err)
	}

	fights := database.NewFightStore(db)
	perspectives := database.NewPerspectiveStore(db)
	matcher := services.NewMatcher(fights, cfg.Comparer(tuning))
	synchronizer := services.NewSynchronizer(fights, perspectives)

	ctx := context.Background()

	switch os.Args[1] {
	case "migrate":
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

	case "serve":
		job := jobs.NewReconciliationJob(db, matcher, synchronizer, cfg.Workers, cfg.ErrorSampleLimit)
		interval := time.Duration(cfg.ReconcileIntervalMinutes) * time.Minute
		log.Printf("Reconciliation scheduler started (interval %s)", interval)

		stop := make(chan struct{})
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigs
			log.Println("Shutdown signal received")
			close(stop)
		}()
		job.Start(interval, stop)

	case "reconcile":
		fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
		dryRun := fs.Bool("dry-run", false, "report intended links without writing")
		fs.Parse(os.Args[2:])

		job := jobs.NewReconciliationJob(db, matcher, synchronizer, cfg.Workers, cfg.ErrorSampleLimit)
		stats, err := job.Run(ctx, *dryRun)
		if err != nil {
			log.Fatalf("Reconciliation failed: %v", err)
		}
		printJSON(stats)
		if reporter := output.NewSlackReporter(cfg.SlackBotToken, cfg.SlackReportChannel); reporter != nil {
			if err := reporter.PostRunSummary(stats); err != nil {
				log.Printf("Slack report failed: %v", err)
			}
		}

	case "audit":
		fs := flag.NewFlagSet("audit", flag.ExitOnError)
		toSlack := fs.Bool("slack", false, "post the digest to the configured Slack channel")
		fs.Parse(os.Args[2:])

		checker := services.NewConsistencyChecker(fights, perspectives)
		issues, err := checker.Check(ctx)
		if err != nil {
			log.Fatalf("Consistency check failed: %v", err)
		}
		printJSON(issues)
		if *toSlack {
			reporter := output.NewSlackReporter(cfg.SlackBotToken, cfg.SlackReportChannel)
			if reporter == nil {
				log.Fatalf("Slack reporting requested but SLACK_BOT_TOKEN is not set")
			}
			if err := reporter.PostIssueDigest(issues); err != nil {
				log.Fatalf("Slack report failed: %v", err)
			}
		}

	case "link":
		recordUUID := requireArg(2, "perspective uuid")
		rec, err := perspectives.GetByUUID(ctx, recordUUID)
		if err != nil {
			log.Fatalf("Failed to load record %s: %v", recordUUID, err)
		}
		outcome, err := matcher.Match(ctx, rec)
		if err != nil {
			log.Fatalf("Matching failed: %v", err)
		}
		if err := outcome.Err(); err != nil {
			log.Fatalf("Record %s not linked: %v", recordUUID, err)
		}
		if _, err := synchronizer.Link(ctx, rec, outcome.Fight, outcome.Tier, outcome.Similarity); err != nil {
			log.Fatalf("Link failed: %v", err)
		}
		log.Printf("Record %s linked to fight %s (tier %s, similarity %.2f)",
			recordUUID, outcome.FightUUID, outcome.Tier, outcome.Similarity)

	case "sync-fight":
		fightUUID := requireArg(2, "fight uuid")
		if err := synchronizer.OnFightChanged(ctx, fightUUID); err != nil {
			log.Fatalf("Sync of fight %s failed: %v", fightUUID, err)
		}
		log.Printf("Fight %s synchronized", fightUUID)

	case "resolve":
		perspectiveUUID := requireArg(2, "perspective uuid")
		resolver := services.NewResolver(fights, perspectives)
		view, err := resolver.Resolve(ctx, perspectiveUUID)
		if err != nil {
			log.Fatalf("Resolve failed: %v", err)
		}
		printJSON(view)

	case "record":
		fighterUUID := requireArg(2, "fighter uuid")
		recs, err := perspectives.ByFighter(ctx, fighterUUID)
		if err != nil {
			log.Fatalf("Failed to load records for fighter %s: %v", fighterUUID, err)
		}
		resolver := services.NewResolver(fights, perspectives)
		views := make([]*services.ResolvedView, 0, len(recs))
		for i := range recs {
			view, err := resolver.Resolve(ctx, recs[i].UUID)
			if err != nil {
				log.Fatalf("Resolve of record %s failed: %v", recs[i].UUID, err)
			}
			views = append(views, view)
		}
		printJSON(views)

	case "conflicts":
		perspectiveUUID := requireArg(2, "perspective uuid")
		detector := services.NewConflictDetector(fights, perspectives)
		conflicts, err := detector.Detect(ctx, perspectiveUUID)
		if err != nil {
			log.Fatalf("Conflict detection failed: %v", err)
		}
		if len(conflicts) == 0 {
			fmt.Println("no conflicts")
			return
		}
		printJSON(conflicts)

	case "import":
		path := requireArg(2, "input file")
		importer := services.NewImporter(perspectives)
		if err := importFile(ctx, importer, path); err != nil {
			log.Fatalf("Import failed: %v", err)
		}

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// importFile reads one LegacyImport JSON object per line. Bad lines are
// logged and skipped so one malformed entry never aborts the import.
func importFile(ctx context.Context, importer *services.Importer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	imported, skipped := 0, 0
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var in services.LegacyImport
		if err := json.Unmarshal(scanner.Bytes(), &in); err != nil {
			log.Printf("Line %d: invalid JSON: %v", line, err)
			skipped++
			continue
		}
		if _, err := importer.ImportLegacy(ctx, in); err != nil {
			log.Printf("Line %d: %v", line, err)
			skipped++
			continue
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	log.Printf("Import finished: %d imported, %d skipped", imported, skipped)
	return nil
}

func requireArg(i int, name string) string {
	if len(os.Args) <= i {
		fmt.Fprintf(os.Stderr, "missing %s\n\n%s", name, usage)
		os.Exit(2)
	}
	return os.Args[i]
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(data))
}
