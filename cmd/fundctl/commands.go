package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations" }
func (*migrateCmd) Usage() string {
	return `fundctl migrate

  Applies every pending schema migration to DB_PATH.
`
}
func (*migrateCmd) SetFlags(_ *flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		return fail(err)
	}
	defer e.Close()

	applied, err := database.Migrate(ctx, e.db)
	if err != nil {
		return fail(err)
	}

	if len(applied) == 0 {
		fmt.Println("database schema is up to date")
		return subcommands.ExitSuccess
	}
	for _, v := range applied {
		fmt.Printf("applied migration %d\n", v)
	}
	return subcommands.ExitSuccess
}

type confirmCmd struct {
	code string
}

func (*confirmCmd) Name() string     { return "confirm" }
func (*confirmCmd) Synopsis() string { return "confirm pending records whose NAV is available" }
func (*confirmCmd) Usage() string {
	return `fundctl confirm [-code <fund code>]

  Confirms pending trading records at the stored NAV of their date, for one
  holding or for all of them.
`
}

func (c *confirmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.code, "code", "", "Only confirm records of this holding.")
}

func (c *confirmCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		return fail(err)
	}
	defer e.Close()

	records := service.NewRecordService(e.db, e.logger)

	var n int
	if c.code != "" {
		n, err = records.ConfirmPendingForHolding(ctx, c.code)
	} else {
		n, err = records.ConfirmPending(ctx)
	}
	if err != nil {
		return fail(err)
	}

	fmt.Printf("confirmed %d record(s)\n", n)
	return subcommands.ExitSuccess
}

type snapshotsCmd struct {
	date string
}

func (*snapshotsCmd) Name() string     { return "snapshots" }
func (*snapshotsCmd) Synopsis() string { return "print portfolio snapshots as JSON" }
func (*snapshotsCmd) Usage() string {
	return `fundctl snapshots [-date <YYYY-MM-DD|baseline>]

  Prints every snapshot, newest first with the baseline last, or the
  snapshot of one date.
`
}

func (c *snapshotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "date", "", "Only print the snapshot of this date.")
}

func (c *snapshotsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		return fail(err)
	}
	defer e.Close()

	analysis := service.NewAnalysisService(
		service.NewDataLoaderService(e.db, e.cfg.Analysis.RecentWindowDays, e.logger),
		e.logger,
	)

	if c.date != "" {
		snapshot, err := analysis.Snapshot(ctx, c.date)
		if err != nil {
			return fail(err)
		}
		if err := printJSON(os.Stdout, snapshot); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	snapshots, err := analysis.Snapshots(ctx)
	if err != nil {
		return fail(err)
	}
	if err := printJSON(os.Stdout, snapshots); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type tagsCmd struct {
	sortBy string
	order  string
}

func (*tagsCmd) Name() string     { return "tags" }
func (*tagsCmd) Synopsis() string { return "print the tag rollup as JSON" }
func (*tagsCmd) Usage() string {
	return `fundctl tags [-sort <field>] [-order <asc|desc|abs-asc|abs-desc>]

  Aggregates holdings by tag and prints the sorted result.
`
}

func (c *tagsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sortBy, "sort", service.DefaultTagSortKey, "TagAnalysis field to sort by.")
	f.StringVar(&c.order, "order", string(service.DefaultTagSortOrder), "Sort order: asc, desc, abs-asc or abs-desc.")
}

func (c *tagsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		return fail(err)
	}
	defer e.Close()

	analysis := service.NewAnalysisService(
		service.NewDataLoaderService(e.db, e.cfg.Analysis.RecentWindowDays, e.logger),
		e.logger,
	)

	tags, err := analysis.TagAnalysis(ctx, c.sortBy, ledger.SortOrder(c.order))
	if err != nil {
		return fail(err)
	}
	if err := printJSON(os.Stdout, tags); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type exportCmd struct {
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write an encrypted backup of the store" }
func (*exportCmd) Usage() string {
	return `fundctl export [-out <file>]

  Writes the whole store as a fernet token encrypted with BACKUP_KEY, to a
  file or to stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "", "Output file (defaults to stdout).")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		return fail(err)
	}
	defer e.Close()

	backups, err := service.NewBackupService(e.db, e.cfg.Backup.Key, e.logger)
	if err != nil {
		return fail(err)
	}

	token, err := backups.Export(ctx)
	if err != nil {
		return fail(err)
	}

	if c.out == "" {
		fmt.Println(string(token))
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.out, token, 0o600); err != nil {
		return fail(err)
	}
	fmt.Printf("backup written to %s\n", c.out)
	return subcommands.ExitSuccess
}

type importCmd struct {
	in string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the store with an encrypted backup" }
func (*importCmd) Usage() string {
	return `fundctl import -in <file>

  Replaces every holding, record and NAV with the content of a backup
  produced by export. The backup must be encrypted with BACKUP_KEY.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "Backup file to import.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	token, err := os.ReadFile(c.in)
	if err != nil {
		return fail(err)
	}

	e, err := openEnv()
	if err != nil {
		return fail(err)
	}
	defer e.Close()

	backups, err := service.NewBackupService(e.db, e.cfg.Backup.Key, e.logger)
	if err != nil {
		return fail(err)
	}

	summary, err := backups.Import(ctx, []byte(strings.TrimSpace(string(token))))
	if err != nil {
		return fail(err)
	}

	fmt.Printf("imported %d holding(s), %d record(s), %d nav point(s)\n", summary.Holdings, summary.Records, summary.NAVs)
	return subcommands.ExitSuccess
}
