package update

import (
	"context"
	"io"

	"github.com/agentstation/bibsync/cmd/application"
	"github.com/agentstation/bibsync/internal/cmd/output"
	"github.com/agentstation/bibsync/internal/cmd/status"
	"github.com/agentstation/bibsync/internal/cmd/table"
	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/ingest"
	"github.com/agentstation/bibsync/pkg/records"
	"github.com/agentstation/bibsync/pkg/sync"
)

// Run syncs the export named by flags. With no kinds both phases run.
func Run(ctx context.Context, app application.Application, flags *Flags, kinds ...records.EntryKind) error {
	logger := app.Logger()

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if flags.File == "" {
		return errors.NewValidationError("refs", "", "pass the Paperpile export as an argument or with --refs")
	}

	raws, source, err := ingest.ReadFile(flags.File)
	if err != nil {
		return err
	}
	logger.Info().
		Str("file", flags.File).
		Str("format", string(source)).
		Int("entries", len(raws)).
		Msg("Read export")

	cfg, err := app.Config()
	if err != nil {
		return err
	}
	client, err := app.Client(ctx)
	if err != nil {
		return err
	}

	strict := cfg.Matching.Strict
	if flags.strictSet {
		strict = flags.Strict
	}

	out := app.Out()
	writer := status.New(out, status.WithColor(app.Color()), status.WithVerbose(flags.Details))
	opts := []sync.Option{
		sync.WithDryRun(flags.DryRun),
		sync.WithStrict(strict),
		sync.WithTimeout(flags.Timeout),
		sync.WithCollections(kinds...),
		sync.WithSource(string(source)),
	}
	if !format.Structured() {
		opts = append(opts, sync.WithOnOutcome(writer.Outcome))
	}

	result, syncErr := client.Sync(ctx, raws, opts...)
	if result != nil {
		if err := report(out, writer, app.OutputFormat(), format, result); err != nil {
			return err
		}
	}
	return syncErr
}

// report prints the end of run summary.
func report(w io.Writer, writer *status.Writer, explicit string, format output.Format, result *sync.Result) error {
	if format.Structured() {
		return output.NewFormatter(format).Format(w, result)
	}
	writer.Result(result)
	if explicit == string(output.FormatTable) {
		return output.NewFormatter(format).Format(w, table.ResultToTableData(result))
	}
	return nil
}
