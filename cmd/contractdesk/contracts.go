package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/Veraticus/contractdesk/internal/api"
	"github.com/Veraticus/contractdesk/internal/cli"
	"github.com/Veraticus/contractdesk/internal/config"
	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/transform"
	"github.com/Veraticus/contractdesk/internal/tui/viewmodel"
)

func contractsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contracts",
		Aliases: []string{"contract", "c"},
		Short:   "List, upload and analyse contracts",
	}

	cmd.AddCommand(contractsListCmd())
	cmd.AddCommand(contractsShowCmd())
	cmd.AddCommand(contractsAnalysisCmd())
	cmd.AddCommand(contractsClausesCmd())
	cmd.AddCommand(contractsDeleteCmd())
	cmd.AddCommand(contractsUploadCmd())
	cmd.AddCommand(contractsCreateCmd())
	cmd.AddCommand(contractsUpdateCmd())
	cmd.AddCommand(contractsReanalyzeCmd())
	cmd.AddCommand(contractsEvaluateCmd())

	return cmd
}

func contractsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contracts",
		Long: `List contracts, newest first.

Filters combine: --status (pending, analyzing, completed, approved, rejected),
--client (exact name), --date (today, week, month) and --search (title or
client, case-insensitive).`,
		Args: cobra.NoArgs,
		RunE: runContractsList,
	}
	cmd.Flags().String("search", "", "search title and client")
	cmd.Flags().String("status", listview.FilterAll, "filter by status")
	cmd.Flags().String("client", listview.FilterAll, "filter by client")
	cmd.Flags().String("date", string(listview.DateAll), "filter by upload date")
	cmd.Flags().Int("page", 1, "page to show")
	cmd.Flags().Int("page-size", 0, "contracts per page (default: ui.page_size)")
	return cmd
}

func runContractsList(cmd *cobra.Command, _ []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	search, _ := cmd.Flags().GetString("search")
	status, _ := cmd.Flags().GetString("status")
	client, _ := cmd.Flags().GetString("client")
	date, _ := cmd.Flags().GetString("date")
	page, _ := cmd.Flags().GetInt("page")
	if size, _ := cmd.Flags().GetInt("page-size"); size > 0 {
		a.Config.UI.PageSize = size
	}

	status, err = listview.ParseStatusFilter(status)
	if err != nil {
		return err
	}
	dateFilter, err := listview.ParseDateFilter(date)
	if err != nil {
		return err
	}

	contracts := a.Contracts(notifier(cmd))
	contracts.SetClock(now)
	if err := contracts.Load(cmd.Context()); err != nil {
		return err
	}

	t := now()
	contracts.SetSearch(search)
	if err := contracts.SetStatusFilter(status); err != nil {
		return err
	}
	contracts.SetClientFilter(client)
	if err := contracts.SetDateFilter(dateFilter); err != nil {
		return err
	}
	contracts.SetPage(page, t)

	visible := contracts.Visible(t)
	if len(visible) == 0 {
		return printLine(cmd, cli.SubtleStyle.Render("No contracts match the current filters."))
	}

	rows := make([][]string, 0, len(visible))
	for _, c := range visible {
		r := viewmodel.NewContractRow(c)
		rows = append(rows, []string{
			c.ID,
			viewmodel.TruncateString(r.Title, 40),
			viewmodel.TruncateString(r.Client, 24),
			r.Date,
			cli.StyleStatus(c.Status),
			r.Signed,
			r.Size,
		})
	}
	headers := append([]string{"ID"}, viewmodel.ContractColumns...)
	if err := printLine(cmd, cli.RenderTable(headers, rows)); err != nil {
		return err
	}
	return pageFooter(cmd, contracts.Page(), contracts.TotalPages(t), len(contracts.Filtered(t)), "contracts")
}

func contractsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a contract",
		Args:  cobra.ExactArgs(1),
		RunE:  runContractsShow,
	}
}

func runContractsShow(cmd *cobra.Command, args []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	raw, err := a.API.GetContract(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	c := transform.Contract(*raw)
	r := viewmodel.NewContractRow(c)

	lines := []string{
		fmt.Sprintf("ID:       %s", c.ID),
		fmt.Sprintf("Client:   %s", r.Client),
		fmt.Sprintf("Uploaded: %s", r.Date),
		fmt.Sprintf("Signed:   %s", r.Signed),
		fmt.Sprintf("Status:   %s", cli.StyleStatus(c.Status)),
	}
	if r.Size != "" {
		lines = append(lines, fmt.Sprintf("Size:     %s", r.Size))
	}
	if c.ModelUsed != "" {
		lines = append(lines, fmt.Sprintf("Model:    %s", c.ModelUsed))
	}
	if len(c.Clauses) > 0 {
		lines = append(lines, fmt.Sprintf("Clauses:  %d", len(c.Clauses)))
	}
	return printLine(cmd, cli.RenderBox(r.Title, strings.Join(lines, "\n")))
}

func contractsAnalysisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis <id>",
		Short: "Show the AI analysis of a contract",
		Args:  cobra.ExactArgs(1),
		RunE:  runContractsAnalysis,
	}
	cmd.Flags().Bool("raw", false, "print the analysis without markdown rendering")
	return cmd
}

func runContractsAnalysis(cmd *cobra.Command, args []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	view, err := a.Contracts(notifier(cmd)).ViewAnalysis(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	verdict := cli.StyleStatus(view.Contract.Status)
	if view.Approved != nil {
		if *view.Approved {
			verdict = cli.SuccessStyle.Render("Approved")
		} else {
			verdict = cli.ErrorStyle.Render("Not approved")
		}
	}
	header := []string{
		cli.FormatTitle(view.Contract.Title),
		"Verdict: " + verdict,
	}
	if view.ModelUsed != "" {
		header = append(header, cli.SubtleStyle.Render("Model: "+view.ModelUsed))
	}
	if view.AnalysisDate != "" {
		header = append(header, cli.SubtleStyle.Render("Analyzed: "+viewmodel.FormatUploadDate(view.AnalysisDate)))
	}
	if err := printLine(cmd, strings.Join(header, "\n")); err != nil {
		return err
	}

	if strings.TrimSpace(view.Reasoning) == "" {
		return printLine(cmd, cli.SubtleStyle.Render("No analysis available."))
	}
	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		return printLine(cmd, transform.CleanAnalysis(view.Reasoning))
	}
	return printLine(cmd, renderMarkdown(view.Reasoning))
}

// renderMarkdown renders analysis text for the terminal, falling back to
// the cleaned text when glamour cannot.
func renderMarkdown(text string) string {
	cleaned := transform.CleanAnalysis(text)
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return cleaned
	}
	out, err := r.Render(cleaned)
	if err != nil {
		return cleaned
	}
	return strings.TrimRight(out, "\n")
}

func contractsClausesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clauses <id>",
		Short: "Extract the clauses of a contract",
		Args:  cobra.ExactArgs(1),
		RunE:  runContractsClauses,
	}
}

func runContractsClauses(cmd *cobra.Command, args []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	result, err := a.Contracts(nil).ExtractClauses(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(result.Clauses) == 0 {
		return printLine(cmd, cli.SubtleStyle.Render("No clauses found."))
	}

	if err := printLine(cmd, cli.TitleStyle.Render(fmt.Sprintf("%s %d clauses", cli.ClauseIcon, result.Count))); err != nil {
		return err
	}
	for i, c := range result.Clauses {
		label := fmt.Sprintf("%d.", i+1)
		if c.Type != "" {
			label += " " + cli.BoldStyle.Render(c.Type)
		}
		if err := printf(cmd, "%s\n   %s\n", label, viewmodel.SanitizeForDisplay(c.Text)); err != nil {
			return err
		}
	}
	return nil
}

func contractsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contract",
		Args:  cobra.ExactArgs(1),
		RunE:  runContractsDelete,
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runContractsDelete(cmd *cobra.Command, args []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	ok, err := confirmDelete(cmd, fmt.Sprintf("contract %s", args[0]))
	if err != nil || !ok {
		return err
	}
	_, err = a.Contracts(notifier(cmd)).Delete(cmd.Context(), args[0], nil)
	return err
}

func contractsUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a contract document for analysis",
		Long: `Upload a contract document. The backend analyses it before replying, which
can take a while for long documents.`,
		Args: cobra.NoArgs,
		RunE: runContractsUpload,
	}
	cmd.Flags().String("title", "", "contract title")
	cmd.Flags().String("client", "", "client name")
	cmd.Flags().StringP("file", "f", "", "document to upload")
	cmd.Flags().Bool("signed", false, "mark the contract as signed")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runContractsUpload(cmd *cobra.Command, _ []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	client, _ := cmd.Flags().GetString("client")
	path, _ := cmd.Flags().GetString("file")
	signed, _ := cmd.Flags().GetBool("signed")

	p := prompter(cmd)
	if strings.TrimSpace(title) == "" {
		if title, err = p.AskRequired(cmd.Context(), "Title"); err != nil {
			return err
		}
	}
	if strings.TrimSpace(client) == "" {
		if client, err = p.AskRequired(cmd.Context(), "Client"); err != nil {
			return err
		}
	}

	file, size, err := openDocument(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context(), "Upload")
	contract, err := a.Contracts(notifier(cmd)).Upload(ctx, listview.UploadForm{
		File:     file,
		FileName: filepath.Base(path),
		Size:     size,
		Title:    title,
		Client:   client,
		Signed:   signed,
		Progress: cli.UploadProgress(cmd.ErrOrStderr(), "Uploading "+filepath.Base(path)),
	})
	if err != nil {
		return err
	}
	return printf(cmd, "%s  %s\n", contract.ID, cli.StyleStatus(contract.Status))
}

func contractsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Store a contract from a plain-text file without analysing it",
		Args:  cobra.NoArgs,
		RunE:  runContractsCreate,
	}
	cmd.Flags().String("title", "", "contract title")
	cmd.Flags().String("client", "", "client name")
	cmd.Flags().String("text-file", "", "file holding the contract text")
	cmd.Flags().Bool("signed", false, "mark the contract as signed")
	_ = cmd.MarkFlagRequired("text-file")
	return cmd
}

func runContractsCreate(cmd *cobra.Command, _ []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	client, _ := cmd.Flags().GetString("client")
	path, _ := cmd.Flags().GetString("text-file")
	signed, _ := cmd.Flags().GetBool("signed")

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	p := prompter(cmd)
	if strings.TrimSpace(title) == "" {
		if title, err = p.AskRequired(cmd.Context(), "Title"); err != nil {
			return err
		}
	}
	if strings.TrimSpace(client) == "" {
		if client, err = p.AskRequired(cmd.Context(), "Client"); err != nil {
			return err
		}
	}

	id, err := a.Contracts(notifier(cmd)).Create(cmd.Context(), listview.TextForm{
		Title:  title,
		Client: client,
		Text:   string(text),
		Signed: signed,
	})
	if err != nil || id == "" {
		return err
	}
	return printLine(cmd, id)
}

func contractsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a contract's title, client or signed flag",
		Args:  cobra.ExactArgs(1),
		RunE:  runContractsUpdate,
	}
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().String("client", "", "new client")
	cmd.Flags().Bool("signed", false, "signed flag")
	return cmd
}

func runContractsUpdate(cmd *cobra.Command, args []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	// Unset flags keep the stored values.
	raw, err := a.API.GetContract(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	form := listview.ContractForm{Title: raw.Title, Client: raw.Client, Signed: raw.Signed}
	if cmd.Flags().Changed("title") {
		form.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("client") {
		form.Client, _ = cmd.Flags().GetString("client")
	}
	if cmd.Flags().Changed("signed") {
		form.Signed, _ = cmd.Flags().GetBool("signed")
	}

	return a.Contracts(notifier(cmd)).Update(cmd.Context(), args[0], form)
}

func contractsReanalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reanalyze <id>",
		Short: "Analyse a new version of a contract",
		Args:  cobra.ExactArgs(1),
		RunE:  runContractsReanalyze,
	}
	cmd.Flags().StringP("file", "f", "", "new document")
	cmd.Flags().String("title", "", "new title (default: keep the current one)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runContractsReanalyze(cmd *cobra.Command, args []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	title, _ := cmd.Flags().GetString("title")

	file, _, err := openDocument(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	contracts := a.Contracts(notifier(cmd))
	if err := contracts.Load(cmd.Context()); err != nil {
		return err
	}

	ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context(), "Reanalysis")
	updated, err := contracts.Reanalyze(ctx, args[0], listview.ReanalyzeForm{
		File:     file,
		FileName: filepath.Base(path),
		Title:    title,
		Progress: cli.UploadProgress(cmd.ErrOrStderr(), "Uploading "+filepath.Base(path)),
	})
	if err != nil {
		return err
	}
	return printf(cmd, "%s  %s\n", updated.ID, cli.StyleStatus(updated.Status))
}

func contractsEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a document against policy without storing it",
		Args:  cobra.NoArgs,
		RunE:  runContractsEvaluate,
	}
	cmd.Flags().StringP("file", "f", "", "document to evaluate")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runContractsEvaluate(cmd *cobra.Command, _ []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	file, _, err := openDocument(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	ctx := cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(cmd.Context(), "Evaluation")
	resp, err := a.API.EvaluateContract(ctx, api.FileUpload{
		Reader:   file,
		Name:     filepath.Base(path),
		Progress: cli.UploadProgress(cmd.ErrOrStderr(), "Uploading "+filepath.Base(path)),
	})
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("evaluation failed: %s", resp.Error)
	}

	verdict := cli.FormatError("Not approved")
	if resp.Approved {
		verdict = cli.FormatSuccess("Approved")
	}
	if err := printLine(cmd, verdict); err != nil {
		return err
	}
	if resp.Reasoning == "" {
		return nil
	}
	return printLine(cmd, renderMarkdown(resp.Reasoning))
}

// openDocument opens a document for upload.
func openDocument(path string) (*os.File, int64, error) {
	path = config.ExpandPath(strings.TrimSpace(path))
	if path == "" {
		return nil, 0, fmt.Errorf("a file is required")
	}
	f, err := os.Open(path) //nolint:gosec // user-selected upload
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("failed to stat %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, 0, fmt.Errorf("%s is a directory", filepath.Base(path))
	}
	return f, info.Size(), nil
}
