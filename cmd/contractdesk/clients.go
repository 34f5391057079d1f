package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/contractdesk/internal/cli"
	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/listview"
	"github.com/Veraticus/contractdesk/internal/model"
	"github.com/Veraticus/contractdesk/internal/tui/viewmodel"
)

func clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"client"},
		Short:   "Manage clients",
	}

	cmd.AddCommand(clientsListCmd())
	cmd.AddCommand(clientsCreateCmd())
	cmd.AddCommand(clientsUpdateCmd())
	cmd.AddCommand(clientsDeleteCmd())
	cmd.AddCommand(clientsContractsCmd())

	return cmd
}

func clientsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE:  runClientsList,
	}
	cmd.Flags().String("search", "", "search name, email and company id")
	cmd.Flags().Int("page", 1, "page to show")
	return cmd
}

func runClientsList(cmd *cobra.Command, _ []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	search, _ := cmd.Flags().GetString("search")
	page, _ := cmd.Flags().GetInt("page")

	clients := a.Clients(notifier(cmd))
	if err := clients.Load(cmd.Context()); err != nil {
		return err
	}
	clients.SetSearch(search)
	clients.SetPage(page)

	visible := clients.Visible()
	if len(visible) == 0 {
		return printLine(cmd, cli.SubtleStyle.Render("No clients found."))
	}

	rows := make([][]string, 0, len(visible))
	for _, c := range visible {
		rows = append(rows, append([]string{c.ID}, viewmodel.NewClientRow(c).Cells()...))
	}
	headers := append([]string{"ID"}, viewmodel.ClientColumns...)
	if err := printLine(cmd, cli.RenderTable(headers, rows)); err != nil {
		return err
	}
	return pageFooter(cmd, clients.Page(), clients.TotalPages(), len(clients.Filtered()), "clients")
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "client name")
	cmd.Flags().String("email", "", "contact email")
	cmd.Flags().String("company-id", "", "company identifier")
	cmd.Flags().Bool("active", true, "whether the client is active")
}

func clientsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client",
		Args:  cobra.NoArgs,
		RunE:  runClientsCreate,
	}
	addClientFlags(cmd)
	return cmd
}

func runClientsCreate(cmd *cobra.Command, _ []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	form := clientFormFromFlags(cmd, model.Client{Active: true})
	if form.Name == "" {
		if form.Name, err = prompter(cmd).AskRequired(cmd.Context(), "Name"); err != nil {
			return err
		}
	}

	created, err := a.Clients(notifier(cmd)).Create(cmd.Context(), form)
	if err != nil {
		return err
	}
	return printLine(cmd, created.ID)
}

func clientsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a client",
		Long:  "Update a client. Flags that are not given keep their current values.",
		Args:  cobra.ExactArgs(1),
		RunE:  runClientsUpdate,
	}
	addClientFlags(cmd)
	return cmd
}

func runClientsUpdate(cmd *cobra.Command, args []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	clients := a.Clients(notifier(cmd))
	if err := clients.Load(cmd.Context()); err != nil {
		return err
	}
	current, ok := clients.Get(args[0])
	if !ok {
		return fmt.Errorf("client %s: %w", args[0], common.ErrNotFound)
	}

	_, err = clients.Update(cmd.Context(), args[0], clientFormFromFlags(cmd, current))
	return err
}

// clientFormFromFlags starts from base and applies the flags that were set.
func clientFormFromFlags(cmd *cobra.Command, base model.Client) listview.ClientForm {
	form := listview.ClientForm{
		Name:      base.Name,
		Email:     base.Email,
		CompanyID: base.CompanyID,
	}
	active := base.Active
	if cmd.Flags().Changed("name") {
		form.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("email") {
		form.Email, _ = cmd.Flags().GetString("email")
	}
	if cmd.Flags().Changed("company-id") {
		form.CompanyID, _ = cmd.Flags().GetString("company-id")
	}
	if cmd.Flags().Changed("active") {
		active, _ = cmd.Flags().GetBool("active")
	}
	form.Active = &active
	return form
}

func clientsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE:  runClientsDelete,
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runClientsDelete(cmd *cobra.Command, args []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	clients := a.Clients(notifier(cmd))
	if err := clients.Load(cmd.Context()); err != nil {
		return err
	}
	what := "client " + args[0]
	if c, ok := clients.Get(args[0]); ok {
		what = fmt.Sprintf("client %q", c.Name)
	}

	ok, err := confirmDelete(cmd, what)
	if err != nil || !ok {
		return err
	}
	_, err = clients.Delete(cmd.Context(), args[0], nil)
	return err
}

func clientsContractsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contracts <id>",
		Short: "List a client's contracts",
		Args:  cobra.ExactArgs(1),
		RunE:  runClientsContracts,
	}
}

func runClientsContracts(cmd *cobra.Command, args []string) error {
	a, err := loggedInApp()
	if err != nil {
		return err
	}

	clients := a.Clients(notifier(cmd))
	if err := clients.Load(cmd.Context()); err != nil {
		return err
	}
	detail, err := clients.View(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	name := detail.Client.Name
	if name == "" {
		name = detail.Client.ID
	}
	if err := printLine(cmd, cli.FormatTitle(name)); err != nil {
		return err
	}
	if len(detail.Contracts) == 0 {
		return printLine(cmd, cli.SubtleStyle.Render("No contracts for this client."))
	}

	rows := make([][]string, 0, len(detail.Contracts))
	for _, c := range detail.Contracts {
		r := viewmodel.NewContractRow(c)
		rows = append(rows, []string{c.ID, r.Title, r.Date, cli.StyleStatus(c.Status), r.Signed})
	}
	if err := printLine(cmd, cli.RenderTable([]string{"ID", "Title", "Uploaded", "Status", "Signed"}, rows)); err != nil {
		return err
	}
	return printLine(cmd, cli.SubtleStyle.Render(fmt.Sprintf("%d contracts", len(detail.Contracts))))
}
