// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for listing, showing, adding, updating, and deleting contacts
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/viz"
	"github.com/spf13/cobra"
)

func newContactsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage contacts",
	}

	cmd.AddCommand(
		newContactsListCommand(app),
		newContactsShowCommand(app),
		newContactsAddCommand(app),
		newContactsUpdateCommand(app),
		newContactsDeleteCommand(app),
	)
	return cmd
}

func newContactsListCommand(app *App) *cobra.Command {
	var query, tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts, optionally filtered by search text or tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var contacts []models.Contact
			var err error
			switch {
			case query != "":
				contacts, err = app.Store.Contacts.Search(ctx, query)
			case tag != "":
				contacts, err = app.Store.Contacts.GetByTag(ctx, tag)
			default:
				contacts, err = app.Store.Contacts.GetAll(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list contacts: %w", err)
			}

			// --query and --tag combine
			if query != "" && tag != "" {
				kept := contacts[:0]
				for _, c := range contacts {
					if hasTag(c, tag) {
						kept = append(kept, c)
					}
				}
				contacts = kept
			}

			out := cmd.OutOrStdout()
			if len(contacts) == 0 {
				fmt.Fprintln(out, "No contacts found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tEMAIL\tTAGS")
			_, _ = fmt.Fprintln(w, "--\t----\t-------\t-----\t----")
			for _, c := range contacts {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					c.ID, c.Name, dash(c.Company), dash(c.Email), dash(strings.Join(c.Tags, ", ")))
			}
			_ = w.Flush()

			fmt.Fprintf(out, "\nTotal: %d contact(s)\n", len(contacts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search name, email, company, position, and tags")
	cmd.Flags().StringVar(&tag, "tag", "", "Only contacts with this tag")
	return cmd
}

func newContactsShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a contact with their deals and activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contact", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			contact, err := app.Store.Contacts.GetByID(ctx, id)
			if err != nil {
				return err
			}
			deals, err := app.Store.Deals.GetByContactID(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load deals: %w", err)
			}
			activities, err := app.Store.Activities.GetByContactID(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load activities: %w", err)
			}

			out := cmd.OutOrStdout()
			printContact(out, contact)

			fmt.Fprintf(out, "\nDeals (%d):\n", len(deals))
			for _, d := range deals {
				fmt.Fprintf(out, "  #%d %s  %s  %s (%d%%)\n", d.ID, d.Title, viz.FormatMoney(d.Value), d.Stage, d.Probability)
			}

			fmt.Fprintf(out, "\nActivity (%d):\n", len(activities))
			now := app.now()
			for _, a := range activities {
				fmt.Fprintf(out, "  %-8s %s  %s\n", a.Type, a.Description, viz.DayLabel(a.Timestamp, now))
			}
			return nil
		},
	}
}

func newContactsAddCommand(app *App) *cobra.Command {
	var f models.ContactFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Name == "" {
				return fmt.Errorf("--name is required")
			}

			contact, err := app.Store.Contacts.Create(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("failed to create contact: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Contact created: %s (ID: %d)\n", contact.Name, contact.ID)
			if contact.Email != "" {
				fmt.Fprintf(out, "  Email: %s\n", contact.Email)
			}
			if contact.Company != "" {
				fmt.Fprintf(out, "  Company: %s\n", contact.Company)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.Name, "name", "", "Contact name (required)")
	flags.StringVar(&f.Email, "email", "", "Email address")
	flags.StringVar(&f.Phone, "phone", "", "Phone number")
	flags.StringVar(&f.Company, "company", "", "Company name")
	flags.StringVar(&f.Position, "position", "", "Job title")
	flags.StringSliceVar(&f.Tags, "tag", nil, "Tag (repeatable)")
	flags.StringVar(&f.Notes, "notes", "", "Notes about the contact")
	return cmd
}

func newContactsUpdateCommand(app *App) *cobra.Command {
	var name, email, phone, company, position, notes string
	var tags []string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a contact; only the flags given are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contact", args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var patch models.ContactPatch
			patch.Name = changedString(flags, "name", name)
			patch.Email = changedString(flags, "email", email)
			patch.Phone = changedString(flags, "phone", phone)
			patch.Company = changedString(flags, "company", company)
			patch.Position = changedString(flags, "position", position)
			patch.Notes = changedString(flags, "notes", notes)
			if flags.Changed("tag") {
				patch.Tags = append([]string{}, tags...)
			}
			if patch.Name != nil && *patch.Name == "" {
				return fmt.Errorf("--name cannot be empty")
			}

			contact, err := app.Store.Contacts.Update(cmd.Context(), id, patch)
			if err != nil {
				return fmt.Errorf("failed to update contact: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Contact updated: %s (ID: %d)\n", contact.Name, contact.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "Contact name")
	flags.StringVar(&email, "email", "", "Email address")
	flags.StringVar(&phone, "phone", "", "Phone number")
	flags.StringVar(&company, "company", "", "Company name")
	flags.StringVar(&position, "position", "", "Job title")
	flags.StringSliceVar(&tags, "tag", nil, "Replacement tags (repeatable)")
	flags.StringVar(&notes, "notes", "", "Notes")
	return cmd
}

func newContactsDeleteCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact; their deals and activities are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("contact", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			contact, err := app.Store.Contacts.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !force && !app.confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete contact %q?", contact.Name)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			if _, err := app.Store.Contacts.Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to delete contact: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Contact deleted: %s (ID: %d)\n", contact.Name, id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}

func printContact(out io.Writer, c *models.Contact) {
	fmt.Fprintf(out, "%s (ID: %d)\n", c.Name, c.ID)
	if c.Position != "" || c.Company != "" {
		fmt.Fprintf(out, "  %s\n", strings.TrimSpace(strings.Join([]string{c.Position, atCompany(c.Company)}, " ")))
	}
	if c.Email != "" {
		fmt.Fprintf(out, "  Email: %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Fprintf(out, "  Phone: %s\n", c.Phone)
	}
	if len(c.Tags) > 0 {
		fmt.Fprintf(out, "  Tags: %s\n", strings.Join(c.Tags, ", "))
	}
	if c.Notes != "" {
		fmt.Fprintf(out, "  Notes: %s\n", c.Notes)
	}
}

func atCompany(company string) string {
	if company == "" {
		return ""
	}
	return "at " + company
}

func hasTag(c models.Contact, tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func parseID(entity, s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %q", entity, s)
	}
	return id, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
