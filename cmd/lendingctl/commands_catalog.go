package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/lending-ledger-go/catalog"
	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/migrations"
)

func (c *cli) migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the lending schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return migrations.Up(c.settings.PostgresDSN)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert all migrations, dropping the lending tables",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return migrations.Down(c.settings.PostgresDSN)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				version, dirty, err := migrations.Version(c.settings.PostgresDSN)
				if err != nil {
					return err
				}

				return c.print(struct {
					Version uint `json:"version"`
					Dirty   bool `json:"dirty"`
				}{version, dirty})
			},
		},
	)

	return cmd
}

func (c *cli) authorCommand() *cobra.Command {
	var firstName, lastName string

	add := &cobra.Command{
		Use:   "add",
		Short: "Register an author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registrar, err := c.registrar(cmd.Context())
			if err != nil {
				return err
			}

			authorID, err := registrar.AddAuthor(cmd.Context(), firstName, lastName)
			if err != nil {
				return err
			}

			return c.print(idView{ID: authorID})
		},
	}

	add.Flags().StringVar(&firstName, "first-name", "", "first name")
	add.Flags().StringVar(&lastName, "last-name", "", "last name")

	cmd := &cobra.Command{Use: "author", Short: "Manage authors"}
	cmd.AddCommand(add)

	return cmd
}

func (c *cli) bookCommand() *cobra.Command {
	var book ledger.Book
	var authorIDs []int64

	add := &cobra.Command{
		Use:   "add",
		Short: "Register a book with all its copies available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registrar, err := c.registrar(cmd.Context())
			if err != nil {
				return err
			}

			bookID, err := registrar.AddBook(cmd.Context(), book, authorIDs...)
			if err != nil {
				return err
			}

			return c.print(idView{ID: bookID})
		},
	}

	add.Flags().StringVar(&book.ISBN, "isbn", "", "ISBN")
	add.Flags().StringVar(&book.Title, "title", "", "title")
	add.Flags().IntVar(&book.PublicationYear, "year", 0, "publication year")
	add.Flags().IntVar(&book.TotalCopies, "copies", 1, "number of copies")
	add.Flags().Int64SliceVar(&authorIDs, "author-id", nil, "author ids, repeatable")

	get := &cobra.Command{
		Use:   "get ISBN",
		Short: "Show a book with its copy counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registrar, err := c.registrar(cmd.Context())
			if err != nil {
				return err
			}

			found, err := registrar.GetBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return c.print(toBookView(found))
		},
	}

	cmd := &cobra.Command{Use: "book", Short: "Manage books"}
	cmd.AddCommand(add, get)

	return cmd
}

func (c *cli) memberCommand() *cobra.Command {
	var member ledger.Member

	register := &cobra.Command{
		Use:   "register",
		Short: "Register an Active member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registrar, err := c.registrar(cmd.Context())
			if err != nil {
				return err
			}

			memberID, err := registrar.RegisterMember(cmd.Context(), member)
			if err != nil {
				return err
			}

			return c.print(idView{ID: memberID})
		},
	}

	register.Flags().StringVar(&member.FirstName, "first-name", "", "first name")
	register.Flags().StringVar(&member.LastName, "last-name", "", "last name")
	register.Flags().StringVar(&member.Email, "email", "", "email, unique per member")
	register.Flags().StringVar(&member.Phone, "phone", "", "phone")
	register.Flags().StringVar(&member.Address, "address", "", "postal address")
	register.Flags().IntVar(&member.BorrowingLimit, "limit", 0, "borrowing limit, 0 uses LEDGER_BORROWING_LIMIT")

	get := &cobra.Command{
		Use:   "get MEMBER_ID",
		Short: "Show a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID("member id", args[0])
			if err != nil {
				return err
			}

			registrar, err := c.registrar(cmd.Context())
			if err != nil {
				return err
			}

			found, err := registrar.GetMember(cmd.Context(), memberID)
			if err != nil {
				return err
			}

			return c.print(toMemberView(found))
		},
	}

	status := &cobra.Command{
		Use:   "status MEMBER_ID Active|Inactive|Suspended",
		Short: "Change the status of a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID("member id", args[0])
			if err != nil {
				return err
			}

			registrar, err := c.registrar(cmd.Context())
			if err != nil {
				return err
			}

			if err = registrar.SetMemberStatus(cmd.Context(), memberID, ledger.MemberStatus(args[1])); err != nil {
				return err
			}

			found, err := registrar.GetMember(cmd.Context(), memberID)
			if err != nil {
				return err
			}

			return c.print(toMemberView(found))
		},
	}

	cmd := &cobra.Command{Use: "member", Short: "Manage members"}
	cmd.AddCommand(register, get, status)

	return cmd
}

func (c *cli) seedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register books and authors from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(filepath.Clean(file))
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			entries, err := catalog.DecodeEntries(f)
			if err != nil {
				return err
			}

			registrar, err := c.registrar(cmd.Context())
			if err != nil {
				return err
			}

			report, err := registrar.Seed(cmd.Context(), entries)
			if err != nil {
				return err
			}

			return c.print(report)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON array of {title, isbn, publication_year, authors, copies}")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
