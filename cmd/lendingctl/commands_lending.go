package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) borrowCommand() *cobra.Command {
	var periodDays int

	cmd := &cobra.Command{
		Use:   "borrow ISBN MEMBER_ID",
		Short: "Lend one copy of a book to a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID("member id", args[1])
			if err != nil {
				return err
			}

			engine, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}

			result, err := engine.Borrow(cmd.Context(), args[0], memberID, periodDays)
			if err != nil {
				return err
			}

			return c.print(toBorrowView(result))
		},
	}

	cmd.Flags().IntVar(&periodDays, "days", 0, "borrowing period in days, 0 uses LEDGER_BORROWING_PERIOD_DAYS")

	return cmd
}

func (c *cli) returnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "return LOG_ID",
		Short: "Return a borrowed copy, charging a fine when overdue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logID, err := parseID("log id", args[0])
			if err != nil {
				return err
			}

			engine, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}

			result, err := engine.Return(cmd.Context(), logID)
			if err != nil {
				return err
			}

			return c.print(toReturnView(result))
		},
	}
}

func (c *cli) payFineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pay-fine FINE_ID",
		Short: "Mark an unpaid fine as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fineID, err := parseID("fine id", args[0])
			if err != nil {
				return err
			}

			engine, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}

			result, err := engine.PayFine(cmd.Context(), fineID)
			if err != nil {
				return err
			}

			return c.print(toPaymentView(result))
		},
	}
}

func (c *cli) finesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fines MEMBER_ID",
		Short: "List the unpaid fines of a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID("member id", args[0])
			if err != nil {
				return err
			}

			engine, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}

			fines, err := engine.GetOutstandingFines(cmd.Context(), memberID)
			if err != nil {
				return err
			}

			return c.print(toFinesView(memberID, fines))
		},
	}
}

func (c *cli) borrowingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "borrowings MEMBER_ID",
		Short: "List the books a member currently has, overdue ones included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, err := parseID("member id", args[0])
			if err != nil {
				return err
			}

			engine, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}

			records, err := engine.GetCurrentBorrowings(cmd.Context(), memberID)
			if err != nil {
				return err
			}

			return c.print(toBorrowingViews(records))
		},
	}
}
