package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cpfgate/pkg/cpf"
)

func newValidateCmd() *cobra.Command {
	var rejectRepeated bool
	c := &cobra.Command{
		Use:   "validate <cpf>",
		Short: "Check CPF format and check digits",
		Long: `Normalize a CPF and verify its two check digits.

Examples:
  cpfctl validate 529.982.247-25
  cpfctl validate 11111111111 --reject-repeated`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []cpf.Option
			if rejectRepeated {
				opts = append(opts, cpf.WithRejectRepeated())
			}
			id, err := cpf.NewValidator(opts...).Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", id)
			return nil
		},
	}
	c.Flags().BoolVar(&rejectRepeated, "reject-repeated", false, "treat repdigit CPFs such as 11111111111 as invalid")
	return c
}
