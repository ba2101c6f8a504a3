package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cpfgate/internal/jwttoken"
)

type signerFlags struct {
	key      string
	issuer   string
	ttl      time.Duration
	insecure bool
}

func (f *signerFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.key, "key", envOr("JWT_SECRET", ""), "HMAC signing key (defaults to $JWT_SECRET)")
	c.Flags().StringVar(&f.issuer, "issuer", envOr("JWT_ISSUER", "cpfgate"), "token issuer")
	c.Flags().DurationVar(&f.ttl, "ttl", jwttoken.DefaultTTL, "token lifetime")
	c.Flags().BoolVar(&f.insecure, "insecure", false, "fall back to the insecure default key when no key is set")
}

func (f *signerFlags) service() (*jwttoken.Service, error) {
	return jwttoken.New(jwttoken.Config{
		SigningKey:           f.key,
		Issuer:               f.issuer,
		TTL:                  f.ttl,
		AllowInsecureDefault: f.insecure,
	})
}

func newTokenCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "token",
		Short: "Issue and verify gateway access tokens",
	}
	c.AddCommand(newTokenIssueCmd(), newTokenVerifyCmd())
	return c
}

func newTokenIssueCmd() *cobra.Command {
	var (
		flags    signerFlags
		id       string
		customer bool
	)
	c := &cobra.Command{
		Use:   "issue",
		Short: "Sign a token for a CPF",
		Long: `Sign a token exactly as the token strategy would.

Examples:
  cpfctl token issue --cpf 52998224725 --customer
  JWT_SECRET=s3cret cpfctl token issue --cpf 52998224725`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flags.service()
			if err != nil {
				return err
			}
			if svc.Insecure() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: signing with the insecure default key")
			}
			token, expiresAt, err := svc.Issue(id, customer)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires: %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	flags.register(c)
	c.Flags().StringVar(&id, "cpf", "", "subject CPF")
	c.Flags().BoolVar(&customer, "customer", false, "mark the subject as a known customer")
	_ = c.MarkFlagRequired("cpf")
	return c
}

type verifyOutput struct {
	CPF       string    `json:"cpf"`
	Customer  bool      `json:"customer"`
	Issuer    string    `json:"issuer,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	ID        string    `json:"jti,omitempty"`
}

func newTokenVerifyCmd() *cobra.Command {
	var flags signerFlags
	c := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token signature and expiry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flags.service()
			if err != nil {
				return err
			}
			claims, err := svc.Validate(args[0])
			if err != nil {
				return fmt.Errorf("verify token: %w", err)
			}
			out := verifyOutput{
				CPF:      claims.CPF,
				Customer: claims.Customer,
				Issuer:   claims.Issuer,
				ID:       claims.ID,
			}
			if claims.ExpiresAt != nil {
				out.ExpiresAt = claims.ExpiresAt.Time.UTC()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	flags.register(c)
	return c
}
