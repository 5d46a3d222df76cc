package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/precario/internal/auth"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Staff account helpers",
	}
	cmd.AddCommand(newUserHashPasswordCommand(rootOpts))
	return cmd
}

func newUserHashPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for auth.users[].password_hash",
		Long: `Print a bcrypt hash to paste into the auth.users section of precario.yaml.

The password is read from the first line of stdin unless --password is given,
which keeps it out of the shell history.`,
		Example: `  echo -n 'talho-2024' | precario user hash-password`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if !cmd.Flags().Changed("password") {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return usageError(f, fmt.Sprintf("read password: %v", err))
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return usageError(f, "password is empty")
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return f.Fail("hash password", err)
			}
			return f.Result(map[string]string{"password_hash": hash}, func(w io.Writer) {
				fmt.Fprintln(w, hash)
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password to hash (default: read stdin)")

	return cmd
}
