package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/posengine/internal/storage"
	"github.com/dshills/posengine/internal/users"
	"github.com/dshills/posengine/pkg/types"
)

var (
	// User flags
	userName     string
	userPIN      string
	userRole     string
	userInactive bool
	showInactive bool
)

// usersCmd groups the user subcommands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage register operators",
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an operator",
	Long: `Create an operator with a 4 to 8 digit PIN.

Examples:
  posengine users add --name "Sam" --pin 4321 --role Cashier`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := types.ParseUserRole(userRole)
		if err != nil {
			return err
		}
		svc, closeStore, err := usersService()
		if err != nil {
			return err
		}
		defer closeStore()

		user, err := svc.CreateUser(cmd.Context(), userName, userPIN, role, !userInactive)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(user)
		}
		fmt.Printf("Created %s (%s) %s\n", user.DisplayName, user.Role, user.ID)
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operators",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := usersService()
		if err != nil {
			return err
		}
		defer closeStore()

		list, err := svc.ListUsers(cmd.Context(), !showInactive)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(list)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		defer func() { _ = w.Flush() }()
		_, _ = fmt.Fprintln(w, "ID\tNAME\tROLE\tACTIVE\tCREATED")
		for _, u := range list {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", u.ID, u.DisplayName, u.Role, u.IsActive, u.CreatedAt.Format(time.DateTime))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd, usersListCmd)

	usersAddCmd.Flags().StringVar(&userName, "name", "", "Display name")
	usersAddCmd.Flags().StringVar(&userPIN, "pin", "", "4 to 8 digit PIN")
	usersAddCmd.Flags().StringVar(&userRole, "role", string(types.RoleCashier), "Admin, Manager or Cashier")
	usersAddCmd.Flags().BoolVar(&userInactive, "inactive", false, "Create the account disabled")
	_ = usersAddCmd.MarkFlagRequired("name")
	_ = usersAddCmd.MarkFlagRequired("pin")

	usersListCmd.Flags().BoolVar(&showInactive, "all", false, "Include inactive operators")
}

func usersService() (*users.Service, func(), error) {
	store, err := storage.NewSQLiteStorage(conf.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return users.NewService(store, log), func() { _ = store.Close() }, nil
}
