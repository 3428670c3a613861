package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dinekit/dinekit/internal/config"
	"github.com/dinekit/dinekit/restaurant"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath string
	password   string

	current *app
)

var rootCmd = &cobra.Command{
	Use:           "dinectl",
	Short:         "Terminal client for the restaurant management platform",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.close()
		}
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session locally and server-side",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session state",
	RunE:  runStatus,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Fetch and display the signed-in user's profile",
	RunE:  runWhoami,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List the restaurant's menu",
	RunE:  runMenu,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to dinekit.toml")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "password (falls back to DINEKIT_PASSWORD)")

	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd, whoamiCmd, menuCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email := args[0]
	pass := password
	if pass == "" {
		pass = config.GetEnv("DINEKIT_PASSWORD", "")
	}
	if pass == "" {
		return errors.New("password required via --password or DINEKIT_PASSWORD")
	}

	displayAppname(current.cfg.GetAppName())

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	current.store.SetLoading(true)
	tr, err := current.auth.Login(ctx, email, pass)
	current.store.SetLoading(false)
	if err != nil {
		current.store.SetError(err.Error())
		return err
	}

	user := tr.User
	if user == nil {
		if user, err = current.auth.Me(ctx, tr.AccessToken); err != nil {
			return errors.Wrap(err, "fetching profile")
		}
	}

	current.store.ClearError()
	current.store.Login(user, tr.Tokens(time.Now()))

	fmt.Printf("Signed in as %s (%s)\n", user.FullName(), user.Role)
	fmt.Printf("Session expires in %s\n", current.store.ExpiryRemaining().Round(time.Second))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	snap := current.store.Snapshot()
	if snap.Tokens != nil {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		// Best effort: local state clears regardless.
		if err := current.auth.Logout(ctx, snap.Tokens.Access); err != nil {
			current.logger.Warn().Err(err).Msg("server-side logout failed")
		}
	}
	current.store.Logout()

	fmt.Println("Signed out")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	snap := current.store.Snapshot()
	if !snap.Authenticated {
		fmt.Println("Not signed in")
		if snap.Err != "" {
			fmt.Printf("Last error: %s\n", snap.Err)
		}
		return nil
	}

	fmt.Printf("Signed in as %s (%s)\n", snap.User.FullName(), snap.User.Role)
	if snap.User.RestaurantID != "" {
		fmt.Printf("Restaurant:  %s\n", snap.User.RestaurantID)
	}
	fmt.Printf("Lifecycle:   %s\n", current.store.ExpiryState())
	if remaining := current.store.ExpiryRemaining(); remaining > 0 {
		fmt.Printf("Expires in:  %s\n", remaining.Round(time.Second))
	}
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	snap := current.store.Snapshot()
	if !snap.Authenticated {
		return errors.New("not signed in")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	user, err := current.auth.Me(ctx, snap.Tokens.Access)
	if err != nil {
		return err
	}
	current.store.UpdateUser(user)

	fmt.Printf("%s <%s>\n", user.FullName(), user.Email)
	fmt.Printf("Role: %s", user.Role)
	if user.StaffType != "" {
		fmt.Printf(" (%s)", user.StaffType)
	}
	fmt.Println()
	return nil
}

func runMenu(cmd *cobra.Command, args []string) error {
	snap := current.store.Snapshot()
	if !snap.Authenticated {
		return errors.New("not signed in")
	}

	restaurantID := current.cfg.GetRestaurantID()
	if restaurantID == "" && snap.User != nil {
		restaurantID = snap.User.RestaurantID
	}
	if restaurantID == "" {
		return errors.New("no restaurant configured")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	categories, err := current.restaurants.MenuCategories(ctx, restaurantID, true)
	if err != nil {
		return err
	}
	items, pagination, err := current.restaurants.MenuItems(ctx, restaurantID, restaurant.PageRequest{Page: 1, Size: 50})
	if err != nil {
		return err
	}

	byCategory := make(map[string][]restaurant.MenuItem)
	for _, item := range items {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	for _, category := range categories {
		fmt.Printf("\n%s\n", category.Name)
		for _, item := range byCategory[category.ID] {
			fmt.Printf("  %-30s %8.2f\n", item.Name, item.Price)
		}
	}
	if pagination != nil && pagination.Pages > 1 {
		fmt.Printf("\n(page 1 of %d)\n", pagination.Pages)
	}
	return nil
}
