package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Run:   runLogin,
	}
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Run:   runRegister,
	}
	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Run:   runLogout,
	}
	RootCmd.AddCommand(login, register, logout)
}

func runLogin(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()

	reader := bufio.NewReader(os.Stdin)
	email, err := GetSimpleText(reader, "Email", os.Stderr)
	if err != nil {
		exitErr("login", err)
	}
	password, err := GetPassword(os.Stderr, "Password: ")
	if err != nil {
		exitErr("login", err)
	}

	resp, err := app.client.Login(ctx, email, string(password))
	if err != nil {
		exitErr("login", err)
	}
	if err := app.setToken(ctx, resp.Token); err != nil {
		exitErr("login", err)
	}
	fmt.Printf("Signed in as %s\n", resp.User.Name)
}

func runRegister(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()

	reader := bufio.NewReader(os.Stdin)
	username, err := GetSimpleText(reader, "Username", os.Stderr)
	if err != nil {
		exitErr("register", err)
	}
	email, err := GetSimpleText(reader, "Email", os.Stderr)
	if err != nil {
		exitErr("register", err)
	}
	password, err := GetPassword(os.Stderr, "Password: ")
	if err != nil {
		exitErr("register", err)
	}

	resp, err := app.client.Register(ctx, username, email, string(password))
	if err != nil {
		exitErr("register", err)
	}
	if err := app.setToken(ctx, resp.Token); err != nil {
		exitErr("register", err)
	}
	fmt.Printf("Welcome, %s\n", resp.User.Name)
}

func runLogout(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	app, err := newApp(ctx)
	if err != nil {
		exitErr("init", err)
	}
	defer app.Close()

	if err := app.clearToken(ctx); err != nil {
		exitErr("logout", err)
	}
	fmt.Println("Signed out")
}
