// Command postus-useradm creates, lists, and disables NNTP identity
// accounts backed by internal/identity/bcryptidentity.
//
// Grounded on the teacher's cmd/usermgr/main.go: flag-selected
// subcommand, x/term.ReadPassword for masked entry, bcrypt hashing
// (delegated here to bcryptidentity.CreateUser), tabular listing.
package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/go-while/postus/internal/identity/bcryptidentity"
)

func main() {
	var (
		dbPath     = flag.String("db", "data/postus-users.sq3", "path to the identity account database")
		host       = flag.String("host", "localhost", "host identifier recorded for synthesized Message-IDs")
		createUser = flag.Bool("create", false, "create a new account")
		listUsers  = flag.Bool("list", false, "list all accounts")
		disable    = flag.Bool("disable", false, "disable an account")
		enable     = flag.Bool("enable", false, "re-enable an account")
		username   = flag.String("username", "", "username for -create/-disable/-enable")
	)
	flag.Parse()

	if !*createUser && !*listUsers && !*disable && !*enable {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -create -username jane\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -list\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -disable -username jane\n", os.Args[0])
		os.Exit(1)
	}

	id, err := bcryptidentity.Open(*dbPath, *host)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postus-useradm: %v\n", err)
		os.Exit(1)
	}
	defer id.Close()

	switch {
	case *createUser:
		err = createAccount(id, *username)
	case *listUsers:
		err = listAccounts(id)
	case *disable:
		err = setActive(id, *username, false)
	case *enable:
		err = setActive(id, *username, true)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "postus-useradm: %v\n", err)
		os.Exit(1)
	}
}

func createAccount(id *bcryptidentity.Identity, username string) error {
	if username == "" {
		return fmt.Errorf("-username is required")
	}

	fmt.Print("Enter password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return fmt.Errorf("passwords do not match")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}

	if err := id.CreateUser(username, string(password)); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Printf("account %q created\n", username)
	return nil
}

func listAccounts(id *bcryptidentity.Identity) error {
	accounts, err := id.ListUsers()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("no accounts")
		return nil
	}

	fmt.Printf("%-24s %-8s %s\n", "USERNAME", "ACTIVE", "LAST LOGIN")
	for _, a := range accounts {
		active := "yes"
		if !a.Active {
			active = "no"
		}
		lastLogin := "-"
		if a.LastLogin.Valid {
			lastLogin = a.LastLogin.Time.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-24s %-8s %s\n", a.Username, active, lastLogin)
	}
	return nil
}

func setActive(id *bcryptidentity.Identity, username string, active bool) error {
	if username == "" {
		return fmt.Errorf("-username is required")
	}
	if err := id.SetActive(username, active); err != nil {
		return err
	}
	state := "disabled"
	if active {
		state = "enabled"
	}
	fmt.Printf("account %q %s\n", username, state)
	return nil
}
