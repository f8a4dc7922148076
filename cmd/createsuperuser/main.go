// Command createsuperuser provisions an administrative account: active,
// staff, superuser, and email-verified. The password is read from the
// terminal without echo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/quickbyte/quickbyte-auth/internal/flagx"
	"github.com/quickbyte/quickbyte-auth/internal/logging"
	"github.com/quickbyte/quickbyte-auth/internal/server"
	"github.com/quickbyte/quickbyte-auth/internal/server/config"
	"github.com/quickbyte/quickbyte-auth/internal/server/mail"
	"github.com/quickbyte/quickbyte-auth/internal/server/services"
	"github.com/quickbyte/quickbyte-auth/internal/shared"
)

func main() {
	var firstName, lastName, email string

	args := flagx.FilterArgs(os.Args[1:], []string{"-first", "-last", "-email"})

	fs := flag.NewFlagSet("createsuperuser", flag.ExitOnError)
	fs.StringVar(&firstName, "first", "", "first name")
	fs.StringVar(&lastName, "last", "", "last name")
	fs.StringVar(&email, "email", "", "email address")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("%v", err)
	}

	if firstName == "" || lastName == "" || email == "" {
		log.Fatalf("all of -first, -last, and -email are required")
	}

	cfg := config.LoadConfig()

	db, rm, err := server.OpenDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	pw, err := getPassword("Enter password: ")
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer shared.WipeByteArray(pw)

	confirm, err := getPassword("Confirm password: ")
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer shared.WipeByteArray(confirm)

	if string(pw) != string(confirm) {
		log.Fatalf("passwords do not match")
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// CreateSuperuser touches neither the session store nor the notifier.
	svc := services.NewAuthService(db, rm, nil, mail.NoOpNotifier{}, logger, cfg)

	id, err := svc.CreateSuperuser(context.Background(), firstName, lastName, email, string(pw))
	if err != nil {
		if errors.Is(err, common.ErrorEmailAlreadyExists) {
			log.Fatalf("a user with email %s already exists", email)
		}
		log.Fatalf("%v", err)
	}

	fmt.Printf("superuser created: %s\n", id)
}

// getPassword reads a password from the terminal without echo. A newline is
// printed after the read to keep the UI tidy.
func getPassword(prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(os.Stdout, prompt); err != nil {
		return nil, err
	}
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
