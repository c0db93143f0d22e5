package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"restaurant-service/internal/auth"
	"restaurant-service/internal/config"
	"restaurant-service/internal/entity"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/service"
	"restaurant-service/migrations"
)

const usage = `Usage: manage-users <command> [arguments]
Commands:
  create <username> <email> <password>  Create a user
  list                                  List all users
  delete <user_id>                      Delete a user
  init-db                               Drop and recreate all tables (destroys data)
`

var errUsage = errors.New("invalid usage")

type commands struct {
	users *service.UserService
	reset func() error
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := config.ConnectDB(cfg.DB, 3, time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if os.Args[1] != "init-db" {
		if err := migrations.AutoMigrateUsers(3, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate users table")
		}
	}

	cmds := commands{
		users: service.NewUserService(repository.NewUserRepository(db), auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)),
		reset: func() error { return migrations.Reset(db) },
	}

	if err := cmds.run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c commands) run(ctx context.Context, args []string, out io.Writer) error {
	switch args[0] {
	case "create":
		if len(args) != 4 {
			return fmt.Errorf("%w: create takes <username> <email> <password>", errUsage)
		}
		user, err := c.users.Register(ctx, entity.RegisterInput{Username: args[1], Email: args[2], Password: args[3]})
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return fmt.Errorf("user %q already exists", args[1])
		case errors.Is(err, repository.ErrDuplicateEmail):
			return fmt.Errorf("email %q is already in use", args[2])
		case err != nil:
			return err
		}
		fmt.Fprintf(out, "User %q created with ID %d\n", user.Username, user.ID)

	case "list":
		if len(args) != 1 {
			return fmt.Errorf("%w: list takes no arguments", errUsage)
		}
		users, err := c.users.List(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Fprintf(out, "ID: %d, Username: %s, Email: %s\n", u.ID, u.Username, u.Email)
		}

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("%w: delete takes <user_id>", errUsage)
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: user id %q is not a number", errUsage, args[1])
		}
		if err := c.users.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("user with ID %d not found", id)
			}
			return err
		}
		fmt.Fprintf(out, "User %d deleted\n", id)

	case "init-db":
		if err := c.reset(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Database initialized")

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return nil
}
