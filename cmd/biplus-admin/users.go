package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/biplus/ui-api/config"
	"github.com/biplus/ui-api/internal/bootstrap"
	"github.com/biplus/ui-api/internal/domain/model"
	"github.com/biplus/ui-api/internal/service"
)

// directoryHandle bundles the directory service with the database connection
// that may back it. DB is nil on the file backend.
type directoryHandle struct {
	Directory *service.DirectoryService
	DB        *sql.DB
}

func (h *directoryHandle) Close(cmdCtx *commandContext) {
	if h.DB == nil {
		return
	}
	if err := h.DB.Close(); err != nil {
		cmdCtx.Logger.Warn("db close failed", "error", err)
	}
}

// openDirectory connects the configured identity backend and wraps it in the
// directory service so CLI mutations follow the same validation and guards as
// the HTTP API.
func openDirectory(cmdCtx *commandContext) (*directoryHandle, error) {
	var db *sql.DB
	if cmdCtx.Config.Directory.Backend == config.DirectoryBackendPostgres {
		conn, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
			DBConfig: cmdCtx.Config.Postgres,
			Logger:   cmdCtx.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		db = conn
	}

	users, err := bootstrap.BuildUserStore(cmdCtx.Config.Directory, db, cmdCtx.Logger)
	if err != nil {
		if db != nil {
			if closeErr := db.Close(); closeErr != nil {
				cmdCtx.Logger.Warn("db close failed", "error", closeErr)
			}
		}
		return nil, fmt.Errorf("build user store: %w", err)
	}

	directory, err := service.NewDirectoryService(service.DirectoryServiceOptions{
		Users:      users,
		BcryptCost: cmdCtx.Config.Auth.BcryptCost,
		Logger:     cmdCtx.Logger,
	})
	if err != nil {
		if db != nil {
			if closeErr := db.Close(); closeErr != nil {
				cmdCtx.Logger.Warn("db close failed", "error", closeErr)
			}
		}
		return nil, fmt.Errorf("init directory service: %w", err)
	}

	return &directoryHandle{Directory: directory, DB: db}, nil
}

func runUserList(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	handle, err := openDirectory(cmdCtx)
	if err != nil {
		return err
	}
	defer handle.Close(cmdCtx)

	users, err := handle.Directory.List(cmdCtx.Ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.Username,
			string(u.Role),
			u.Name,
			u.Email,
			strings.Join(u.Folders, ","),
		})
	}
	return printUserTable(os.Stdout, rows)
}

type userAddOptions struct {
	Username string
	Name     string
	Email    string
	Password string
	Role     string
	Folders  []string
}

func parseUserAddFlags(args []string) (userAddOptions, error) {
	fs := flag.NewFlagSet("user-add", flag.ContinueOnError)
	username := fs.String("username", "", "account username (required)")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "contact email")
	password := fs.String("password", "", "initial password (prompted when omitted)")
	role := fs.String("role", "", "account role: admin or viewer (defaults to viewer)")
	folders := fs.String("folders", "", "comma-separated authorized folders, e.g. /clients/acme")
	if err := fs.Parse(args); err != nil {
		return userAddOptions{}, err
	}

	opts := userAddOptions{
		Username: *username,
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     *role,
	}
	for _, f := range strings.Split(*folders, ",") {
		if f = strings.TrimSpace(f); f != "" {
			opts.Folders = append(opts.Folders, f)
		}
	}
	if opts.Username == "" {
		return userAddOptions{}, errors.New("-username is required")
	}
	return opts, nil
}

func runUserAdd(cmdCtx *commandContext, args []string) error {
	opts, err := parseUserAddFlags(args)
	if err != nil {
		return err
	}

	if opts.Password == "" {
		opts.Password, err = promptPassword(opts.Username)
		if err != nil {
			return err
		}
	}

	handle, err := openDirectory(cmdCtx)
	if err != nil {
		return err
	}
	defer handle.Close(cmdCtx)

	user, err := handle.Directory.Create(cmdCtx.Ctx, model.CreateUserRequest{
		Username: opts.Username,
		Name:     opts.Name,
		Email:    opts.Email,
		Password: opts.Password,
		Role:     opts.Role,
		Folders:  opts.Folders,
	})
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	cmdCtx.Logger.Info("account created",
		"username", user.Username,
		"role", user.Role,
		"folders", user.Folders)
	return nil
}

func runUserPasswd(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-passwd", flag.ContinueOnError)
	username := fs.String("username", "", "account username (required)")
	password := fs.String("password", "", "new password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("-username is required")
	}

	newPassword := *password
	if newPassword == "" {
		var err error
		newPassword, err = promptPassword(*username)
		if err != nil {
			return err
		}
	}

	handle, err := openDirectory(cmdCtx)
	if err != nil {
		return err
	}
	defer handle.Close(cmdCtx)

	if err := handle.Directory.SetPassword(cmdCtx.Ctx, *username, newPassword); err != nil {
		return fmt.Errorf("set password: %w", err)
	}

	cmdCtx.Logger.Info("password updated", "username", *username)
	return nil
}

func runUserDel(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("user-del", flag.ContinueOnError)
	username := fs.String("username", "", "account username (required)")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("-username is required")
	}

	if !*yes {
		if err := confirmDelete(*username); err != nil {
			return err
		}
	}

	handle, err := openDirectory(cmdCtx)
	if err != nil {
		return err
	}
	defer handle.Close(cmdCtx)

	if err := handle.Directory.Delete(cmdCtx.Ctx, *username); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	cmdCtx.Logger.Info("account deleted", "username", *username)
	return nil
}

func runHashPassword(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	password := fs.String("password", "", "password to hash (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw := *password
	if pw == "" {
		var err error
		pw, err = promptPassword("")
		if err != nil {
			return err
		}
	}

	// Hashing does not touch the backing store.
	directory, err := service.NewDirectoryService(service.DirectoryServiceOptions{
		Users:      noStore{},
		BcryptCost: cmdCtx.Config.Auth.BcryptCost,
		Logger:     cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("init directory service: %w", err)
	}

	hash, err := directory.HashPassword(pw)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return writef(os.Stdout, "%s\n", hash)
}

// noStore satisfies the user store port for commands that never touch it.
type noStore struct{}

func (noStore) List(context.Context) ([]model.User, error) { return nil, errors.New("no store") }
func (noStore) Get(context.Context, string) (*model.User, error) {
	return nil, errors.New("no store")
}
func (noStore) Create(context.Context, model.User) (*model.User, error) {
	return nil, errors.New("no store")
}
func (noStore) Update(context.Context, model.User) (*model.User, error) {
	return nil, errors.New("no store")
}
func (noStore) Delete(context.Context, string) error { return errors.New("no store") }

func promptPassword(username string) (string, error) {
	prompt := "Password: "
	if username != "" {
		prompt = fmt.Sprintf("Password for %s: ", username)
	}
	if err := writef(os.Stdout, "%s", prompt); err != nil {
		return "", fmt.Errorf("print password prompt: %w", err)
	}
	pw, err := readLine(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if pw == "" {
		return "", errors.New("empty password")
	}
	return pw, nil
}
