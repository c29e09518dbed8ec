package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/cinedex/internal/shared"
	"github.com/urfave/cli/v3"
)

// password returns the --password flag, prompting on the runner's input when it is empty.
func (r *Runner) password(cmd *cli.Command) (string, error) {
	if pw := cmd.String("password"); pw != "" {
		return pw, nil
	}

	if err := r.writePlain("Password: "); err != nil {
		return "", err
	}
	line, err := bufio.NewReader(r.input).ReadString('\n')
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		if err != nil {
			return "", fmt.Errorf("%w: password: %v", shared.ErrMissingArgument, err)
		}
		return "", fmt.Errorf("%w: password", shared.ErrMissingArgument)
	}
	return pw, nil
}

// AuthLogin signs in and persists the token and user.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	email := strings.TrimSpace(cmd.String("email"))
	password, err := r.password(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("signing in", "email", email, "api", r.api.BaseURL())
	if err := r.session.Login(ctx, email, password); err != nil {
		return err
	}

	user := r.session.User()
	r.logger.Info("authentication successful", "user", user.ID)
	return r.writePlain("✓ Signed in as %s\n", displayName(user.Name, user.Email))
}

// AuthRegister creates an account and persists the resulting session.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	name := strings.TrimSpace(cmd.String("name"))
	email := strings.TrimSpace(cmd.String("email"))
	password, err := r.password(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("registering", "email", email, "api", r.api.BaseURL())
	if err := r.session.Register(ctx, name, email, password); err != nil {
		return err
	}

	user := r.session.User()
	return r.writePlain("✓ Account created, signed in as %s\n", displayName(user.Name, user.Email))
}

// AuthLogout clears the persisted session. Logging out twice is not an error.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	r.session.Logout(ctx)
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports whether a session is stored and for whom.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	snapshot := r.session.Snapshot()
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"authenticated": snapshot.Authenticated(),
			"user":          snapshot.User,
			"api":           r.api.BaseURL(),
		}, true)
	}

	r.writePlainHeader("Session")
	r.writePlain("API: %s\n", r.api.BaseURL())
	if !snapshot.Authenticated() {
		return r.writePlain("Authentication: ✗ Not signed in\n")
	}

	r.writePlain("Authentication: ✓ Signed in\n")
	return r.writePlain("User: %s (id %s)\n", displayName(snapshot.User.Name, snapshot.User.Email), snapshot.User.ID)
}

func displayName(name, email string) string {
	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s <%s>", name, email)
	case name != "":
		return name
	default:
		return email
	}
}
