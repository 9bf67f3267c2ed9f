package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
)

type App struct {
	config      *config.Config
	db          *sql.DB
	authService services.AuthService
	taskService services.TaskService
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.SessionFile)
	if err != nil {
		log.Printf("error initializing session store: %s", err.Error())
		return nil, err
	}

	sess := session.New(db)
	if err := sess.Load(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session load error: %w", err)
	}

	apiClient := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout)

	return &App{
		config:      c,
		db:          db,
		authService: services.NewAuthService(apiClient, sess),
		taskService: services.NewTaskService(apiClient, sess),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run starts the REPL and blocks until the user leaves it.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	fmt.Fprintln(a.out, "Welcome to taskkeeper CLI (type 'help' for commands)")
	if u := a.authService.Current(); u != nil {
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", u.Name, u.Email)
	}

	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.authService.Current() != nil
}

func (a *App) status() string {
	if u := a.authService.Current(); u != nil {
		return fmt.Sprintf("(%s)", u.Email)
	}
	return ""
}
