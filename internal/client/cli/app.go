package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/metakeeper/internal/client/client"
	"github.com/dmitrijs2005/metakeeper/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	client client.Client
	Mode   Mode
	in     io.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewMetadataClient(c.ServerEndpointAddr, c.AccessToken, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, in: in, out: out}
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) getStatus() string {
	if a.Mode == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.Mode)
}

// Run asks for a token when none is configured, checks the server and then
// reads commands until EOF or exit.
func (a *App) Run(ctx context.Context) error {
	defer a.client.Close()

	if a.config.AccessToken == "" {
		if err := a.SetToken(ctx, nil); err != nil {
			return err
		}
	}

	_ = a.Ping(ctx, nil)

	printlnFn("Welcome to omctl (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.in))
	return nil
}

// SetToken replaces the access token, reading it without echo when no
// argument is given.
func (a *App) SetToken(ctx context.Context, args []string) error {
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		t, err := GetSecret("Access token", a.out)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		token = t
	}
	if token == "" {
		return errors.New("access token must not be empty")
	}
	a.config.AccessToken = token
	a.client.SetAccessToken(token)
	return nil
}

func (a *App) Ping(ctx context.Context, _ []string) error {
	if err := a.client.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return err
	}
	a.setMode(ModeOnline)
	return nil
}
