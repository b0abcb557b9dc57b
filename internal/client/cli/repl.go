package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/metakeeper/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
type execIface interface {
	Ping(ctx context.Context, args []string) error
	SetToken(ctx context.Context, args []string) error
	Categories(ctx context.Context, args []string) error
	Create(ctx context.Context, args []string) error
	Update(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	ByName(ctx context.Context, args []string) error
	Find(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Link(ctx context.Context, args []string) error
	Detach(ctx context.Context, args []string) error
	Related(ctx context.Context, args []string) error
	Invoke(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  categories                                         list categories and their relationship types
  create <category> [anchor=<guid>] key=value...     create an element (key:=json for non-strings)
  update <category> <guid> [--replace] key=value...  merge or replace properties
  get <category> <guid>                              show one element
  byname <category> <name>                           exact match on name properties
  find <category> <regex>                            regex search on searchable properties
  delete <category> <guid>                           delete an element and what it anchors
  link <category> <type> <end1> <end2> [key=value]   create a relationship
  detach <category> <type> <end1> <end2>             remove a relationship
  related <category> <guid> [type]                   list related elements
  invoke <category> <operation> [guid=] [other=] [value=] [description=...]
                                                     run a category operation, see categories
  token [value]                                      replace the access token
  ping                                               check the server
  exit | quit                                        leave the program`

// runREPL reads one command per line and dispatches it to a. Command errors
// are reported and the loop continues. It returns on EOF, exit or quit.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	commands := map[string]func(context.Context, []string) error{
		"ping":       a.Ping,
		"token":      a.SetToken,
		"categories": a.Categories,
		"create":     a.Create,
		"update":     a.Update,
		"get":        a.Get,
		"byname":     a.ByName,
		"find":       a.Find,
		"delete":     a.Delete,
		"link":       a.Link,
		"detach":     a.Detach,
		"related":    a.Related,
		"invoke":     a.Invoke,
	}

	for {
		printlnFn(fmt.Sprintf("omctl %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		run, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if err := run(ctx, args); err != nil {
			printlnFn(describeError(err))
		}
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return "Usage: " + strings.TrimPrefix(err.Error(), errUsage.Error()+": ")
	case errors.Is(err, client.ErrUnauthorized):
		return "Not authorized, set a valid token with 'token': " + err.Error()
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable"
	default:
		return "Error: " + err.Error()
	}
}
