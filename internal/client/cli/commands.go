package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/metakeeper/internal/api"
)

var errUsage = errors.New("usage")

func usage(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}

func (a *App) paging() api.SearchOptions {
	return api.SearchOptions{PageSize: a.config.PageSize}
}

func (a *App) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	printlnFn(string(b))
	return nil
}

func (a *App) printElements(elements []*api.Element) {
	if len(elements) == 0 {
		printlnFn("No elements found")
		return
	}
	for _, e := range elements {
		name, _ := e.Properties["qualifiedName"].(string)
		printlnFn(fmt.Sprintf("%s  %-18s %s", e.GUID, e.TypeName, name))
	}
}

func (a *App) Categories(ctx context.Context, _ []string) error {
	cats, err := a.client.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		printlnFn(fmt.Sprintf("%-20s %-22s %s", c.Name, c.TypeName, strings.Join(c.RelationshipTypes, ", ")))
		if len(c.Operations) > 0 {
			printlnFn(fmt.Sprintf("%-20s operations: %s", "", strings.Join(c.Operations, ", ")))
		}
	}
	return nil
}

// Create handles: create <category> [anchor=<guid>] key=value...
func (a *App) Create(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("create <category> [anchor=<guid>] key=value...")
	}
	category, rest := args[0], args[1:]

	var anchor string
	if v, ok := strings.CutPrefix(rest[0], "anchor="); ok {
		anchor, rest = v, rest[1:]
	}

	props, err := parseProperties(rest)
	if err != nil {
		return err
	}
	guid, err := a.client.Create(ctx, category, anchor, props)
	if err != nil {
		return err
	}
	printlnFn("Created", guid)
	return nil
}

// Update handles: update <category> <guid> [--replace] key=value...
func (a *App) Update(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usage("update <category> <guid> [--replace] key=value...")
	}
	category, guid, rest := args[0], args[1], args[2:]

	replace := slices.Contains(rest, "--replace")
	rest = slices.DeleteFunc(slices.Clone(rest), func(s string) bool { return s == "--replace" })

	props, err := parseProperties(rest)
	if err != nil {
		return err
	}
	if err := a.client.Update(ctx, category, guid, replace, props); err != nil {
		return err
	}
	printlnFn("Updated", guid)
	return nil
}

func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("get <category> <guid>")
	}
	e, err := a.client.Get(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return a.printJSON(e)
}

func (a *App) ByName(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("byname <category> <name>")
	}
	found, err := a.client.GetByName(ctx, args[0], strings.Join(args[1:], " "), a.paging())
	if err != nil {
		return err
	}
	a.printElements(found)
	return nil
}

func (a *App) Find(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("find <category> <regex>")
	}
	found, err := a.client.Find(ctx, args[0], args[1], a.paging())
	if err != nil {
		return err
	}
	a.printElements(found)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("delete <category> <guid>")
	}
	if err := a.client.Delete(ctx, args[0], args[1]); err != nil {
		return err
	}
	printlnFn("Deleted", args[1])
	return nil
}

// Link handles: link <category> <relationshipType> <end1> <end2> [key=value...]
func (a *App) Link(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return usage("link <category> <relationshipType> <end1GUID> <end2GUID> [key=value...]")
	}
	props, err := parseProperties(args[4:])
	if err != nil {
		return err
	}
	if len(props) == 0 {
		props = nil
	}
	guid, err := a.client.Link(ctx, args[0], args[1], args[2], args[3], props)
	if err != nil {
		return err
	}
	printlnFn("Linked", guid)
	return nil
}

func (a *App) Detach(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return usage("detach <category> <relationshipType> <end1GUID> <end2GUID>")
	}
	if err := a.client.Detach(ctx, args[0], args[1], args[2], args[3]); err != nil {
		return err
	}
	printlnFn("Detached")
	return nil
}

func (a *App) Related(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("related <category> <guid> [relationshipType]")
	}
	var relType string
	if len(args) == 3 {
		relType = args[2]
	}
	related, err := a.client.GetRelated(ctx, args[0], args[1], relType, a.paging())
	if err != nil {
		return err
	}
	a.printRelated(related)
	return nil
}

func (a *App) printRelated(related []*api.RelatedElement) {
	if len(related) == 0 {
		printlnFn("No related elements")
		return
	}
	for _, r := range related {
		name, _ := r.Element.Properties["qualifiedName"].(string)
		printlnFn(fmt.Sprintf("%-24s %s  %-18s %s", r.Relationship.TypeName, r.Element.GUID, r.Element.TypeName, name))
	}
}

// Invoke handles: invoke <category> <operation> [guid=] [other=] [value=] [description=...]
// description takes the rest of the line.
func (a *App) Invoke(ctx context.Context, args []string) error {
	const text = "invoke <category> <operation> [guid=<guid>] [other=<guid>] [value=<value>] [description=<text>]"
	if len(args) < 2 {
		return usage(text)
	}
	req := &api.InvokeOperationRequest{Category: args[0], Operation: args[1], Paging: a.paging()}

	rest := args[2:]
	for i, arg := range rest {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			return usage(text)
		}
		switch key {
		case "guid":
			req.GUID = val
		case "other":
			req.OtherGUID = val
		case "value":
			req.Value = val
		case "description":
			req.Description = strings.Join(append([]string{val}, rest[i+1:]...), " ")
		default:
			return usage(text)
		}
		if key == "description" {
			break
		}
	}

	res, err := a.client.Invoke(ctx, req)
	if err != nil {
		return err
	}
	switch {
	case res.RelationshipGUID != "":
		printlnFn("Linked", res.RelationshipGUID)
	case res.Related != nil:
		a.printRelated(res.Related)
	case res.Elements != nil:
		a.printElements(res.Elements)
	default:
		printlnFn("Done")
	}
	return nil
}
