package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	tagcall "github.com/nyquen/tagcall"
)

const helpText = `tagcall interactive REPL

Commands:
  set <name>=<value>   Bind a variable in the current context
  unset <name>         Remove a variable from the context
  flag <name>           Treat the bare identifier <name> as a flag
  unflag <name>         Stop treating <name> as a flag
  ctx                   Show the current context and flag set
  help                  Show this help message
  exit / quit           Exit the REPL

Any other input is parsed as a tag expression, e.g.:
  {% c 'my_comp' key=val key2='val2 two' %}

and printed as its compiled (args, kwargs) against the current context.
`

func main() {
	ctx := make(map[string]any)
	flags := make(map[string]bool)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("tagcall — template tag expression compiler")
	fmt.Println(`Type "help" for available commands.`)
	fmt.Println()

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "exit", "quit":
			return

		case "help":
			fmt.Print(helpText)

		case "ctx":
			fmt.Println("variables:")
			for k, v := range ctx {
				fmt.Printf("  %s = %v\n", k, v)
			}
			fmt.Println("flags:")
			for k := range flags {
				fmt.Printf("  %s\n", k)
			}

		case "set":
			if len(parts) < 2 || !strings.Contains(parts[1], "=") {
				fmt.Fprintln(os.Stderr, "usage: set <name>=<value>")
				continue
			}
			kv := strings.SplitN(strings.Join(parts[1:], " "), "=", 2)
			ctx[kv[0]] = kv[1]
			fmt.Printf("%s = %q\n", kv[0], kv[1])

		case "unset":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: unset <name>")
				continue
			}
			delete(ctx, parts[1])

		case "flag":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: flag <name>")
				continue
			}
			flags[parts[1]] = true

		case "unflag":
			if len(parts) < 2 {
				fmt.Fprintln(os.Stderr, "usage: unflag <name>")
				continue
			}
			delete(flags, parts[1])

		default:
			runTag(line, ctx, flags)
		}
	}
}

func runTag(input string, ctx map[string]any, flags map[string]bool) {
	tag, err := tagcall.ParseTag(input, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
		return
	}

	call, err := tagcall.CompileTag(tag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile error: %v\n", err)
		return
	}

	args, kwargs, err := call.Invoke(ctx, replCallbacks())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invoke error: %v\n", err)
		return
	}

	fmt.Printf("name:          %s\n", tag.Name.Text)
	fmt.Printf("self-closing:  %v\n", tag.IsSelfClosing)
	fmt.Printf("args:   %v\n", args)
	fmt.Print("kwargs: [")
	for i, kv := range kwargs {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("(%s, %v)", kv.Name, kv.Value)
	}
	fmt.Println("]")
}

// replCallbacks mirrors the identity-ish callback bundle used to
// describe concrete scenarios: variable resolution reads straight out
// of the context map, and the other three report what they were asked
// to resolve instead of performing real rendering or localization.
func replCallbacks() tagcall.Callbacks {
	return tagcall.Callbacks{
		Variable: func(ctx any, name string) (any, error) {
			m, _ := ctx.(map[string]any)
			v, ok := m[name]
			if !ok {
				return nil, fmt.Errorf("undefined variable %q", name)
			}
			return v, nil
		},
		TemplateString: func(ctx any, inner string) (any, error) {
			return "TEMPLATE_RESOLVED:" + inner, nil
		},
		Translation: func(ctx any, inner string) (any, error) {
			return "TRANSLATION_RESOLVED:" + inner, nil
		},
		Filter: func(ctx any, name string, value, arg any) (any, error) {
			if arg == nil {
				return fmt.Sprintf("%s(%v, None)", name, value), nil
			}
			return fmt.Sprintf("%s(%v, %v)", name, value, arg), nil
		},
	}
}
