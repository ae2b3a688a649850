package shell

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/talonops/talon/internal/errors"
)

// Command is the result of parsing one shell input line against the catalog.
type Command struct {
	Verb Verb
	Name string
	Sub  string

	args  map[string]string
	flags map[string]string
	set   map[string]bool
}

// Arg returns the value of a positional argument, or "" if it was omitted.
func (c *Command) Arg(name string) string {
	return c.args[name]
}

// Flag returns the value of a named argument, or "" if it was omitted.
func (c *Command) Flag(key string) string {
	return c.flags[key]
}

// Has reports whether a flag was given on the input line.
func (c *Command) Has(key string) bool {
	return c.set[key]
}

// SetFlag records or overwrites a flag value. The REPL uses this to rewrite
// a local-workstation script path into raw script content before translation.
func (c *Command) SetFlag(key, value string) {
	c.flags[key] = value
	c.set[key] = true
}

// ClearFlag removes a flag as if it had never been given.
func (c *Command) ClearFlag(key string) {
	delete(c.flags, key)
	delete(c.set, key)
}

func parseError(format string, args ...interface{}) error {
	return errors.New(
		errors.ErrParse,
		fmt.Sprintf(format, args...),
		"run 'help <command>' to see the expected arguments",
	)
}

// Tokenize splits a line into tokens. Single and double quotes group words
// and are stripped; inside double quotes a backslash may escape a double
// quote. Backslashes are otherwise literal, since Windows paths are the
// most common argument in this shell. An unterminated quote is an error so
// that a half-typed script argument never silently reaches the remote
// hosts.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false

	var quote rune

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case quote == '"':
			switch {
			case r == '\\' && i+1 < len(runes) && runes[i+1] == '"':
				current.WriteRune('"')
				i++
			case r == '"':
				quote = 0
			default:
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if quote != 0 {
		return nil, parseError("unterminated %c quote", quote)
	}
	if inToken {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}

// Parse tokenizes a line and validates it against the catalog, returning a
// structured Command ready for translation.
func (c *Catalog) Parse(line string) (*Command, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, parseError("empty command")
	}

	name := tokens[0]
	grammar, ok := c.Lookup(name)
	if !ok {
		return nil, parseError("unknown command: %s", name)
	}

	cmd := &Command{
		Verb:  grammar.Verb,
		Name:  name,
		args:  make(map[string]string),
		flags: make(map[string]string),
		set:   make(map[string]bool),
	}
	rest := tokens[1:]

	if grammar.Sub != nil {
		if len(rest) == 0 {
			return nil, parseError("%s requires a subcommand: %s", name, strings.Join(subNames(grammar), ", "))
		}
		sub, ok := grammar.Sub[rest[0]]
		if !ok {
			return nil, parseError("unknown %s subcommand: %s (expected one of: %s)",
				name, rest[0], strings.Join(subNames(grammar), ", "))
		}
		cmd.Sub = rest[0]
		grammar = sub
		rest = rest[1:]
	}

	if err := applyGrammar(cmd, grammar, rest); err != nil {
		return nil, err
	}

	return cmd, nil
}

func subNames(g *Grammar) []string {
	names := make([]string, 0, len(g.Sub))
	for name := range g.Sub {
		names = append(names, name)
	}
	// map order is not stable; sort so error messages are deterministic
	sort.Strings(names)
	return names
}

func applyGrammar(cmd *Command, g *Grammar, tokens []string) error {
	posIndex := 0

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if strings.HasPrefix(token, "-") && len(token) > 1 {
			spec, value, hasValue := matchFlag(g, token)
			if spec == nil {
				return parseError("%s: unrecognized argument: %s", g.Name, token)
			}
			if cmd.set[spec.Key] {
				return parseError("%s: %s given more than once", g.Name, token)
			}

			if spec.TakesValue && !hasValue {
				if i+1 >= len(tokens) {
					return parseError("%s: %s requires a value", g.Name, token)
				}
				i++
				value = tokens[i]
			}
			if !spec.TakesValue && hasValue {
				return parseError("%s: %s does not take a value", g.Name, token)
			}

			if err := validateFlagValue(g, spec, &value); err != nil {
				return err
			}
			cmd.flags[spec.Key] = value
			cmd.set[spec.Key] = true
			continue
		}

		if posIndex >= len(g.Positionals) {
			return parseError("%s: unexpected argument: %s", g.Name, token)
		}
		spec := g.Positionals[posIndex]
		posIndex++

		value := token
		if spec.Lower {
			value = strings.ToLower(value)
		}
		if spec.Int {
			if _, err := strconv.Atoi(value); err != nil {
				return parseError("%s: %s must be a number, got %q", g.Name, spec.Name, token)
			}
		}
		if len(spec.OneOf) > 0 && !contains(spec.OneOf, value) {
			return parseError("%s: %s must be one of: %s", g.Name, spec.Name, strings.Join(spec.OneOf, ", "))
		}
		if spec.Choices != nil && !spec.Choices.Empty() && !spec.Choices.Contains(value) {
			return parseError("%s: %q is not a valid choice for %s", g.Name, value, spec.Name)
		}
		cmd.args[spec.Name] = value
	}

	for i := posIndex; i < len(g.Positionals); i++ {
		spec := g.Positionals[i]
		if spec.Required {
			return parseError("%s: missing required argument: %s", g.Name, spec.Name)
		}
		if spec.Default != "" {
			cmd.args[spec.Name] = spec.Default
		}
	}

	for _, spec := range g.Flags {
		if cmd.set[spec.Key] {
			continue
		}
		if spec.Required {
			return parseError("%s: missing required argument: %s", g.Name, spec.Forms[0])
		}
		if spec.Default != "" {
			cmd.flags[spec.Key] = spec.Default
		}
	}

	for _, group := range g.OneRequired {
		if n := countSet(cmd, group); n != 1 {
			forms := groupForms(g, group)
			if n == 0 {
				return parseError("%s: one of %s is required", g.Name, strings.Join(forms, ", "))
			}
			return parseError("%s: only one of %s may be given", g.Name, strings.Join(forms, ", "))
		}
	}
	for _, group := range g.Exclusive {
		if countSet(cmd, group) > 1 {
			forms := groupForms(g, group)
			return parseError("%s: only one of %s may be given", g.Name, strings.Join(forms, ", "))
		}
	}

	if g.Check != nil {
		if err := g.Check(cmd); err != nil {
			return err
		}
	}

	return nil
}

// matchFlag resolves a token like "-Confirm" or "--batch-get-req-id=xyz"
// against the grammar's flag specs, splitting off any inline "=value".
func matchFlag(g *Grammar, token string) (*FlagSpec, string, bool) {
	name := token
	value := ""
	hasValue := false
	if idx := strings.Index(token, "="); idx > 0 {
		name = token[:idx]
		value = token[idx+1:]
		hasValue = true
	}

	for i := range g.Flags {
		for _, form := range g.Flags[i].Forms {
			if form == name {
				return &g.Flags[i], value, hasValue
			}
		}
	}
	return nil, "", false
}

func validateFlagValue(g *Grammar, spec *FlagSpec, value *string) error {
	if !spec.TakesValue {
		return nil
	}
	if spec.Upper {
		*value = strings.ToUpper(*value)
	}
	if spec.Int {
		if _, err := strconv.Atoi(*value); err != nil {
			return parseError("%s: %s must be a number, got %q", g.Name, spec.Forms[0], *value)
		}
	}
	if len(spec.OneOf) > 0 && !contains(spec.OneOf, *value) {
		return parseError("%s: %s must be one of: %s", g.Name, spec.Forms[0], strings.Join(spec.OneOf, ", "))
	}
	if spec.Choices != nil && !spec.Choices.Empty() && !spec.Choices.Contains(*value) {
		return parseError("%s: %q is not a valid choice for %s", g.Name, *value, spec.Forms[0])
	}
	return nil
}

func countSet(cmd *Command, keys []string) int {
	n := 0
	for _, key := range keys {
		if cmd.set[key] {
			n++
		}
	}
	return n
}

func groupForms(g *Grammar, keys []string) []string {
	var forms []string
	for _, key := range keys {
		for i := range g.Flags {
			if g.Flags[i].Key == key {
				forms = append(forms, g.Flags[i].Forms[0])
			}
		}
	}
	return forms
}

func contains(values []string, v string) bool {
	for _, val := range values {
		if val == v {
			return true
		}
	}
	return false
}
