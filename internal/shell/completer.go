package shell

import (
	"strings"
)

// builtins are REPL-local commands that never reach the catalog.
var builtins = []string{"exit", "help", "quit", "set"}

// CatalogCompleter provides tab completion over the verb catalog: verb
// names on the first word, then subcommand names, flag spellings, and
// choice-backed values (cloud script and put-file names) for later words.
type CatalogCompleter struct {
	catalog *Catalog
}

// NewCatalogCompleter creates a completer over the given catalog.
func NewCatalogCompleter(catalog *Catalog) *CatalogCompleter {
	return &CatalogCompleter{catalog: catalog}
}

// Do implements the readline.AutoCompleter interface. It is called when the
// user presses TAB, and returns the candidate suffixes plus the length of
// the prefix they extend.
func (c *CatalogCompleter) Do(line []rune, pos int) ([][]rune, int) {
	lineStr := string(line[:pos])
	parts := strings.Fields(lineStr)
	startingNewWord := lineStr == "" || strings.HasSuffix(lineStr, " ")

	// First word: verbs plus the REPL builtins.
	if len(parts) == 0 || (len(parts) == 1 && !startingNewWord) {
		prefix := ""
		if len(parts) == 1 {
			prefix = parts[0]
		}
		candidates := append(c.catalog.Verbs(), builtins...)
		return matchPrefix(candidates, prefix)
	}

	grammar, ok := c.catalog.Lookup(parts[0])
	if !ok {
		return nil, 0
	}

	prefix := ""
	argWords := parts[1:]
	if !startingNewWord {
		prefix = argWords[len(argWords)-1]
		argWords = argWords[:len(argWords)-1]
	}

	// Subcommand position.
	if grammar.Sub != nil {
		if len(argWords) == 0 {
			names := make([]string, 0, len(grammar.Sub))
			for name := range grammar.Sub {
				names = append(names, name)
			}
			return matchPrefix(names, prefix)
		}
		sub, ok := grammar.Sub[argWords[0]]
		if !ok {
			return nil, 0
		}
		grammar = sub
		argWords = argWords[1:]
	}

	// Inline flag value, e.g. "-CloudFile=par".
	if idx := strings.Index(prefix, "="); idx > 0 && strings.HasPrefix(prefix, "-") {
		spec, _, _ := matchFlag(grammar, prefix)
		if values := flagValueCandidates(spec); values != nil {
			return matchPrefix(values, prefix[idx+1:])
		}
		return nil, 0
	}

	// Flag spellings.
	if strings.HasPrefix(prefix, "-") {
		var forms []string
		for i := range grammar.Flags {
			forms = append(forms, grammar.Flags[i].Forms...)
		}
		return matchPrefix(forms, prefix)
	}

	// Value of the preceding value-taking flag.
	if len(argWords) > 0 && strings.HasPrefix(argWords[len(argWords)-1], "-") {
		spec, _, hadValue := matchFlag(grammar, argWords[len(argWords)-1])
		if spec != nil && spec.TakesValue && !hadValue {
			if values := flagValueCandidates(spec); values != nil {
				return matchPrefix(values, prefix)
			}
			return nil, 0
		}
	}

	// Positional with a choice set, e.g. the put file name.
	posIndex := countPositionals(grammar, argWords)
	if posIndex < len(grammar.Positionals) {
		if choices := grammar.Positionals[posIndex].Choices; choices != nil {
			return matchPrefix(choices.Values(), prefix)
		}
	}

	return nil, 0
}

// flagValueCandidates returns the completable values for a flag, from its
// choice set or its fixed OneOf list.
func flagValueCandidates(spec *FlagSpec) []string {
	if spec == nil {
		return nil
	}
	if spec.Choices != nil {
		return spec.Choices.Values()
	}
	if len(spec.OneOf) > 0 {
		return spec.OneOf
	}
	return nil
}

// countPositionals counts how many of the already-complete words consumed a
// positional slot, skipping flags and their detached values.
func countPositionals(g *Grammar, words []string) int {
	count := 0
	for i := 0; i < len(words); i++ {
		if strings.HasPrefix(words[i], "-") && len(words[i]) > 1 {
			spec, _, hadValue := matchFlag(g, words[i])
			if spec != nil && spec.TakesValue && !hadValue {
				i++
			}
			continue
		}
		count++
	}
	return count
}

func matchPrefix(candidates []string, prefix string) ([][]rune, int) {
	var matches [][]rune
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, prefix) {
			matches = append(matches, []rune(candidate[len(prefix):]+" "))
		}
	}
	return matches, len(prefix)
}
