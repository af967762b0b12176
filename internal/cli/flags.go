package cli

import (
	"fmt"
	"strings"
	"unicode"
)

// flagSet holds polyglot's flags. Everything that is not a flag is a word
// of the query, so flags may appear before, after or between the words.
type flagSet struct {
	long  map[string]*flagDef
	short map[rune]*flagDef
}

type flagDef struct {
	name      string
	short     rune
	takesArg  bool
	set       func(string) error
	usageName string
}

func newFlagSet() *flagSet {
	return &flagSet{long: map[string]*flagDef{}, short: map[rune]*flagDef{}}
}

// Switch registers a flag without a value. short may be zero.
func (fs *flagSet) Switch(name string, short rune, set func()) {
	fs.add(&flagDef{name: name, short: short, set: func(string) error { set(); return nil }})
}

// Value registers a flag that takes one argument.
func (fs *flagSet) Value(name string, short rune, set func(string) error) {
	fs.add(&flagDef{name: name, short: short, takesArg: true, set: set})
}

func (fs *flagSet) add(def *flagDef) {
	def.usageName = "--" + def.name
	fs.long[def.name] = def
	if def.short != 0 {
		fs.short[def.short] = def
	}
}

// Parse applies the flags in args and returns the query words. Short
// switches may be grouped ("-dh"); a short flag taking a value accepts it
// attached ("-pollama", "-p=ollama") or as the next argument. Words that
// look like negative numbers are kept as query words.
func (fs *flagSet) Parse(args []string) ([]string, error) {
	words := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		next := func(def *flagDef) (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", def.usageName)
			}
			i++
			return args[i], nil
		}

		switch {
		case arg == "":
		case arg == "--":
			return append(words, args[i+1:]...), nil
		case strings.HasPrefix(arg, "--"):
			if err := fs.parseLong(arg, next); err != nil {
				return nil, err
			}
		case isShortCluster(arg):
			if err := fs.parseShort(arg, next); err != nil {
				return nil, err
			}
		default:
			words = append(words, args[i])
		}
	}
	return words, nil
}

func (fs *flagSet) parseLong(arg string, next func(*flagDef) (string, error)) error {
	name, value, hasValue := strings.Cut(arg[2:], "=")
	def, ok := fs.long[name]
	if !ok {
		return fmt.Errorf("unknown option %q (see polyglot --help)", arg)
	}
	if !def.takesArg {
		if hasValue {
			return fmt.Errorf("%s does not accept a value", def.usageName)
		}
		return def.set("")
	}
	if !hasValue {
		var err error
		if value, err = next(def); err != nil {
			return err
		}
	}
	return def.apply(value)
}

func (fs *flagSet) parseShort(arg string, next func(*flagDef) (string, error)) error {
	cluster := []rune(arg[1:])
	for j, r := range cluster {
		def, ok := fs.short[r]
		if !ok {
			if len(cluster) > 1 {
				return fmt.Errorf("unknown option -%c in %q (see polyglot --help)", r, arg)
			}
			return fmt.Errorf("unknown option %q (see polyglot --help)", arg)
		}
		if !def.takesArg {
			if j+1 < len(cluster) && cluster[j+1] == '=' {
				return fmt.Errorf("-%c does not accept a value", r)
			}
			if err := def.set(""); err != nil {
				return err
			}
			continue
		}
		value := strings.TrimPrefix(string(cluster[j+1:]), "=")
		if j+1 == len(cluster) {
			var err error
			if value, err = next(def); err != nil {
				return err
			}
		}
		return def.apply(value)
	}
	return nil
}

func (def *flagDef) apply(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s requires a non-empty value", def.usageName)
	}
	return def.set(value)
}

// isShortCluster reports whether arg is "-x..." rather than a lone dash or
// a number such as "-5".
func isShortCluster(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	r := []rune(arg[1:])[0]
	return !unicode.IsDigit(r) && r != '.'
}
