package countries

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-vortex/pkg/model"
)

//go:embed data/countries.txt
var dataFS embed.FS

const defaultListPath = "data/countries.txt"

var (
	defaultOnce      sync.Once
	defaultCountries []string
	defaultErr       error
)

// DefaultCountries returns the embedded list, sorted.
func DefaultCountries() ([]string, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		names, err := LoadCountries(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultCountries = names
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]string{}, defaultCountries...), nil
}

// LoadCountries reads one name per line, skipping blanks, comments and
// duplicates.
func LoadCountries(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("countries: missing reader")
	}

	scanner := bufio.NewScanner(r)
	names := make([]string, 0, 32)
	seen := map[string]struct{}{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		names = append(names, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

// ModelOptions returns the embedded list as select options. It feeds the
// "countries" option source of the flow definitions.
func ModelOptions() []model.Option {
	names, err := DefaultCountries()
	if err != nil {
		return nil
	}
	out := make([]model.Option, 0, len(names))
	for _, name := range names {
		out = append(out, model.Option{Value: name, Label: name})
	}
	return out
}

// Contains reports whether name is one of the supported countries.
func Contains(name string) bool {
	names, err := DefaultCountries()
	if err != nil {
		return false
	}
	idx := sort.SearchStrings(names, name)
	return idx < len(names) && names[idx] == name
}
