package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"hotel_reputation/internal/domain"
)

type catalogFile struct {
	Hotels  []string     `koanf:"hotels"`
	Sources []sourceFile `koanf:"sources"`
}

type sourceFile struct {
	Name      string            `koanf:"name"`
	Ledger    string            `koanf:"ledger"`
	Min       float64           `koanf:"min"`
	Max       float64           `koanf:"max"`
	Selectors []string          `koanf:"selectors"`
	Request   requestFile       `koanf:"request"`
	Targets   map[string]string `koanf:"targets"`
}

type requestFile struct {
	Method        string            `koanf:"method"`
	URL           string            `koanf:"url"`
	Body          string            `koanf:"body"`
	Headers       map[string]string `koanf:"headers"`
	FallbackHosts []string          `koanf:"fallback_hosts"`
	DropParams    []string          `koanf:"drop_params"`
}

var envRefRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${NAME} references. Bare $NAME is left alone since it shows up
// in real URLs.
func expandEnv(s string) string {
	return envRefRe.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(envRefRe.FindStringSubmatch(m)[1])
	})
}

// LoadCatalog reads the hotel list and per-source configuration from a YAML file.
func LoadCatalog(path string) (domain.Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read sources file: %w", err)
	}
	cat, err := ParseCatalog(content)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

func ParseCatalog(content []byte) (domain.Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(expandEnv(string(content)))), yaml.Parser()); err != nil {
		return domain.Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	var f catalogFile
	if err := k.Unmarshal("", &f); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	var cat domain.Catalog
	for _, h := range f.Hotels {
		key := domain.NormalizeHotelKey(h)
		if key == "" {
			return domain.Catalog{}, fmt.Errorf("empty hotel name")
		}
		if cat.HasHotel(key) {
			return domain.Catalog{}, fmt.Errorf("duplicate hotel %q", key)
		}
		cat.Hotels = append(cat.Hotels, key)
	}
	if len(cat.Hotels) == 0 {
		return domain.Catalog{}, fmt.Errorf("no hotels configured")
	}

	for _, s := range f.Sources {
		src, err := toSource(s, cat)
		if err != nil {
			return domain.Catalog{}, err
		}
		if _, dup := cat.Source(src.Name); dup {
			return domain.Catalog{}, fmt.Errorf("duplicate source %q", src.Name)
		}
		cat.Sources = append(cat.Sources, src)
	}
	return cat, nil
}

func toSource(s sourceFile, cat domain.Catalog) (domain.Source, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return domain.Source{}, fmt.Errorf("source without a name")
	}
	if s.Max <= s.Min {
		return domain.Source{}, fmt.Errorf("source %s: max %v must exceed min %v", name, s.Max, s.Min)
	}
	src := domain.Source{
		Name:      name,
		Ledger:    s.Ledger,
		Scale:     domain.Range{Min: s.Min, Max: s.Max},
		Selectors: s.Selectors,
		Request: domain.RequestTemplate{
			Method:        strings.ToUpper(s.Request.Method),
			URL:           s.Request.URL,
			Body:          s.Request.Body,
			Headers:       s.Request.Headers,
			FallbackHosts: s.Request.FallbackHosts,
			DropParams:    s.Request.DropParams,
		},
		Targets: make(map[domain.HotelKey]string, len(s.Targets)),
	}
	for h, t := range s.Targets {
		key := domain.NormalizeHotelKey(h)
		if !cat.HasHotel(key) {
			return domain.Source{}, fmt.Errorf("source %s: target for unknown hotel %q", name, key)
		}
		src.Targets[key] = strings.TrimSpace(t)
	}
	return src, nil
}

// Select keeps the named sources in the order given; no names means all.
func Select(cat domain.Catalog, names []string) ([]domain.Source, error) {
	if len(names) == 0 {
		return cat.Sources, nil
	}
	var out []domain.Source
	for _, n := range names {
		src, ok := cat.Source(n)
		if !ok {
			return nil, fmt.Errorf("unknown source %q", n)
		}
		out = append(out, src)
	}
	return out, nil
}
