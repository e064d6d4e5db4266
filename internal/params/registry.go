package params

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// ErrUnknownYear is returned when no parameter file exists for a year.
var ErrUnknownYear = errors.New("no payroll parameters for year")

// Bracket is one income tax tariff step. A nil UpTo marks the open last bracket.
type Bracket struct {
	UpTo *decimal.Decimal `yaml:"up_to" json:"up_to"`
	Rate decimal.Decimal  `yaml:"rate" json:"rate"`
}

// Year holds the statutory figures for one payroll year.
type Year struct {
	Year              int                                   `yaml:"year" json:"year"`
	MinWageGross      decimal.Decimal                       `yaml:"min_wage_gross" json:"min_wage_gross"`
	SGKCeilingMonthly decimal.Decimal                       `yaml:"sgk_ceiling_monthly" json:"sgk_ceiling_monthly"`
	StampRate         decimal.Decimal                       `yaml:"stamp_rate" json:"stamp_rate"`
	Rates             map[string]map[string]decimal.Decimal `yaml:"rates" json:"rates"`
	IncomeTaxTariff   []Bracket                             `yaml:"income_tax_tariff" json:"income_tax_tariff"`
}

// Rate returns the contribution rate key for an employee type.
func (y *Year) Rate(employeeType, key string) (decimal.Decimal, error) {
	rates, ok := y.Rates[employeeType]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown employee type %q", employeeType)
	}
	r, ok := rates[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("employee type %q has no rate %q", employeeType, key)
	}
	return r, nil
}

// HasEmployeeType reports whether rates exist for employeeType.
func (y *Year) HasEmployeeType(employeeType string) bool {
	_, ok := y.Rates[employeeType]
	return ok
}

func (y *Year) validate() error {
	if y.MinWageGross.Sign() <= 0 {
		return errors.New("min_wage_gross must be positive")
	}
	if y.SGKCeilingMonthly.LessThan(y.MinWageGross) {
		return errors.New("sgk_ceiling_monthly is below min_wage_gross")
	}
	if len(y.IncomeTaxTariff) == 0 {
		return errors.New("income_tax_tariff is empty")
	}
	for i, b := range y.IncomeTaxTariff {
		last := i == len(y.IncomeTaxTariff)-1
		if b.UpTo == nil && !last {
			return fmt.Errorf("tariff bracket %d has no upper limit but is not the last one", i)
		}
		if i > 0 && b.UpTo != nil && !b.UpTo.GreaterThan(*y.IncomeTaxTariff[i-1].UpTo) {
			return fmt.Errorf("tariff bracket %d does not increase", i)
		}
	}
	return nil
}

// Registry loads yearly parameters from an optional override directory,
// falling back to the files compiled into the binary. Loaded years are cached.
type Registry struct {
	dir   string
	cache sync.Map
}

// NewRegistry returns a registry reading params_<year>.yaml / <year>.yaml
// files from dir first. An empty dir uses only the embedded data.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir}
}

// Load returns the parameters for year.
func (r *Registry) Load(year int) (*Year, error) {
	if y, ok := r.cache.Load(year); ok {
		return y.(*Year), nil
	}

	data, err := r.read(year)
	if err != nil {
		return nil, err
	}

	var y Year
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("parse parameters for %d: %w", year, err)
	}
	if y.Year == 0 {
		y.Year = year
	}
	if err := y.validate(); err != nil {
		return nil, fmt.Errorf("parameters for %d: %w", year, err)
	}

	actual, _ := r.cache.LoadOrStore(year, &y)
	return actual.(*Year), nil
}

// Warm loads the given years concurrently so configuration errors surface at startup.
func (r *Registry) Warm(years ...int) error {
	var g errgroup.Group
	for _, year := range years {
		g.Go(func() error {
			_, err := r.Load(year)
			return err
		})
	}
	return g.Wait()
}

// Available lists the years present in the override directory and the embedded data.
func (r *Registry) Available() []int {
	seen := map[int]bool{}
	collect := func(names []string) {
		for _, name := range names {
			if y, ok := yearFromFile(name); ok {
				seen[y] = true
			}
		}
	}

	if entries, err := fs.ReadDir(embedded, "data"); err == nil {
		collect(entryNames(entries))
	}
	if r.dir != "" {
		if entries, err := os.ReadDir(r.dir); err == nil {
			collect(entryNames(entries))
		}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func (r *Registry) read(year int) ([]byte, error) {
	if r.dir != "" {
		for _, name := range fileNames(year) {
			data, err := os.ReadFile(filepath.Join(r.dir, name))
			if err == nil {
				return data, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	data, err := embedded.ReadFile("data/" + strconv.Itoa(year) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w %d", ErrUnknownYear, year)
	}
	return data, nil
}

func fileNames(year int) []string {
	y := strconv.Itoa(year)
	return []string{"params_" + y + ".yaml", y + ".yaml"}
}

func yearFromFile(name string) (int, bool) {
	base := strings.TrimSuffix(name, ".yaml")
	if base == name {
		return 0, false
	}
	base = strings.TrimPrefix(base, "params_")
	y, err := strconv.Atoi(base)
	return y, err == nil
}

func entryNames(entries []fs.DirEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
