package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jdiegots/congreso-2025/internal"
)

// ErrNotCollection marks a top-level input that is not a JSON array of
// records. The CLI maps it to a distinct exit status.
var ErrNotCollection = errors.New("not a JSON array of records")

// Aliases lists accepted field names in priority order. Input snapshots come
// from different exports and do not agree on field naming.
type Aliases struct {
	ID    []string `yaml:"id"`
	Name  []string `yaml:"name"`
	Title []string `yaml:"title"`
}

type AliasConfig struct {
	Roster  Aliases `yaml:"diputados"`
	Catalog Aliases `yaml:"iniciativas"`
}

// Both datasets accept the full id-alias list: snapshots exported from one
// dataset sometimes carry the other's id field name.
func DefaultAliases() AliasConfig {
	return AliasConfig{
		Roster: Aliases{
			ID:   []string{"id", "ID", "Id", "diputado_id", "initiative_id", "iniciativa_id"},
			Name: []string{"nombre", "name", "Nombre"},
		},
		Catalog: Aliases{
			ID:    []string{"id", "ID", "Id", "iniciativa_id", "diputado_id", "initiative_id"},
			Title: []string{"titulo", "Título", "title"},
		},
	}
}

func LoadAliases(path string) (AliasConfig, error) {
	cfg := DefaultAliases()
	if path == "" {
		return cfg, nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return AliasConfig{}, err
	}
	if err := yaml.Unmarshal(blob, &cfg); err != nil {
		return AliasConfig{}, fmt.Errorf("alias config %s: %w", path, err)
	}
	return cfg, nil
}

type Record map[string]any

// LoadRecords reads a JSON array of objects, tolerating a UTF-8 BOM.
func LoadRecords(path string) ([]Record, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	blob = bytes.TrimPrefix(blob, []byte("\xef\xbb\xbf"))
	var rows []Record
	if err := json.Unmarshal(blob, &rows); err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotCollection)
	}
	return rows, nil
}

func (r Record) Field(aliases []string) string {
	for _, k := range aliases {
		if v, ok := r[k]; ok {
			s := asString(v)
			if s != "" {
				return s
			}
		}
	}
	return ""
}

// Identifier resolves the record id through the aliases, falling back to a
// synthetic id.
func (r Record) Identifier(aliases []string) string {
	if id := r.Field(aliases); id != "" {
		return id
	}
	return SyntheticID(r)
}

// SyntheticID is a stable hash over the record's sorted key/value pairs.
func SyntheticID(r Record) string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		// Marshal sorts nested map keys, keeping the hash deterministic.
		v, err := json.Marshal(r[k])
		if err != nil {
			v = []byte(fmt.Sprintf("%v", r[k]))
		}
		fmt.Fprintf(h, "%s=%s;", k, v)
	}
	return fmt.Sprintf("gen_%016x", h.Sum64())
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func LoadRoster(path string, al Aliases) ([]internal.DeputyRecord, error) {
	rows, err := LoadRecords(path)
	if err != nil {
		return nil, err
	}
	out := make([]internal.DeputyRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, internal.DeputyRecord{
			ID:   r.Identifier(al.ID),
			Name: r.Field(al.Name),
		})
	}
	return out, nil
}

func LoadCatalog(path string, al Aliases) ([]internal.InitiativeRecord, error) {
	rows, err := LoadRecords(path)
	if err != nil {
		return nil, err
	}
	out := make([]internal.InitiativeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, internal.InitiativeRecord{
			ID:    r.Identifier(al.ID),
			Title: r.Field(al.Title),
		})
	}
	return out, nil
}
