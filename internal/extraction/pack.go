package extraction

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

//go:embed pack_schema.json
var packSchemaJSON []byte

const packSchemaURL = "pack_schema.json"

var packSchema = compilePackSchema()

func compilePackSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(packSchemaURL, bytes.NewReader(packSchemaJSON)); err != nil {
		panic(fmt.Sprintf("extraction: add pack schema: %v", err))
	}
	return compiler.MustCompile(packSchemaURL)
}

// PackSchema returns the JSON Schema pattern packs are validated against.
func PackSchema() []byte {
	return bytes.Clone(packSchemaJSON)
}

// packFile is the YAML layout of a pattern pack.
type packFile struct {
	Version     int        `yaml:"version"`
	Description string     `yaml:"description"`
	Rules       []packRule `yaml:"rules"`
}

type packRule struct {
	Field      string `yaml:"field"`
	Name       string `yaml:"name"`
	Pattern    string `yaml:"pattern"`
	Group      int    `yaml:"group"`
	TotalGroup int    `yaml:"totalGroup"`
}

// Pack is a compiled set of extra rules for layouts the built-in rules do
// not cover. Apply it with WithPack.
type Pack struct {
	Description string

	names         []Rule[string]
	registrations []Rule[string]
	grades        []Rule[string]
	marks         []Rule[Marks]
	subjects      []Rule[string]
	programs      []Rule[string]
	faculties     []Rule[string]
	statuses      []Rule[domain.ResultStatus]
}

// Len returns the number of rules in the pack.
func (p *Pack) Len() int {
	return len(p.names) + len(p.registrations) + len(p.grades) + len(p.marks) +
		len(p.subjects) + len(p.programs) + len(p.faculties) + len(p.statuses)
}

// LoadPack reads and compiles a pattern pack file.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern pack: %w", err)
	}
	p, err := ParsePack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePack validates YAML pack data against the schema and compiles its rules.
func ParsePack(data []byte) (*Pack, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse pattern pack: %v", domain.ErrInvalidInput, err)
	}

	// The validator works on JSON values, so round-trip through encoding/json.
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern pack is not a plain document: %v", domain.ErrInvalidInput, err)
	}
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: prepare pattern pack: %v", domain.ErrInvalidInput, err)
	}
	if err := packSchema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, fmt.Errorf("%w: pattern pack: %s", domain.ErrInvalidInput, ve.Error())
		}
		return nil, fmt.Errorf("%w: pattern pack: %v", domain.ErrInvalidInput, err)
	}

	var file packFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode pattern pack: %v", domain.ErrInvalidInput, err)
	}

	p := &Pack{Description: file.Description}
	for i, r := range file.Rules {
		if err := p.add(i, r); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Pack) add(index int, r packRule) error {
	name := r.Name
	if name == "" {
		name = r.Field + "-pack-" + strconv.Itoa(index+1)
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("%w: rule %q: %v", domain.ErrInvalidInput, name, err)
	}

	group := r.Group
	if group == 0 {
		group = 1
	}
	if group > re.NumSubexp() || r.TotalGroup > re.NumSubexp() {
		return fmt.Errorf("%w: rule %q: pattern has %d groups", domain.ErrInvalidInput, name, re.NumSubexp())
	}

	text := func(usable func(string) (string, bool)) Rule[string] {
		return Rule[string]{
			Name:    name,
			Pattern: re,
			Extract: func(g []string) (string, bool) { return usable(g[group]) },
		}
	}

	switch r.Field {
	case "name":
		p.names = append(p.names, text(usableName))
	case "registration":
		p.registrations = append(p.registrations, text(usableRegistration))
	case "grade":
		p.grades = append(p.grades, text(usableGrade))
	case "subject":
		p.subjects = append(p.subjects, text(usableText))
	case "program":
		p.programs = append(p.programs, text(usableText))
	case "faculty":
		p.faculties = append(p.faculties, text(usableText))
	case "marks":
		p.marks = append(p.marks, Rule[Marks]{
			Name:    name,
			Pattern: re,
			Extract: marksExtract(group, r.TotalGroup),
		})
	case "status":
		p.statuses = append(p.statuses, Rule[domain.ResultStatus]{
			Name:    name,
			Pattern: re,
			Extract: func(g []string) (domain.ResultStatus, bool) { return statusFromKeyword(g[group]) },
		})
	default:
		return fmt.Errorf("%w: rule %q: unknown field %q", domain.ErrInvalidInput, name, r.Field)
	}
	return nil
}
