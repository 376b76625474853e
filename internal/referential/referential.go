// Package referential loads the YAML referential that seeds competences,
// skills, challenges, target profiles and scoring tables.
package referential

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/flash"
	"github.com/abhisek/certify/internal/skillgraph"
)

// SupportedMajor is the document major version this loader understands.
const SupportedMajor = "v1"

//go:embed schema.json
var schemaJSON []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// Document is a parsed referential file.
type Document struct {
	Version        string          `yaml:"version"`
	Competences    []Competence    `yaml:"competences"`
	Skills         []Skill         `yaml:"skills"`
	Challenges     []Challenge     `yaml:"challenges"`
	TargetProfiles []TargetProfile `yaml:"target_profiles"`
	Flash          *FlashConfig    `yaml:"flash"`
	Scale          *Scale          `yaml:"scale"`
}

type Competence struct {
	ID   string `yaml:"id"`
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type Skill struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Competence string `yaml:"competence"`
	Status     string `yaml:"status"`
}

type Challenge struct {
	ID           string   `yaml:"id"`
	Skills       []string `yaml:"skills"`
	Difficulty   float64  `yaml:"difficulty"`
	Discriminant float64  `yaml:"discriminant"`
	Status       string   `yaml:"status"`
	Timed        bool     `yaml:"timed"`
}

type TargetProfile struct {
	ID     int64    `yaml:"id"`
	Skills []string `yaml:"skills"`
}

// FlashConfig overrides fields of the default flash configuration.
// Unset fields keep their defaults.
type FlashConfig struct {
	MaximumAssessmentLength *int     `yaml:"maximum_assessment_length"`
	VariationPercent        *float64 `yaml:"variation_percent"`
	VariationPercentUntil   *int     `yaml:"variation_percent_until"`
	DoubleMeasuresUntil     *int     `yaml:"double_measures_until"`
	MinimumAnswersRequired  *int     `yaml:"minimum_answers_required"`
}

type Scale struct {
	Intervals         [][]float64 `yaml:"intervals"` // [lower, upper] pairs
	PointsPerInterval int         `yaml:"points_per_interval"`
	PointsPerLevel    int         `yaml:"points_per_level"`
	MaxReachableLevel int         `yaml:"max_reachable_level"`
}

// Load reads and parses a referential file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read referential: %w", err)
	}
	return Parse(data)
}

// Parse validates raw YAML against the referential schema and decodes it.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse referential: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode referential: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}
	return &doc, nil
}

func checkVersion(v string) error {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("referential version %q is not a valid semver", v)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("referential version %s: unsupported major %s (want %s)", v, major, SupportedMajor)
	}
	return nil
}

func validate(raw any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	// YAML values are round-tripped through JSON so the validator only
	// sees JSON types.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("referential to json: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("referential to json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("referential schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if compileErr = json.Unmarshal(schemaJSON, &def); compileErr != nil {
			compileErr = fmt.Errorf("parse referential schema: %w", compileErr)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://referential.json"
		if compileErr = c.AddResource(url, def); compileErr != nil {
			compileErr = fmt.Errorf("add referential schema: %w", compileErr)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

// Graph builds and validates the skill graph.
func (d *Document) Graph() (*skillgraph.Graph, error) {
	competences := make([]skillgraph.Competence, 0, len(d.Competences))
	for _, c := range d.Competences {
		area, _, _ := strings.Cut(c.Code, ".")
		competences = append(competences, skillgraph.Competence{
			ID:       c.ID,
			Code:     c.Code,
			AreaCode: area,
			Name:     c.Name,
		})
	}
	skills := make([]skillgraph.Skill, 0, len(d.Skills))
	for _, s := range d.Skills {
		sk, err := skillgraph.NewSkill(s.ID, s.Name, s.Competence)
		if err != nil {
			return nil, err
		}
		if s.Status != "" {
			sk.Status = skillgraph.SkillStatus(s.Status)
		}
		skills = append(skills, sk)
	}
	g := skillgraph.New(skills, competences)
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("referential graph: %w", err)
	}
	return g, nil
}

// ChallengeList returns the challenges, checking that each skill is known.
func (d *Document) ChallengeList(g *skillgraph.Graph) ([]assessment.Challenge, error) {
	out := make([]assessment.Challenge, 0, len(d.Challenges))
	for _, c := range d.Challenges {
		for _, s := range c.Skills {
			if !g.HasSkill(s) {
				return nil, fmt.Errorf("challenge %s: unknown skill %s", c.ID, s)
			}
		}
		status := assessment.ChallengeValidated
		if c.Status != "" {
			status = assessment.ChallengeStatus(c.Status)
		}
		out = append(out, assessment.Challenge{
			ID:           c.ID,
			SkillIDs:     c.Skills,
			Discriminant: c.Discriminant,
			Difficulty:   c.Difficulty,
			Status:       status,
			Timed:        c.Timed,
		})
	}
	return out, nil
}

// FlashConfiguration returns the flash configuration, nil when the
// document does not set one.
func (d *Document) FlashConfiguration() *assessment.FlashAlgorithmConfiguration {
	if d.Flash == nil {
		return nil
	}
	c := assessment.DefaultFlashAlgorithmConfiguration()
	if v := d.Flash.MaximumAssessmentLength; v != nil {
		c.MaximumAssessmentLength = *v
	}
	if v := d.Flash.VariationPercent; v != nil {
		c.VariationPercent = *v
	}
	if v := d.Flash.VariationPercentUntil; v != nil {
		c.VariationPercentUntil = *v
	}
	if v := d.Flash.DoubleMeasuresUntil; v != nil {
		c.DoubleMeasuresUntil = *v
	}
	if v := d.Flash.MinimumAnswersRequired; v != nil {
		c.MinimumAnswersRequiredToValidateACertification = *v
	}
	return &c
}

// FlashScale returns the document scale, or the default one when absent.
// Zero point and level fields keep their defaults.
func (d *Document) FlashScale() (flash.Scale, error) {
	s := flash.DefaultScale()
	if d.Scale == nil {
		return s, nil
	}
	s.Intervals = make([]flash.Interval, 0, len(d.Scale.Intervals))
	for _, iv := range d.Scale.Intervals {
		s.Intervals = append(s.Intervals, flash.Interval{Lower: iv[0], Upper: iv[1]})
	}
	if d.Scale.PointsPerInterval > 0 {
		s.PointsPerInterval = d.Scale.PointsPerInterval
	}
	if d.Scale.PointsPerLevel > 0 {
		s.PointsPerLevel = d.Scale.PointsPerLevel
	}
	if d.Scale.MaxReachableLevel > 0 {
		s.MaxReachableLevel = d.Scale.MaxReachableLevel
	}
	if err := s.Validate(); err != nil {
		return flash.Scale{}, fmt.Errorf("referential scale: %w", err)
	}
	return s, nil
}

// Sink receives seeded referential data.
type Sink interface {
	SaveCompetences(ctx context.Context, competences []skillgraph.Competence) error
	SaveSkills(ctx context.Context, skills []skillgraph.Skill) error
	SaveChallenges(ctx context.Context, challenges []assessment.Challenge) error
	SaveTargetProfile(ctx context.Context, id int64, skillIDs []string) error
	SaveFlashConfig(ctx context.Context, c assessment.FlashAlgorithmConfiguration) error
}

// Stats counts what Seed wrote.
type Stats struct {
	Competences    int
	Skills         int
	Challenges     int
	TargetProfiles int
	FlashConfig    bool
}

// Seed validates the document and writes it to sink.
func (d *Document) Seed(ctx context.Context, sink Sink) (Stats, error) {
	g, err := d.Graph()
	if err != nil {
		return Stats{}, err
	}
	challenges, err := d.ChallengeList(g)
	if err != nil {
		return Stats{}, err
	}
	for _, tp := range d.TargetProfiles {
		for _, s := range tp.Skills {
			if !g.HasSkill(s) {
				return Stats{}, fmt.Errorf("target profile %d: unknown skill %s", tp.ID, s)
			}
		}
	}

	if err := sink.SaveCompetences(ctx, g.Competences()); err != nil {
		return Stats{}, err
	}
	if err := sink.SaveSkills(ctx, g.AllSkills()); err != nil {
		return Stats{}, err
	}
	if err := sink.SaveChallenges(ctx, challenges); err != nil {
		return Stats{}, err
	}
	for _, tp := range d.TargetProfiles {
		if err := sink.SaveTargetProfile(ctx, tp.ID, tp.Skills); err != nil {
			return Stats{}, err
		}
	}
	stats := Stats{
		Competences:    len(g.Competences()),
		Skills:         len(g.AllSkills()),
		Challenges:     len(challenges),
		TargetProfiles: len(d.TargetProfiles),
	}
	if fc := d.FlashConfiguration(); fc != nil {
		if err := sink.SaveFlashConfig(ctx, *fc); err != nil {
			return Stats{}, err
		}
		stats.FlashConfig = true
	}
	return stats, nil
}
