package store

import (
	"context"
	"fmt"
	"sort"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/skillgraph"
)

// SkillRepo stores competences and skills.
type SkillRepo struct{ q querier }

var _ assessment.SkillRepository = (*SkillRepo)(nil)

// SaveCompetences inserts or replaces competences.
func (r *SkillRepo) SaveCompetences(ctx context.Context, competences []skillgraph.Competence) error {
	if len(competences) == 0 {
		return nil
	}
	ins := builder.Insert("competences").Columns("id", "code", "area_code", "name")
	for _, c := range competences {
		ins.Values(c.ID, c.Code, c.AreaCode, c.Name)
	}
	ins.OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	query, args := ins.Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save competences: %w", err)
	}
	return nil
}

// SaveSkills inserts or replaces skills.
func (r *SkillRepo) SaveSkills(ctx context.Context, skills []skillgraph.Skill) error {
	if len(skills) == 0 {
		return nil
	}
	ins := builder.Insert("skills").Columns("id", "name", "tube_name", "difficulty", "competence_id", "status")
	for _, s := range skills {
		ins.Values(s.ID, s.Name, s.TubeName, s.Difficulty, s.CompetenceID, string(s.Status))
	}
	ins.OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	query, args := ins.Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save skills: %w", err)
	}
	return nil
}

func (r *SkillRepo) Skills(ctx context.Context) ([]skillgraph.Skill, error) {
	query, args := builder.Select("id", "name", "tube_name", "difficulty", "competence_id", "status").
		From(builder.Table("skills")).
		OrderBy("id").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	var out []skillgraph.Skill
	for rows.Next() {
		var s skillgraph.Skill
		var status string
		if err := rows.Scan(&s.ID, &s.Name, &s.TubeName, &s.Difficulty, &s.CompetenceID, &status); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		s.Status = skillgraph.SkillStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SkillRepo) Competences(ctx context.Context) ([]skillgraph.Competence, error) {
	query, args := builder.Select("id", "code", "area_code", "name").
		From(builder.Table("competences")).
		OrderBy("code").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query competences: %w", err)
	}
	defer rows.Close()

	var out []skillgraph.Competence
	for rows.Next() {
		var c skillgraph.Competence
		if err := rows.Scan(&c.ID, &c.Code, &c.AreaCode, &c.Name); err != nil {
			return nil, fmt.Errorf("scan competence: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadGraph builds the skill graph from stored reference data.
func (r *SkillRepo) LoadGraph(ctx context.Context) (*skillgraph.Graph, error) {
	skills, err := r.Skills(ctx)
	if err != nil {
		return nil, err
	}
	competences, err := r.Competences(ctx)
	if err != nil {
		return nil, err
	}
	g := skillgraph.New(skills, competences)
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("stored skill graph: %w", err)
	}
	return g, nil
}

// ChallengeRepo stores published challenges.
type ChallengeRepo struct{ q querier }

var _ assessment.ChallengeRepository = (*ChallengeRepo)(nil)

// Save inserts or replaces challenges and their measured skills.
func (r *ChallengeRepo) Save(ctx context.Context, challenges []assessment.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}
	ins := builder.Insert("challenges").Columns("id", "discriminant", "difficulty", "status", "timed")
	ids := make([]string, len(challenges))
	for i, c := range challenges {
		ids[i] = c.ID
		ins.Values(c.ID, c.Discriminant, c.Difficulty, string(c.Status), c.Timed)
	}
	ins.OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	query, args := ins.Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save challenges: %w", err)
	}

	query, args = builder.Delete("challenge_skills").Where(entsql.In("challenge_id", stringArgs(ids)...)).Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear challenge skills: %w", err)
	}
	links := builder.Insert("challenge_skills").Columns("challenge_id", "skill_id", "position")
	n := 0
	for _, c := range challenges {
		for pos, skillID := range c.SkillIDs {
			links.Values(c.ID, skillID, pos)
			n++
		}
	}
	if n == 0 {
		return nil
	}
	query, args = links.Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save challenge skills: %w", err)
	}
	return nil
}

func (r *ChallengeRepo) Get(ctx context.Context, id string) (assessment.Challenge, error) {
	cs, err := r.FindByIDs(ctx, []string{id})
	if err != nil {
		return assessment.Challenge{}, err
	}
	if len(cs) == 0 {
		return assessment.Challenge{}, fmt.Errorf("challenge %s: %w", id, assessment.ErrNotFound)
	}
	return cs[0], nil
}

func (r *ChallengeRepo) FindByIDs(ctx context.Context, ids []string) ([]assessment.Challenge, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args := builder.Select("id", "discriminant", "difficulty", "status", "timed").
		From(builder.Table("challenges")).
		Where(entsql.In("id", stringArgs(ids)...)).
		OrderBy("id").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query challenges: %w", err)
	}
	var out []assessment.Challenge
	for rows.Next() {
		var c assessment.Challenge
		var status string
		if err := rows.Scan(&c.ID, &c.Discriminant, &c.Difficulty, &status, &c.Timed); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		c.Status = assessment.ChallengeStatus(status)
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSkills(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ChallengeRepo) FindBySkillIDs(ctx context.Context, skillIDs []string) ([]assessment.Challenge, error) {
	if len(skillIDs) == 0 {
		return nil, nil
	}
	query, args := builder.Select("challenge_id").
		From(builder.Table("challenge_skills")).
		Where(entsql.In("skill_id", stringArgs(skillIDs)...)).
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query challenge skills: %w", err)
	}
	seen := make(map[string]bool)
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan challenge id: %w", err)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.FindByIDs(ctx, ids)
}

func (r *ChallengeRepo) attachSkills(ctx context.Context, challenges []assessment.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}
	index := make(map[string]int, len(challenges))
	ids := make([]string, len(challenges))
	for i, c := range challenges {
		index[c.ID] = i
		ids[i] = c.ID
	}
	query, args := builder.Select("challenge_id", "skill_id").
		From(builder.Table("challenge_skills")).
		Where(entsql.In("challenge_id", stringArgs(ids)...)).
		OrderBy("challenge_id", "position").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query challenge skills: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var challengeID, skillID string
		if err := rows.Scan(&challengeID, &skillID); err != nil {
			return fmt.Errorf("scan challenge skill: %w", err)
		}
		i := index[challengeID]
		challenges[i].SkillIDs = append(challenges[i].SkillIDs, skillID)
	}
	return rows.Err()
}

// TargetProfileRepo stores the skills targeted by smart placements.
type TargetProfileRepo struct{ q querier }

var _ assessment.TargetProfileRepository = (*TargetProfileRepo)(nil)

// Save replaces the skills of a target profile.
func (r *TargetProfileRepo) Save(ctx context.Context, id int64, skillIDs []string) error {
	query, args := builder.Delete("target_profile_skills").Where(entsql.EQ("target_profile_id", id)).Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear target profile %d: %w", id, err)
	}
	if len(skillIDs) == 0 {
		return nil
	}
	ins := builder.Insert("target_profile_skills").Columns("target_profile_id", "skill_id")
	for _, s := range skillIDs {
		ins.Values(id, s)
	}
	ins.OnConflict(entsql.ConflictColumns("target_profile_id", "skill_id"), entsql.ResolveWithIgnore())
	query, args = ins.Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save target profile %d: %w", id, err)
	}
	return nil
}

func (r *TargetProfileRepo) SkillIDs(ctx context.Context, id int64) ([]string, error) {
	query, args := builder.Select("skill_id").
		From(builder.Table("target_profile_skills")).
		Where(entsql.EQ("target_profile_id", id)).
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query target profile %d: %w", id, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan target skill: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("target profile %d: %w", id, assessment.ErrNotFound)
	}
	sort.Strings(out)
	return out, nil
}
