package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

func col(name string, t field.Type) *schema.Column {
	return &schema.Column{Name: name, Type: t}
}

func autoID() *schema.Column {
	return &schema.Column{Name: "id", Type: field.TypeInt64, Increment: true}
}

// tables lists the schema in dependency order.
func tables() []*schema.Table {
	competences := schema.NewTable("competences").
		AddPrimary(col("id", field.TypeString)).
		AddColumn(col("code", field.TypeString)).
		AddColumn(col("area_code", field.TypeString)).
		AddColumn(col("name", field.TypeString))

	skills := schema.NewTable("skills").
		AddPrimary(col("id", field.TypeString)).
		AddColumn(col("name", field.TypeString)).
		AddColumn(col("tube_name", field.TypeString)).
		AddColumn(col("difficulty", field.TypeInt)).
		AddColumn(col("competence_id", field.TypeString)).
		AddColumn(col("status", field.TypeString)).
		AddIndex("skills_competence_id", false, []string{"competence_id"})

	challenges := schema.NewTable("challenges").
		AddPrimary(col("id", field.TypeString)).
		AddColumn(col("discriminant", field.TypeFloat64)).
		AddColumn(col("difficulty", field.TypeFloat64)).
		AddColumn(col("status", field.TypeString)).
		AddColumn(col("timed", field.TypeBool))

	challengeSkills := schema.NewTable("challenge_skills").
		AddPrimary(col("challenge_id", field.TypeString)).
		AddPrimary(col("skill_id", field.TypeString)).
		AddColumn(col("position", field.TypeInt)).
		AddIndex("challenge_skills_skill_id", false, []string{"skill_id"})

	targetProfileSkills := schema.NewTable("target_profile_skills").
		AddPrimary(col("target_profile_id", field.TypeInt64)).
		AddPrimary(col("skill_id", field.TypeString))

	assessments := schema.NewTable("assessments").
		AddPrimary(autoID()).
		AddColumn(col("type", field.TypeString)).
		AddColumn(col("user_id", field.TypeInt64)).
		AddColumn(col("state", field.TypeString)).
		AddColumn(col("certification_course_id", field.TypeInt64)).
		AddColumn(col("target_profile_id", field.TypeInt64)).
		AddColumn(col("created_at", field.TypeTime)).
		AddIndex("assessments_user_id", false, []string{"user_id"}).
		AddIndex("assessments_certification_course_id", false, []string{"certification_course_id"})

	answers := schema.NewTable("answers").
		AddPrimary(autoID()).
		AddColumn(col("challenge_id", field.TypeString)).
		AddColumn(col("assessment_id", field.TypeInt64)).
		AddColumn(col("result", field.TypeString)).
		AddColumn(col("value", field.TypeString)).
		AddColumn(col("answered_at", field.TypeTime)).
		AddIndex("answers_assessment_id", false, []string{"assessment_id"})

	knowledgeElements := schema.NewTable("knowledge_elements").
		AddPrimary(autoID()).
		AddColumn(col("skill_id", field.TypeString)).
		AddColumn(col("status", field.TypeString)).
		AddColumn(col("source", field.TypeString)).
		AddColumn(col("assessment_id", field.TypeInt64)).
		AddColumn(col("answer_id", field.TypeInt64)).
		AddColumn(col("user_id", field.TypeInt64)).
		AddColumn(col("created_at", field.TypeTime)).
		AddIndex("knowledge_elements_assessment_id", false, []string{"assessment_id"})

	courses := schema.NewTable("certification_courses").
		AddPrimary(autoID()).
		AddColumn(col("user_id", field.TypeInt64)).
		AddColumn(col("version", field.TypeInt)).
		AddColumn(&schema.Column{Name: "completed_at", Type: field.TypeTime, Nullable: true}).
		AddColumn(col("abort_reason", field.TypeString)).
		AddColumn(col("is_cancelled", field.TypeBool))

	certChallenges := schema.NewTable("certification_challenges").
		AddPrimary(autoID()).
		AddColumn(col("course_id", field.TypeInt64)).
		AddColumn(col("challenge_id", field.TypeString)).
		AddColumn(col("competence_id", field.TypeString)).
		AddColumn(col("associated_skill_id", field.TypeString)).
		AddColumn(col("is_neutralized", field.TypeBool)).
		AddColumn(col("has_validated_live_alert", field.TypeBool)).
		AddIndex("certification_challenges_course_id", false, []string{"course_id"})

	results := schema.NewTable("assessment_results").
		AddPrimary(autoID()).
		AddColumn(col("assessment_id", field.TypeInt64)).
		AddColumn(col("certification_course_id", field.TypeInt64)).
		AddColumn(col("pix_score", field.TypeInt)).
		AddColumn(col("reproducibility_rate", field.TypeFloat64)).
		AddColumn(col("status", field.TypeString)).
		AddColumn(col("emitter", field.TypeString)).
		AddColumn(col("comment_for_jury", field.TypeString)).
		AddColumn(col("created_at", field.TypeTime)).
		AddIndex("assessment_results_certification_course_id", false, []string{"certification_course_id"})

	marks := schema.NewTable("competence_marks").
		AddPrimary(autoID()).
		AddColumn(col("assessment_result_id", field.TypeInt64)).
		AddColumn(col("competence_id", field.TypeString)).
		AddColumn(col("competence_code", field.TypeString)).
		AddColumn(col("area_code", field.TypeString)).
		AddColumn(col("level", field.TypeInt)).
		AddColumn(col("score", field.TypeInt)).
		AddIndex("competence_marks_assessment_result_id", false, []string{"assessment_result_id"})

	flashConfigs := schema.NewTable("flash_algorithm_configurations").
		AddPrimary(autoID()).
		AddColumn(col("maximum_assessment_length", field.TypeInt)).
		AddColumn(col("variation_percent", field.TypeFloat64)).
		AddColumn(col("variation_percent_until", field.TypeInt)).
		AddColumn(col("double_measures_until", field.TypeInt)).
		AddColumn(col("minimum_answers_required", field.TypeInt)).
		AddColumn(col("created_at", field.TypeTime))

	return []*schema.Table{
		competences, skills, challenges, challengeSkills, targetProfileSkills,
		assessments, answers, knowledgeElements,
		courses, certChallenges, results, marks, flashConfigs,
	}
}

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables()...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
