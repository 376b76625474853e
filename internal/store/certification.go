package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/certify/internal/assessment"
)

// CourseRepo stores certification courses.
type CourseRepo struct{ q querier }

var _ assessment.CertificationCourseRepository = (*CourseRepo)(nil)

// Create inserts a course and returns it with its ID set.
func (r *CourseRepo) Create(ctx context.Context, c assessment.CertificationCourse) (assessment.CertificationCourse, error) {
	query, args := builder.Insert("certification_courses").
		Columns("user_id", "version", "completed_at", "abort_reason", "is_cancelled").
		Values(c.UserID, int(c.Version), nullTime(c.CompletedAt), string(c.AbortReason), c.IsCancelled).
		Query()
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return assessment.CertificationCourse{}, fmt.Errorf("insert course: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return assessment.CertificationCourse{}, fmt.Errorf("course id: %w", err)
	}
	return c, nil
}

func (r *CourseRepo) Get(ctx context.Context, id int64) (assessment.CertificationCourse, error) {
	query, args := builder.Select("id", "user_id", "version", "completed_at", "abort_reason", "is_cancelled").
		From(builder.Table("certification_courses")).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return assessment.CertificationCourse{}, fmt.Errorf("query course %d: %w", id, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return assessment.CertificationCourse{}, err
		}
		return assessment.CertificationCourse{}, fmt.Errorf("course %d: %w", id, assessment.ErrNotFound)
	}
	var c assessment.CertificationCourse
	var version int
	var completedAt sql.NullTime
	var abort string
	if err := rows.Scan(&c.ID, &c.UserID, &version, &completedAt, &abort, &c.IsCancelled); err != nil {
		return assessment.CertificationCourse{}, fmt.Errorf("scan course: %w", err)
	}
	c.Version = assessment.Version(version)
	c.AbortReason = assessment.AbortReason(abort)
	if completedAt.Valid {
		t := completedAt.Time
		c.CompletedAt = &t
	}
	return c, nil
}

func (r *CourseRepo) Update(ctx context.Context, c assessment.CertificationCourse) error {
	query, args := builder.Update("certification_courses").
		Set("completed_at", nullTime(c.CompletedAt)).
		Set("abort_reason", string(c.AbortReason)).
		Set("is_cancelled", c.IsCancelled).
		Where(entsql.EQ("id", c.ID)).
		Query()
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update course %d: %w", c.ID, err)
	}
	return rowsAffected(res, fmt.Sprintf("course %d", c.ID))
}

// IDs returns the IDs of every course, ascending.
func (r *CourseRepo) IDs(ctx context.Context) ([]int64, error) {
	query, args := builder.Select("id").
		From(builder.Table("certification_courses")).
		OrderBy("id").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query course ids: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan course id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveChallenges records the challenges administered during a course.
func (r *CourseRepo) SaveChallenges(ctx context.Context, challenges []assessment.CertificationChallenge) error {
	if len(challenges) == 0 {
		return nil
	}
	ins := builder.Insert("certification_challenges").
		Columns("course_id", "challenge_id", "competence_id", "associated_skill_id", "is_neutralized", "has_validated_live_alert")
	for _, c := range challenges {
		ins.Values(c.CourseID, c.ChallengeID, c.CompetenceID, c.AssociatedSkillID, c.IsNeutralized, c.HasValidatedLiveAlert)
	}
	query, args := ins.Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert certification challenges: %w", err)
	}
	return nil
}

// Challenges returns the challenges administered during a course, in order.
func (r *CourseRepo) Challenges(ctx context.Context, courseID int64) ([]assessment.CertificationChallenge, error) {
	query, args := builder.Select("course_id", "challenge_id", "competence_id", "associated_skill_id", "is_neutralized", "has_validated_live_alert").
		From(builder.Table("certification_challenges")).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy("id").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query certification challenges: %w", err)
	}
	defer rows.Close()
	var out []assessment.CertificationChallenge
	for rows.Next() {
		var c assessment.CertificationChallenge
		if err := rows.Scan(&c.CourseID, &c.ChallengeID, &c.CompetenceID, &c.AssociatedSkillID, &c.IsNeutralized, &c.HasValidatedLiveAlert); err != nil {
			return nil, fmt.Errorf("scan certification challenge: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CertificationAssessmentRepo assembles certification scoring snapshots.
type CertificationAssessmentRepo struct{ q querier }

var _ assessment.CertificationAssessmentRepository = (*CertificationAssessmentRepo)(nil)

func (r *CertificationAssessmentRepo) GetByCourseID(ctx context.Context, courseID int64) (assessment.CertificationAssessment, error) {
	courses := &CourseRepo{q: r.q}
	course, err := courses.Get(ctx, courseID)
	if err != nil {
		return assessment.CertificationAssessment{}, err
	}
	a, err := (&AssessmentRepo{q: r.q}).GetByCourseID(ctx, courseID)
	if err != nil {
		return assessment.CertificationAssessment{}, err
	}
	challenges, err := courses.Challenges(ctx, courseID)
	if err != nil {
		return assessment.CertificationAssessment{}, err
	}
	answers, err := (&AnswerRepo{q: r.q}).FindByAssessment(ctx, a.ID)
	if err != nil {
		return assessment.CertificationAssessment{}, err
	}
	return assessment.CertificationAssessment{
		ID:                    a.ID,
		UserID:                a.UserID,
		CertificationCourseID: courseID,
		State:                 a.State,
		Version:               course.Version,
		Challenges:            challenges,
		Answers:               answers,
	}, nil
}

// ResultRepo stores assessment results.
type ResultRepo struct{ q querier }

var _ assessment.AssessmentResultRepository = (*ResultRepo)(nil)

func (r *ResultRepo) Save(ctx context.Context, res assessment.AssessmentResult) (assessment.AssessmentResult, error) {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	query, args := builder.Insert("assessment_results").
		Columns("assessment_id", "certification_course_id", "pix_score", "reproducibility_rate", "status", "emitter", "comment_for_jury", "created_at").
		Values(res.AssessmentID, res.CertificationCourseID, res.PixScore, res.ReproducibilityRate, string(res.Status), res.Emitter, res.CommentForJury, res.CreatedAt).
		Query()
	out, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return assessment.AssessmentResult{}, fmt.Errorf("insert assessment result: %w", err)
	}
	if res.ID, err = out.LastInsertId(); err != nil {
		return assessment.AssessmentResult{}, fmt.Errorf("assessment result id: %w", err)
	}
	return res, nil
}

// LatestByCourse returns the most recent result of a course.
func (r *ResultRepo) LatestByCourse(ctx context.Context, courseID int64) (assessment.AssessmentResult, error) {
	query, args := builder.Select("id", "assessment_id", "certification_course_id", "pix_score", "reproducibility_rate", "status", "emitter", "comment_for_jury", "created_at").
		From(builder.Table("assessment_results")).
		Where(entsql.EQ("certification_course_id", courseID)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return assessment.AssessmentResult{}, fmt.Errorf("query assessment result: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return assessment.AssessmentResult{}, err
		}
		return assessment.AssessmentResult{}, fmt.Errorf("result of course %d: %w", courseID, assessment.ErrNotFound)
	}
	var res assessment.AssessmentResult
	var status string
	if err := rows.Scan(&res.ID, &res.AssessmentID, &res.CertificationCourseID, &res.PixScore, &res.ReproducibilityRate, &status, &res.Emitter, &res.CommentForJury, &res.CreatedAt); err != nil {
		return assessment.AssessmentResult{}, fmt.Errorf("scan assessment result: %w", err)
	}
	res.Status = assessment.ResultStatus(status)
	return res, nil
}

// MarkRepo stores competence marks.
type MarkRepo struct{ q querier }

var _ assessment.CompetenceMarkRepository = (*MarkRepo)(nil)

func (r *MarkRepo) Save(ctx context.Context, marks []assessment.CompetenceMark) error {
	if len(marks) == 0 {
		return nil
	}
	ins := builder.Insert("competence_marks").
		Columns("assessment_result_id", "competence_id", "competence_code", "area_code", "level", "score")
	for _, m := range marks {
		ins.Values(m.AssessmentResultID, m.CompetenceID, m.CompetenceCode, m.AreaCode, m.Level, m.Score)
	}
	query, args := ins.Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert competence marks: %w", err)
	}
	return nil
}

// FindByResult returns the marks of a result ordered by competence code.
func (r *MarkRepo) FindByResult(ctx context.Context, resultID int64) ([]assessment.CompetenceMark, error) {
	query, args := builder.Select("assessment_result_id", "competence_id", "competence_code", "area_code", "level", "score").
		From(builder.Table("competence_marks")).
		Where(entsql.EQ("assessment_result_id", resultID)).
		OrderBy("competence_code").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query competence marks: %w", err)
	}
	defer rows.Close()
	var out []assessment.CompetenceMark
	for rows.Next() {
		var m assessment.CompetenceMark
		if err := rows.Scan(&m.AssessmentResultID, &m.CompetenceID, &m.CompetenceCode, &m.AreaCode, &m.Level, &m.Score); err != nil {
			return nil, fmt.Errorf("scan competence mark: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// FlashConfigRepo stores flash algorithm configurations. The latest one is current.
type FlashConfigRepo struct{ q querier }

var _ assessment.FlashAlgorithmConfigurationRepository = (*FlashConfigRepo)(nil)

func (r *FlashConfigRepo) Save(ctx context.Context, c assessment.FlashAlgorithmConfiguration) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query, args := builder.Insert("flash_algorithm_configurations").
		Columns("maximum_assessment_length", "variation_percent", "variation_percent_until", "double_measures_until", "minimum_answers_required", "created_at").
		Values(c.MaximumAssessmentLength, c.VariationPercent, c.VariationPercentUntil, c.DoubleMeasuresUntil, c.MinimumAnswersRequiredToValidateACertification, c.CreatedAt).
		Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert flash configuration: %w", err)
	}
	return nil
}

func (r *FlashConfigRepo) Get(ctx context.Context) (assessment.FlashAlgorithmConfiguration, error) {
	query, args := builder.Select("maximum_assessment_length", "variation_percent", "variation_percent_until", "double_measures_until", "minimum_answers_required", "created_at").
		From(builder.Table("flash_algorithm_configurations")).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return assessment.FlashAlgorithmConfiguration{}, fmt.Errorf("query flash configuration: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return assessment.FlashAlgorithmConfiguration{}, err
		}
		return assessment.FlashAlgorithmConfiguration{}, fmt.Errorf("flash configuration: %w", assessment.ErrNotFound)
	}
	var c assessment.FlashAlgorithmConfiguration
	if err := rows.Scan(&c.MaximumAssessmentLength, &c.VariationPercent, &c.VariationPercentUntil, &c.DoubleMeasuresUntil, &c.MinimumAnswersRequiredToValidateACertification, &c.CreatedAt); err != nil {
		return assessment.FlashAlgorithmConfiguration{}, fmt.Errorf("scan flash configuration: %w", err)
	}
	return c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
