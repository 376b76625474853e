package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/certify/internal/assessment"
)

// AssessmentRepo stores assessments.
type AssessmentRepo struct{ q querier }

var _ assessment.AssessmentRepository = (*AssessmentRepo)(nil)

// Create inserts an assessment and returns it with its ID set. A zero
// CreatedAt is set to the current time.
func (r *AssessmentRepo) Create(ctx context.Context, a assessment.Assessment) (assessment.Assessment, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.State == "" {
		a.State = assessment.StateStarted
	}
	query, args := builder.Insert("assessments").
		Columns("type", "user_id", "state", "certification_course_id", "target_profile_id", "created_at").
		Values(string(a.Type), a.UserID, string(a.State), a.CertificationCourseID, a.TargetProfileID, a.CreatedAt).
		Query()
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return assessment.Assessment{}, fmt.Errorf("insert assessment: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return assessment.Assessment{}, fmt.Errorf("assessment id: %w", err)
	}
	return a, nil
}

// SetState moves an assessment to a new state.
func (r *AssessmentRepo) SetState(ctx context.Context, id int64, state assessment.State) error {
	query, args := builder.Update("assessments").
		Set("state", string(state)).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update assessment %d: %w", id, err)
	}
	return rowsAffected(res, fmt.Sprintf("assessment %d", id))
}

var assessmentColumns = []string{"id", "type", "user_id", "state", "certification_course_id", "target_profile_id", "created_at"}

func scanAssessment(rows *sql.Rows) (assessment.Assessment, error) {
	var a assessment.Assessment
	var typ, state string
	err := rows.Scan(&a.ID, &typ, &a.UserID, &state, &a.CertificationCourseID, &a.TargetProfileID, &a.CreatedAt)
	a.Type = assessment.Type(typ)
	a.State = assessment.State(state)
	return a, err
}

// Get returns an assessment with its answers.
func (r *AssessmentRepo) Get(ctx context.Context, id int64) (assessment.Assessment, error) {
	a, err := r.findOne(ctx, entsql.EQ("id", id))
	if err != nil {
		return a, fmt.Errorf("assessment %d: %w", id, err)
	}
	a.Answers, err = (&AnswerRepo{q: r.q}).FindByAssessment(ctx, a.ID)
	if err != nil {
		return assessment.Assessment{}, err
	}
	return a, nil
}

// GetByCourseID returns the assessment of a certification course, without answers.
func (r *AssessmentRepo) GetByCourseID(ctx context.Context, courseID int64) (assessment.Assessment, error) {
	a, err := r.findOne(ctx, entsql.EQ("certification_course_id", courseID))
	if err != nil {
		return a, fmt.Errorf("assessment of course %d: %w", courseID, err)
	}
	return a, nil
}

func (r *AssessmentRepo) findOne(ctx context.Context, p *entsql.Predicate) (assessment.Assessment, error) {
	query, args := builder.Select(assessmentColumns...).
		From(builder.Table("assessments")).
		Where(p).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return assessment.Assessment{}, fmt.Errorf("query assessment: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return assessment.Assessment{}, err
		}
		return assessment.Assessment{}, assessment.ErrNotFound
	}
	a, err := scanAssessment(rows)
	if err != nil {
		return assessment.Assessment{}, fmt.Errorf("scan assessment: %w", err)
	}
	return a, nil
}

func (r *AssessmentRepo) FindIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	query, args := builder.Select("id").
		From(builder.Table("assessments")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("id").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessments of user: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan assessment id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AnswerRepo stores answers.
type AnswerRepo struct{ q querier }

var _ assessment.AnswerRepository = (*AnswerRepo)(nil)

func (r *AnswerRepo) Save(ctx context.Context, a assessment.Answer) (assessment.Answer, error) {
	if a.AnsweredAt.IsZero() {
		a.AnsweredAt = time.Now().UTC()
	}
	query, args := builder.Insert("answers").
		Columns("challenge_id", "assessment_id", "result", "value", "answered_at").
		Values(a.ChallengeID, a.AssessmentID, string(a.Result), a.Value, a.AnsweredAt).
		Query()
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return assessment.Answer{}, fmt.Errorf("insert answer: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return assessment.Answer{}, fmt.Errorf("answer id: %w", err)
	}
	return a, nil
}

// FindByAssessment returns answers in insertion order.
func (r *AnswerRepo) FindByAssessment(ctx context.Context, assessmentID int64) ([]assessment.Answer, error) {
	query, args := builder.Select("id", "challenge_id", "assessment_id", "result", "value", "answered_at").
		From(builder.Table("answers")).
		Where(entsql.EQ("assessment_id", assessmentID)).
		OrderBy("id").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()
	var out []assessment.Answer
	for rows.Next() {
		var a assessment.Answer
		var result string
		if err := rows.Scan(&a.ID, &a.ChallengeID, &a.AssessmentID, &result, &a.Value, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.Result = assessment.AnswerResult(result)
		out = append(out, a)
	}
	return out, rows.Err()
}
