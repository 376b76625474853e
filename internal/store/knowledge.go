package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/knowledge"
)

// KnowledgeRepo stores knowledge elements. Elements are append-only.
type KnowledgeRepo struct{ q querier }

var _ assessment.KnowledgeElementRepository = (*KnowledgeRepo)(nil)

func (r *KnowledgeRepo) Save(ctx context.Context, elements []knowledge.Element) error {
	if len(elements) == 0 {
		return nil
	}
	ins := builder.Insert("knowledge_elements").
		Columns("skill_id", "status", "source", "assessment_id", "answer_id", "user_id", "created_at")
	for _, e := range elements {
		ins.Values(e.SkillID, string(e.Status), string(e.Source), e.AssessmentID, e.AnswerID, e.UserID, e.CreatedAt)
	}
	query, args := ins.Query()
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert knowledge elements: %w", err)
	}
	return nil
}

func (r *KnowledgeRepo) FindByAssessmentIDs(ctx context.Context, assessmentIDs []int64) ([][]knowledge.Element, error) {
	out := make([][]knowledge.Element, len(assessmentIDs))
	if len(assessmentIDs) == 0 {
		return out, nil
	}
	pos := make(map[int64][]int, len(assessmentIDs))
	for i, id := range assessmentIDs {
		pos[id] = append(pos[id], i)
	}

	query, args := builder.Select("skill_id", "status", "source", "assessment_id", "answer_id", "user_id", "created_at").
		From(builder.Table("knowledge_elements")).
		Where(entsql.In("assessment_id", int64Args(assessmentIDs)...)).
		OrderBy("id").
		Query()
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query knowledge elements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e knowledge.Element
		var status, source string
		if err := rows.Scan(&e.SkillID, &status, &source, &e.AssessmentID, &e.AnswerID, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge element: %w", err)
		}
		e.Status = knowledge.Status(status)
		e.Source = knowledge.Source(source)
		for _, i := range pos[e.AssessmentID] {
			out[i] = append(out[i], e)
		}
	}
	return out, rows.Err()
}
