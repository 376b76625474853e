package placement

import (
	"reflect"
	"testing"

	"github.com/abhisek/certify/internal/assessment"
)

func TestPropagate(t *testing.T) {
	g := testGraph(t)
	challenges := challengeMap(g)

	tests := []struct {
		name          string
		answers       []assessment.Answer
		wantValidated []string
		wantFailed    []string
	}{
		{
			name:          "no answers",
			wantValidated: []string{},
			wantFailed:    []string{},
		},
		{
			name: "correct validates easier skills",
			answers: []assessment.Answer{
				{ChallengeID: "ch-web3", Result: assessment.ResultOK},
			},
			wantValidated: []string{"web1", "web2", "web3"},
			wantFailed:    []string{},
		},
		{
			name: "wrong fails harder skills",
			answers: []assessment.Answer{
				{ChallengeID: "ch-url2", Result: assessment.ResultKO},
			},
			wantValidated: []string{},
			wantFailed:    []string{"url2", "url3"},
		},
		{
			name: "non ok results fail",
			answers: []assessment.Answer{
				{ChallengeID: "ch-web5", Result: assessment.ResultAband},
				{ChallengeID: "ch-mail2", Result: assessment.ResultTimedOut},
			},
			wantValidated: []string{},
			wantFailed:    []string{"mail2", "web5", "web6"},
		},
		{
			name: "overlapping answers are deduplicated",
			answers: []assessment.Answer{
				{ChallengeID: "ch-web2", Result: assessment.ResultOK},
				{ChallengeID: "ch-web4", Result: assessment.ResultOK},
				{ChallengeID: "ch-web4", Result: assessment.ResultOK},
			},
			wantValidated: []string{"web1", "web2", "web3", "web4"},
			wantFailed:    []string{},
		},
		{
			name: "unknown challenge ignored",
			answers: []assessment.Answer{
				{ChallengeID: "ch-nope", Result: assessment.ResultOK},
			},
			wantValidated: []string{},
			wantFailed:    []string{},
		},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy (go directive is 1.21)
		t.Run(tt.name, func(t *testing.T) {
			validated, failed := Propagate(tt.answers, challenges, g)
			if got := skillIDs(validated); !reflect.DeepEqual(got, tt.wantValidated) {
				t.Errorf("validated = %v, want %v", got, tt.wantValidated)
			}
			if got := skillIDs(failed); !reflect.DeepEqual(got, tt.wantFailed) {
				t.Errorf("failed = %v, want %v", got, tt.wantFailed)
			}
		})
	}
}
