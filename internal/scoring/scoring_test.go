package scoring

import (
	"errors"
	"testing"

	"github.com/courseplatform/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// threeQuestionKey has correct options Q1:O1, Q2:O3, Q3:O5
func threeQuestionKey() *AnswerKey {
	return &AnswerKey{
		QuizID: 1,
		Questions: []KeyQuestion{
			BuildQuestion(1, []KeyOption{{ID: 1, IsCorrect: true}, {ID: 2, DisplayOrder: 1}}),
			BuildQuestion(2, []KeyOption{{ID: 3, IsCorrect: true}, {ID: 4, DisplayOrder: 1}}),
			BuildQuestion(3, []KeyOption{{ID: 5, IsCorrect: true}, {ID: 6, DisplayOrder: 1}}),
		},
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name            string
		answers         []models.SubmittedAnswer
		expectedScore   int
		expectedCorrect []bool
	}{
		{
			name: "mixed submission",
			answers: []models.SubmittedAnswer{
				{QuestionID: 1, SelectedOptionID: intPtr(1)},
				{QuestionID: 2, SelectedOptionID: intPtr(4)},
				{QuestionID: 3},
			},
			expectedScore:   1,
			expectedCorrect: []bool{true, false, false},
		},
		{
			name: "all correct",
			answers: []models.SubmittedAnswer{
				{QuestionID: 1, SelectedOptionID: intPtr(1)},
				{QuestionID: 2, SelectedOptionID: intPtr(3)},
				{QuestionID: 3, SelectedOptionID: intPtr(5)},
			},
			expectedScore:   3,
			expectedCorrect: []bool{true, true, true},
		},
		{
			name:            "empty submission",
			answers:         nil,
			expectedScore:   0,
			expectedCorrect: []bool{},
		},
		{
			name: "partial submission keeps total",
			answers: []models.SubmittedAnswer{
				{QuestionID: 3, SelectedOptionID: intPtr(5)},
			},
			expectedScore:   1,
			expectedCorrect: []bool{true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Score(threeQuestionKey(), tt.answers)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedScore, result.Score)
			assert.Equal(t, 3, result.Total)
			correct := make([]bool, 0, len(result.Answers))
			for _, a := range result.Answers {
				correct = append(correct, a.IsCorrect)
			}
			assert.Equal(t, tt.expectedCorrect, correct)
		})
	}
}

func TestScore_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		answers []models.SubmittedAnswer
	}{
		{name: "unknown question", answers: []models.SubmittedAnswer{{QuestionID: 99, SelectedOptionID: intPtr(1)}}},
		{name: "option from another question", answers: []models.SubmittedAnswer{{QuestionID: 1, SelectedOptionID: intPtr(3)}}},
		{name: "unknown option", answers: []models.SubmittedAnswer{{QuestionID: 1, SelectedOptionID: intPtr(42)}}},
		{
			name: "duplicate question",
			answers: []models.SubmittedAnswer{
				{QuestionID: 1, SelectedOptionID: intPtr(1)},
				{QuestionID: 1, SelectedOptionID: intPtr(2)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(threeQuestionKey(), tt.answers)
			assert.True(t, errors.Is(err, models.ErrValidation))
		})
	}
}

func TestScore_AllCorrectForEveryKey(t *testing.T) {
	keys := []*AnswerKey{
		threeQuestionKey(),
		{QuizID: 2, Questions: []KeyQuestion{BuildQuestion(10, []KeyOption{{ID: 100}, {ID: 101, IsCorrect: true}})}},
		{QuizID: 3},
	}

	for _, key := range keys {
		var answers []models.SubmittedAnswer
		for _, q := range key.Questions {
			answers = append(answers, models.SubmittedAnswer{QuestionID: q.ID, SelectedOptionID: q.CorrectOptionID})
		}
		result, err := Score(key, answers)
		require.NoError(t, err)
		assert.Equal(t, result.Total, result.Score)

		empty, err := Score(key, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, empty.Score)
		assert.Equal(t, len(key.Questions), empty.Total)
	}
}

func TestBuildQuestion(t *testing.T) {
	tests := []struct {
		name     string
		options  []KeyOption
		expected *int
	}{
		{name: "no correct option", options: []KeyOption{{ID: 1}, {ID: 2}}, expected: nil},
		{name: "single correct", options: []KeyOption{{ID: 1}, {ID: 2, IsCorrect: true}}, expected: intPtr(2)},
		{
			name:     "lowest display order wins",
			options:  []KeyOption{{ID: 1, IsCorrect: true, DisplayOrder: 3}, {ID: 2, IsCorrect: true, DisplayOrder: 1}},
			expected: intPtr(2),
		},
		{
			name:     "lowest id breaks ties",
			options:  []KeyOption{{ID: 7, IsCorrect: true, DisplayOrder: 1}, {ID: 5, IsCorrect: true, DisplayOrder: 1}},
			expected: intPtr(5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := BuildQuestion(1, tt.options)
			assert.Equal(t, tt.expected, q.CorrectOptionID)
			assert.Len(t, q.OptionIDs, len(tt.options))
		})
	}
}

func TestQuestionWithoutCorrectOptionNeverScores(t *testing.T) {
	key := &AnswerKey{Questions: []KeyQuestion{BuildQuestion(1, []KeyOption{{ID: 1}, {ID: 2}})}}

	result, err := Score(key, []models.SubmittedAnswer{{QuestionID: 1, SelectedOptionID: intPtr(1)}})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.False(t, result.Answers[0].IsCorrect)
}

func TestIsPass(t *testing.T) {
	assert.False(t, IsPass(0, 0))
	assert.False(t, IsPass(1, 3))
	assert.True(t, IsPass(2, 4))
	assert.True(t, IsPass(2, 3))
	assert.False(t, IsPass(0, 1))
	assert.True(t, Result{Score: 1, Total: 2}.Passed())
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 66.67, Percent(4, 6))
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 100.0, Percent(2, 2))
	assert.Equal(t, 33.33, Percent(1, 3))
}
