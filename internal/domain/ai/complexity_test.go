package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessEmptyInput(t *testing.T) {
	a := Assess(nil)
	assert.Zero(t, a.Score)
	assert.Zero(t, a.LengthFactor)
	assert.Zero(t, a.MedicalTermDensity)
	assert.Zero(t, a.QuestionComplexity)
	assert.Zero(t, a.ContextFactor)

	a = Assess([]ChatMessage{})
	assert.Zero(t, a.Score)
}

func TestAssessScoreBounds(t *testing.T) {
	// Saturate every factor: long text, many medical terms, comparative
	// multi-part questions, long history.
	content := strings.Repeat("diabetes insulin glucose hypertension medication dosage ", 20) +
		"compare metformin versus insulin? what if I take them together with ibuprofen? why?"
	messages := make([]ChatMessage, 0, 24)
	for i := 0; i < 12; i++ {
		messages = append(messages,
			ChatMessage{Role: RoleUser, Content: content},
			ChatMessage{Role: RoleAssistant, Content: content},
		)
	}

	a := Assess(messages)
	assert.Equal(t, 10.0, a.Score)
	assert.Equal(t, lengthWeight, a.LengthFactor)
	assert.Equal(t, medicalWeight, a.MedicalTermDensity)
	assert.Equal(t, questionWeight, a.QuestionComplexity)
	assert.Equal(t, contextWeight, a.ContextFactor)
}

func TestAssessSimpleMessageScoresLow(t *testing.T) {
	a := Assess([]ChatMessage{{Role: RoleUser, Content: "hello"}})
	assert.Less(t, a.Score, advancedScoreThreshold)
	assert.Zero(t, a.MedicalTermDensity)
	assert.Zero(t, a.ContextFactor)
}

func TestAssessDeterministic(t *testing.T) {
	messages := []ChatMessage{
		{Role: RoleUser, Content: "What does a headache with fever mean?"},
	}
	first := Assess(messages)
	second := Assess(messages)
	assert.Equal(t, first, second)
}

func TestAssessMedicalTermsRaiseScore(t *testing.T) {
	plain := Assess([]ChatMessage{{Role: RoleUser, Content: "what should I cook tonight for dinner"}})
	medical := Assess([]ChatMessage{{Role: RoleUser, Content: "my blood pressure medication causes nausea and fatigue"}})
	assert.Greater(t, medical.Score, plain.Score)
	assert.Greater(t, medical.MedicalTermDensity, 0.0)
}

func TestAssessContextFactorCountsPriorTurns(t *testing.T) {
	single := Assess([]ChatMessage{{Role: RoleUser, Content: "hi"}})
	assert.Zero(t, single.ContextFactor)

	withHistory := Assess([]ChatMessage{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "hi again"},
	})
	assert.Greater(t, withHistory.ContextFactor, 0.0)
}

func TestSaturate(t *testing.T) {
	assert.Equal(t, 0.0, saturate(-1, 10))
	assert.Equal(t, 0.5, saturate(5, 10))
	assert.Equal(t, 1.0, saturate(10, 10))
	assert.Equal(t, 1.0, saturate(25, 10))
}
