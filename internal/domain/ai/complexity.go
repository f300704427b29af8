package ai

import (
	"strings"
)

// Assessment is the complexity rating for one conversation, used to pick a
// model tier. The four factor values are kept for observability and are each
// already weighted, so Score is their clamped sum.
type Assessment struct {
	Score              float64 `json:"score"`
	LengthFactor       float64 `json:"length_factor"`
	MedicalTermDensity float64 `json:"medical_term_density"`
	QuestionComplexity float64 `json:"question_complexity"`
	ContextFactor      float64 `json:"context_factor"`
}

// Factor weights. They sum to the score ceiling.
const (
	maxScore          = 10.0
	lengthWeight      = 3.0
	medicalWeight     = 3.0
	questionWeight    = 2.0
	contextWeight     = 2.0
	lengthSaturation  = 600.0 // characters at which length contributes fully
	medicalSaturation = 5.0   // distinct term hits for full medical weight
	contextSaturation = 10.0  // prior turns for full context weight
)

// medicalTerms is the static dictionary used for term-density scoring.
// Lowercase; matched as substrings of the lowercased conversation.
var medicalTerms = []string{
	"allergy", "anemia", "antibiotic", "arrhythmia", "arthritis", "asthma",
	"biopsy", "blood pressure", "bronchitis", "cholesterol", "chronic",
	"cortisol", "diabetes", "diagnosis", "dosage", "eczema", "fatigue",
	"fever", "glucose", "headache", "hemoglobin", "hypertension",
	"hypothyroid", "ibuprofen", "infection", "inflammation", "insulin",
	"kidney", "lab result", "medication", "migraine", "mri", "nausea",
	"palpitation", "prescription", "rash", "seizure", "side effect",
	"symptom", "thyroid", "tumor", "ultrasound", "vaccine", "vertigo",
	"x-ray",
}

// questionMarkers are heuristics for multi-part or comparative questions.
var questionMarkers = []string{
	"compare", "versus", " vs ", "difference between", "interact",
	"instead of", "which is", "why", "how does", "what if", "should i",
	"is it safe", "together with",
}

// Assess scores a conversation's difficulty on [0, 10]. Pure and
// deterministic; empty input yields all-zero factors.
func Assess(messages []ChatMessage) Assessment {
	if len(messages) == 0 {
		return Assessment{}
	}

	var totalLen int
	var sb strings.Builder
	for _, m := range messages {
		totalLen += len(m.Content)
		sb.WriteString(m.Content)
		sb.WriteByte('\n')
	}
	text := strings.ToLower(sb.String())

	lengthFactor := saturate(float64(totalLen), lengthSaturation) * lengthWeight

	var termHits float64
	for _, term := range medicalTerms {
		if strings.Contains(text, term) {
			termHits++
		}
	}
	medicalFactor := saturate(termHits, medicalSaturation) * medicalWeight

	questionFactor := questionSignal(text) * questionWeight

	priorTurns := float64(len(messages) - 1)
	contextFactor := saturate(priorTurns, contextSaturation) * contextWeight

	score := lengthFactor + medicalFactor + questionFactor + contextFactor
	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}

	return Assessment{
		Score:              score,
		LengthFactor:       lengthFactor,
		MedicalTermDensity: medicalFactor,
		QuestionComplexity: questionFactor,
		ContextFactor:      contextFactor,
	}
}

// questionSignal returns a [0, 1] heuristic for question difficulty:
// multiple question marks and comparative phrasing both raise it.
func questionSignal(text string) float64 {
	var signals float64
	if n := strings.Count(text, "?"); n >= 2 {
		signals += 2
	} else if n == 1 {
		signals++
	}
	for _, marker := range questionMarkers {
		if strings.Contains(text, marker) {
			signals++
		}
	}
	return saturate(signals, 4.0)
}

// saturate maps value onto [0, 1], reaching 1 at the saturation point.
func saturate(value, saturation float64) float64 {
	if value <= 0 {
		return 0
	}
	if value >= saturation {
		return 1
	}
	return value / saturation
}
