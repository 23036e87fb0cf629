package path

import (
	"fmt"
	"strconv"
	"strings"
)

// passing threshold for module quizzes.
const passingScore = 0.6

// EvaluateQuiz grades a quiz submission. Responses map a question index to
// an answer letter; both "0" and "q0" key formats are accepted. The function
// is pure: the same quiz and responses always produce the same evaluation.
func EvaluateQuiz(quiz Quiz, responses map[string]string) Evaluation {
	total := len(quiz.Questions)
	results := make([]QuestionResult, 0, total)
	correct := 0

	for idx, q := range quiz.Questions {
		id := strconv.Itoa(idx)
		answer := responses[id]
		if answer == "" {
			answer = responses["q"+id]
		}

		isCorrect := answer != "" && strings.EqualFold(answer, q.CorrectAnswer)
		if isCorrect {
			correct++
		}

		results = append(results, QuestionResult{
			QuestionID:    id,
			Question:      q.Question,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
		})
	}

	var score float64
	if total > 0 {
		score = float64(correct) / float64(total)
	}

	return Evaluation{
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		Passed:         score >= passingScore,
		Results:        results,
		KnowledgeGaps:  knowledgeGaps(score, total-correct),
	}
}

func knowledgeGaps(score float64, incorrect int) []string {
	gaps := []string{}
	if score < 0.7 {
		gaps = append(gaps, "Consider reviewing the module materials before retaking the quiz")
	}
	if incorrect > 0 {
		gaps = append(gaps, fmt.Sprintf("Review the %d questions you missed", incorrect))
	}
	return gaps
}
