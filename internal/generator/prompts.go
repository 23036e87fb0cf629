package generator

import (
	"fmt"
	"strings"
)

func curriculumPrompt(topic, proficiencyLevel, commitmentLevel string, durationWeeks float64) string {
	durationContext := ""
	if durationWeeks > 0 {
		durationContext = fmt.Sprintf(`
IMPORTANT DURATION CONSTRAINT:
The user has only %.1f weeks available.
You MUST scale the curriculum to fit exactly within %.1f weeks.
- If duration is short (e.g. < 2 weeks), create fewer modules and focus ONLY on essentials.
- Adjust 'duration_hours' for each module to fit the timeline.
- Do NOT generate a generic 4-8 week curriculum.
`, durationWeeks, durationWeeks)
	}

	return fmt.Sprintf(`Generate a detailed learning curriculum for the topic: %s

User Profile:
- Proficiency Level: %s
- Commitment Level: %s (light=2-4hrs/week, moderate=5-8hrs/week, intensive=10+hrs/week)
%s
Please create a structured curriculum. Each module should include:
- A clear title
- Learning objectives (2-3 points)
- Estimated duration in hours
- 3-5 subtopics. Each subtopic will become a study session.

Format your response as JSON with this structure:
{
  "topic": "%s",
  "total_duration_weeks": <number>,
  "modules": [
    {
      "module_id": "m1",
      "title": "Module Title",
      "duration_hours": <number>,
      "learning_objectives": ["objective1", "objective2"],
      "subtopics": [
        {
          "title": "Subtopic Title",
          "description": "Brief description of what will be covered in this session (1 sentence)",
          "estimated_minutes": 30
        }
      ],
      "prerequisites": []
    }
  ]
}

Keep it practical and focused on the essentials for a %s learner.`,
		topic, proficiencyLevel, commitmentLevel, durationContext, topic, proficiencyLevel)
}

func quizPrompt(moduleTitle string, subtopics []string, numQuestions int) string {
	return fmt.Sprintf(`Create %d multiple-choice quiz questions for a learning module.

Module: %s
Topics covered: %s

IMPORTANT:
- Do NOT include code snippets in questions (they break JSON parsing)
- Keep questions conceptual and text-based only
- Use simple, clear language
- Avoid special characters like quotes and backslashes in questions

For each question, provide:
- The question text (NO code snippets)
- 4 answer options (A, B, C, D)
- The correct answer (letter)
- A brief explanation

Format as valid JSON array with proper escaping:
[
  {
    "question": "What is the primary characteristic of this concept?",
    "options": {
      "A": "Option A",
      "B": "Option B",
      "C": "Option C",
      "D": "Option D"
    },
    "correct_answer": "B",
    "explanation": "Brief explanation why B is correct"
  }
]

Make questions practical and test understanding, not just memorization.`,
		numQuestions, moduleTitle, strings.Join(subtopics, ", "))
}

func proficiencyPrompt(topic string) string {
	return fmt.Sprintf(`Create 5 proficiency assessment questions for the topic: %s

These questions should help determine if the learner is a beginner, intermediate, or advanced.
Start with basic questions and increase in difficulty.

Format as JSON array:
[
  {
    "question": "Question text?",
    "type": "multiple_choice",
    "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
    "difficulty": "beginner|intermediate|advanced"
  }
]

Make questions practical and assess real understanding.`, topic)
}

func studyGuidePrompt(moduleTitle string, subtopics []string) string {
	return fmt.Sprintf(`Create a concise study guide for:

Module: %s
Topics: %s

Format as markdown with:
- Key concepts and definitions
- Important points to remember
- Practical examples
- Quick tips for learning

Keep it under 500 words and actionable.`, moduleTitle, strings.Join(subtopics, ", "))
}
