package ai

import (
	"fmt"
	"strings"
)

func questionAnswerPrompt(role, experience string, topics []string, description string, count int) string {
	if description == "" {
		description = "General interview preparation"
	}

	return fmt.Sprintf(`
You are an AI interview preparation assistant.

CONTEXT:
- Target Role: %s
- Years of Experience: %s
- Focus Topics (STRICT LIST): %s
- Session Description / Goal: %s

STRICT RULES (MANDATORY):
1) Generate EXACTLY %d questions.
2) Every question MUST be ONLY from the Focus Topics list.
   - Do NOT include any other topics unless explicitly present in Focus Topics.
   - Examples of forbidden topics unless listed: REST API, JWT, DBMS, OS, Networking, System Design, OOP.
3) If a question does not match Focus Topics, replace it with another question that does.
4) Use Role + Experience ONLY to tune difficulty and framing, NOT to introduce new topics.

DESCRIPTION CONTROL (MANDATORY):
- If description includes words like: "only coding", "implementation only", "DSA only", "problems only":
  - ALL questions MUST be coding/problem-solving based.
  - Each answer MUST include either:
    - a code snippet, OR
    - pseudocode + complexity.
  - Avoid theory-only questions.
- If description includes: "theory only", "concept only":
  - Questions should be conceptual.
  - Code is optional.
- If description includes: "debugging", "fix errors", "edge cases":
  - Prefer debugging/edge-case questions.

QUALITY REQUIREMENTS:
- Avoid textbook definitions.
- Prefer practical interview-style questions: reasoning, edge cases, trade-offs, debugging.
- At most ONE basic definition question, only if it helps.

OUTPUT FORMAT RULES (MANDATORY):
- Output ONLY a valid JSON array.
- No text before or after JSON.
- Use double quotes only.
- Markdown (including code blocks) is allowed INSIDE "answer".
- Must be parseable by JSON.parse().

FORMAT:
[
  {
    "question": "string",
    "answer": "string"
  }
]

FINAL CHECK:
- EXACTLY %d items
- Each question matches Focus Topics
- Valid JSON only
`, role, experience, strings.Join(topics, ", "), description, count, count)
}

func conceptExplainPrompt(question, answer string) string {
	return fmt.Sprintf(`
You are an AI interview mentor.

CONTEXT:
- Interview Question:
%s

- Candidate was already given this answer:
%s

TASK:
- Expand and deepen the GIVEN answer, not replace it.
- Explain the underlying concept in a way that makes the candidate fully interview-ready.
- Preserve and extend any technical depth already implied by the answer.
- If the concept is implementation-oriented, INCLUDE a relevant code example.
- If the original answer included or implied code, YOU MUST include code.
- Do NOT artificially limit explanation length.
- Use sections where helpful (Core Idea, How It Works, Example, Interview Tip).

OUTPUT RULES (MANDATORY):
- Output ONLY a valid JSON object.
- No text before or after the JSON.
- Markdown (including code blocks) is ALLOWED inside string values.

REQUIRED FORMAT:
{
  "title": "Short concept-focused title",
  "explanation": "Well-structured, interview-ready explanation"
}
`, question, answer)
}
