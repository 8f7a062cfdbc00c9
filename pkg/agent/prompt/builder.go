// Package prompt builds the LLM prompts used by the research pipeline steps.
package prompt

import (
	"fmt"
	"strings"
)

// ResearchExplanation asks the model to act as a domain expert and explain the
// query topic directly. Used when the search capability is unavailable or
// returned too little material.
func ResearchExplanation(query string, triedStrategies []string) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString(fmt.Sprintf("You are a domain expert tasked with explaining the concept of %q in a structured and insightful manner.\n", query))
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<focus_areas>\n")
	prompt.WriteString("- Clear and concise definition\n")
	prompt.WriteString("- Fundamental principles or working mechanisms\n")
	prompt.WriteString("- Real-world use cases and applications\n")
	prompt.WriteString("- Industry relevance and current developments\n")
	prompt.WriteString("- Future outlook or emerging trends\n")
	prompt.WriteString("</focus_areas>\n\n")

	if len(triedStrategies) > 0 {
		prompt.WriteString("<previous_attempts>\n")
		prompt.WriteString("Avoid repeating these earlier research angles:\n")
		for _, s := range triedStrategies {
			prompt.WriteString("- " + s + "\n")
		}
		prompt.WriteString("</previous_attempts>\n\n")
	}

	prompt.WriteString("Create a comprehensive, readable explanation (300-500 words).")
	return prompt.String()
}

// StructuredSynthesis asks the model to condense raw source material into an
// organized summary covering the fixed synthesis sections.
func StructuredSynthesis(query, content string) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString(fmt.Sprintf("Summarize the following content related to %q in an organized manner.\n", query))
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<structure>\n")
	prompt.WriteString("Include:\n")
	prompt.WriteString("- Definition\n")
	prompt.WriteString("- Key principles or mechanism\n")
	prompt.WriteString("- Applications or case studies\n")
	prompt.WriteString("- Importance or relevance\n")
	prompt.WriteString("- Any trends, challenges, or future scope\n")
	prompt.WriteString("</structure>\n\n")

	prompt.WriteString("<source>\n")
	prompt.WriteString(content)
	prompt.WriteString("\n</source>\n")
	return prompt.String()
}

// CriticEvaluation asks the model to classify the current summary as one of
// the three recommendation keywords. The caller parses the response by keyword
// search in fixed priority order.
func CriticEvaluation(query, previous, current string, loopCount, researchCount, summarizeCount, researchCap, summarizeCap int) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("You are a research quality evaluator in a multi-agent system.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<criteria>\n")
	prompt.WriteString(fmt.Sprintf("- Does it fully answer the user's research query: %q?\n", query))
	prompt.WriteString("- Does it cover key components: definition, principles, examples, applications, importance?\n")
	prompt.WriteString("- Is it better than or significantly different from the previous summary?\n")
	prompt.WriteString("- Is it detailed, well-structured, and non-redundant?\n")
	prompt.WriteString("</criteria>\n\n")

	prompt.WriteString("<previous_summary>\n")
	if previous == "" {
		prompt.WriteString("None")
	} else {
		prompt.WriteString(previous)
	}
	prompt.WriteString("\n</previous_summary>\n\n")

	prompt.WriteString("<current_summary>\n")
	prompt.WriteString(current)
	prompt.WriteString("\n</current_summary>\n\n")

	prompt.WriteString("<progress>\n")
	prompt.WriteString(fmt.Sprintf("- Loop Count: %d\n", loopCount))
	prompt.WriteString(fmt.Sprintf("- Research Attempts: %d/%d\n", researchCount, researchCap))
	prompt.WriteString(fmt.Sprintf("- Summarize Attempts: %d/%d\n", summarizeCount, summarizeCap))
	prompt.WriteString("</progress>\n\n")

	prompt.WriteString("<decision_rules>\n")
	prompt.WriteString("- Respond with **reresearch** if more or better information is needed.\n")
	prompt.WriteString("- Respond with **resummarize** if the content is enough but the summary can be improved.\n")
	prompt.WriteString("- Respond with **end** if the summary is complete and well-structured.\n")
	prompt.WriteString("</decision_rules>\n\n")

	prompt.WriteString("Reply ONLY with one word: reresearch, resummarize, or end.")
	return prompt.String()
}
