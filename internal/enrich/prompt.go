package enrich

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

const analyzeSystemPrompt = `You are a B2B sales-qualification analyst for a web agency. ` +
	`Respond with exactly one valid JSON object and nothing else: no prose, no markdown, no code fences. ` +
	`Schema: {"score": <int 0-100>, "interest": "hot"|"warm"|"cold", "reasoning": <string>, ` +
	`"offerings": [<string>], "opening_line": <string>, "follow_up_line": <string>, ` +
	`"conversion_prob": <int 0-100>, "pain_points": [<string>], "ideal_offer": <string>}`

// renderPrompt embeds the candidate's attributes into the user message.
// Only fields the business actually has are mentioned so the model does not
// hallucinate around empty strings.
func renderPrompt(c model.Candidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Qualify this business as a lead for website and digital-marketing services.\n\n")
	fmt.Fprintf(&b, "Business: %s\n", c.BusinessName)

	if c.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", c.Category)
	}
	if c.City != "" {
		fmt.Fprintf(&b, "City: %s\n", c.City)
	}
	if c.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", c.Address)
	}
	if c.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", c.Phone)
	}
	if c.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", c.Email)
	}
	if c.Website != "" {
		fmt.Fprintf(&b, "Website: %s\n", c.Website)
	} else {
		b.WriteString("Website: none (key signal: not reachable online)\n")
	}
	if c.Rating != nil {
		fmt.Fprintf(&b, "Rating: %.1f of 5 (%d reviews)\n", *c.Rating, c.ReviewCount)
	}
	if c.PriceTier != "" {
		fmt.Fprintf(&b, "Price tier: %s\n", c.PriceTier)
	}
	if c.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", truncate(c.Description, 600))
	}
	if len(c.Attributes) > 0 {
		fmt.Fprintf(&b, "Attributes: %s\n", strings.Join(c.Attributes, ", "))
	}
	if len(c.OpeningHours) > 0 {
		fmt.Fprintf(&b, "Opening hours: %s\n", strings.Join(c.OpeningHours, "; "))
	}
	fmt.Fprintf(&b, "Source: %s\n", c.Source)

	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
