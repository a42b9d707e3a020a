package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/claimdesk/internal/model"
)

const timeLayout = "Jan 2, 2006 15:04 MST"

// RenderClaim renders the full claim view. actions are the intents the current
// role may apply; they are listed at the bottom when present.
func RenderClaim(c *model.Claim, actions []string) string {
	var sb strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		BoldStyle.Render(ClaimIcon+" Claim "+c.ID), "  ", StatusBadge(c.Status))
	sb.WriteString(header + "\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&sb, "  %s %s\n", SubtleStyle.Render(fmt.Sprintf("%-13s", label+":")), value)
	}
	field("Policy", c.PolicyNumber)
	field("Policyholder", c.PolicyholderName)
	field("Vehicle", CarIcon+" "+c.VehicleInfo())
	field("Location", c.IncidentLocation)
	field("Photos", fmt.Sprintf("%d", len(c.DamageImages)))
	field("Submitted", c.CreatedAt.Format(timeLayout))
	field("Updated", c.UpdatedAt.Format(timeLayout))
	fmt.Fprintf(&sb, "\n  %s\n", c.AccidentDetails)

	if c.AIDamageAssessment != "" {
		sb.WriteString("\n" + TitleStyle.UnsetMargins().Render(RobotIcon+" AI Assessment") + "\n")
		if c.AIDegraded {
			sb.WriteString("  " + FormatWarning(c.AIDamageAssessment) + "\n")
		} else {
			sb.WriteString("  " + c.AIDamageAssessment + "\n")
		}
		if c.AIConfidenceScore != nil {
			fmt.Fprintf(&sb, "  Confidence: %d%%\n", *c.AIConfidenceScore)
		}
	}

	if c.CurrentEstimate != nil || c.AIEstimate != nil || c.RepairShopEstimate != nil || c.AgentEstimate != nil {
		sb.WriteString("\n" + TitleStyle.UnsetMargins().Render("Estimates") + "\n")
		sb.WriteString(renderEstimateLine("Current", c.CurrentEstimate, true))
		sb.WriteString(renderEstimateLine("AI", c.AIEstimate, false))
		sb.WriteString(renderEstimateLine("Repair Shop", c.RepairShopEstimate, false))
		sb.WriteString(renderEstimateLine("Agent", c.AgentEstimate, false))
	}

	if len(c.SuggestedShops) > 0 {
		sb.WriteString("\n" + TitleStyle.UnsetMargins().Render(WrenchIcon+" Suggested Repair Shops") + "\n")
		sb.WriteString(RenderShops(c.SuggestedShops))
	}

	if len(c.Comments) > 0 {
		sb.WriteString("\n" + TitleStyle.UnsetMargins().Render(CommentIcon+" Activity") + "\n")
		for _, comment := range c.Comments {
			fmt.Fprintf(&sb, "  %s %s\n    %s\n",
				SubtleStyle.Render(comment.Timestamp.Format(timeLayout)),
				BoldStyle.Render(fmt.Sprintf("%s (%s)", comment.AuthorName, comment.AuthorRole)),
				comment.Text)
		}
	}

	if len(actions) > 0 {
		sb.WriteString("\n" + InfoStyle.Render("Available actions: "+strings.Join(actions, ", ")) + "\n")
	}

	return sb.String()
}

func renderEstimateLine(label string, e *model.Estimate, highlight bool) string {
	if e == nil {
		return ""
	}
	amount := model.FormatAmount(e.TotalCost)
	if highlight {
		amount = SuccessStyle.Bold(true).Render(amount)
	}
	line := fmt.Sprintf("  %-12s %s  %s\n", label+":", amount,
		SubtleStyle.Render(fmt.Sprintf("labor %s, parts %s, by %s",
			model.FormatAmount(e.LaborCost), model.FormatAmount(e.PartsCost), e.Source)))
	if e.Details != "" {
		line += "               " + e.Details + "\n"
	}
	return line
}

// RenderClaimList renders claims as a table, one row per claim.
func RenderClaimList(claims []model.Claim) string {
	if len(claims) == 0 {
		return SubtleStyle.Render("No claims found.") + "\n"
	}

	columns := []string{"ID", "Status", "Policy", "Vehicle", "Estimate", "Updated"}
	rows := make([][]string, len(claims))
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}

	for i := range claims {
		c := &claims[i]
		estimate := "-"
		if c.CurrentEstimate != nil {
			estimate = model.FormatAmount(c.CurrentEstimate.TotalCost)
		}
		rows[i] = []string{c.ID, string(c.Status), c.PolicyNumber, c.VehicleInfo(), estimate, c.UpdatedAt.Format(time.DateTime)}
		for j, cell := range rows[i] {
			widths[j] = max(widths[j], len(cell))
		}
	}

	var sb strings.Builder
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = TableCellStyle.Render(fmt.Sprintf("%-*s", widths[i], col))
	}
	sb.WriteString(TableHeaderStyle.Render(strings.Join(header, "")) + "\n")

	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			padded := fmt.Sprintf("%-*s", widths[j], cell)
			if j == 1 {
				padded = lipgloss.NewStyle().Foreground(statusColors[claims[i].Status]).Render(padded)
			}
			cells[j] = TableCellStyle.Render(padded)
		}
		sb.WriteString(strings.Join(cells, "") + "\n")
	}
	return sb.String()
}

// RenderAssessment renders a standalone gateway assessment.
func RenderAssessment(a model.Assessment) string {
	var sb strings.Builder
	if a.Degraded {
		sb.WriteString(FormatWarning(a.Text) + "\n")
	} else {
		sb.WriteString(a.Text + "\n")
	}
	if a.ConfidenceScore != nil {
		fmt.Fprintf(&sb, "Confidence: %d%%\n", *a.ConfidenceScore)
	}
	sb.WriteString(renderEstimateLine("Estimate", &a.Estimate, true))
	return RenderBox(RobotIcon+" Damage Assessment", strings.TrimRight(sb.String(), "\n"))
}

// RenderShops renders repair shop suggestions as a numbered list.
func RenderShops(shops []model.RepairShopSuggestion) string {
	if len(shops) == 0 {
		return SubtleStyle.Render("  No repair shop suggestions.") + "\n"
	}

	var sb strings.Builder
	for i, shop := range shops {
		fmt.Fprintf(&sb, "  %d. %s", i+1, BoldStyle.Render(shop.Name))
		if shop.Rating != nil {
			fmt.Fprintf(&sb, " ★ %.1f", *shop.Rating)
		}
		fmt.Fprintf(&sb, "\n     %s\n", shop.Address)
		if shop.WebsiteURI != "" {
			fmt.Fprintf(&sb, "     %s\n", SubtleStyle.Render(shop.WebsiteURI))
		}
	}
	return sb.String()
}
