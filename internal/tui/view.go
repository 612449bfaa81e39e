package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/maauso/adwizard/internal/steps"
	"github.com/maauso/adwizard/internal/wizard"
)

const barWidth = 36

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎬 Ad Generation Wizard"))
	b.WriteString("\n")

	if !m.Loaded {
		b.WriteString(InfoStyle.Render("Loading session..."))
		b.WriteString("\n")
		return b.String()
	}

	progress := m.Progress()
	pos, total := progress.Position()
	b.WriteString(fmt.Sprintf("%s  %s\n", progress.Label(), InfoStyle.Render(fmt.Sprintf("Step %d of %d", pos, total))))
	b.WriteString(renderBar(progress.Percent()))
	b.WriteString(fmt.Sprintf(" %d%%\n\n", progress.Percent()))
	b.WriteString(renderSteps(progress))
	b.WriteString("\n\n")

	b.WriteString(BoxStyle.Render(m.details()))
	b.WriteString("\n")

	if m.Notice != "" {
		b.WriteString(StatusStyle.Render("✅ " + m.Notice))
		b.WriteString("\n")
	}
	if m.Err != nil {
		b.WriteString(ErrorStyle.Render("❌ " + m.Err.Error()))
		b.WriteString("\n")
	}

	if m.ConfirmingReset {
		b.WriteString(WarnStyle.Render("Delete all progress and start over? [y/N]"))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(InfoStyle.Render(footer(m.Step().Step)))
	return b.String()
}

func renderBar(percent int) string {
	filled := percent * barWidth / 100
	return BarFilledStyle.Render(strings.Repeat("█", filled)) +
		BarEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
}

// renderSteps draws the step row. Passed steps get a check, locked ones
// are dimmed.
func renderSteps(p wizard.Progress) string {
	cells := make([]string, 0, len(p.States))
	for _, st := range p.States {
		label := fmt.Sprintf("%d %s %s", st.Index+1, st.Icon, st.ShortName)
		switch {
		case st.Active:
			cells = append(cells, ActiveStepStyle.Render(label))
		case st.Passed:
			cells = append(cells, DoneStepStyle.Render("✓ "+label))
		case st.Unlocked:
			cells = append(cells, OpenStepStyle.Render(label))
		default:
			cells = append(cells, LockedStepStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, cells...)
}

// details previews what the active step has produced.
func (m Model) details() string {
	snap := m.Snapshot
	step := m.Step()

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(step.Icon + " " + step.Name))
	b.WriteString("\n\n")

	if missing := wizard.Missing(step.Step, snap); len(missing) > 0 {
		b.WriteString(WarnStyle.Render("Please generate a script first."))
		b.WriteString("\n")
	}

	switch step.Step {
	case wizard.StepProduct:
		if p := snap.Product; p != nil {
			fmt.Fprintf(&b, "Name: %s\n", p.Name())
			if d := p.Description(); d != "" {
				fmt.Fprintf(&b, "Description: %s\n", preview(d, 200))
			}
			for _, img := range p.Assets.Images {
				fmt.Fprintf(&b, "Image: %s\n", steps.AssetDisplayName(steps.AssetImage, img))
			}
			if p.Assets.Video != "" {
				fmt.Fprintf(&b, "Video: %s\n", steps.AssetDisplayName(steps.AssetVideo, p.Assets.Video))
			}
			if p.Assets.Voice != "" {
				fmt.Fprintf(&b, "Voice: %s\n", steps.AssetDisplayName(steps.AssetVoice, p.Assets.Voice))
			}
		}
	case wizard.StepScript:
		if s := snap.Script; s != nil {
			b.WriteString(preview(s.Script, 600))
			b.WriteString("\n")
		}
	case wizard.StepImage:
		if snap.Script != nil {
			prompt := steps.ComposePrompt(snap.Product.Name(), snap.Product.Description(), snap.Script.Script)
			fmt.Fprintf(&b, "Suggested prompt:\n%s\n", InfoStyle.Render(preview(prompt, 400)))
		}
		if img := snap.Image; img != nil {
			fmt.Fprintf(&b, "\nRendered with: %s\n", preview(img.OptimizedPrompt, 300))
		}
	case wizard.StepVoice:
		if v := snap.Voice; v != nil {
			b.WriteString(preview(v.VoiceText, 600))
			b.WriteString("\n")
		}
	case wizard.StepAvatar:
		b.WriteString(m.catalogDetails())
		if v := snap.AvatarVideo; v != nil {
			fmt.Fprintf(&b, "\nVideo: %s\n", v.VideoURL)
		}
	case wizard.StepSummary:
		sum := steps.NewSummary(snap)
		for i, st := range sum.Steps {
			mark := WarnStyle.Render("○")
			if st.Completed {
				mark = StatusStyle.Render("●")
			}
			fmt.Fprintf(&b, "%s %-8s %s: %d\n", mark, st.ShortName, sum.Stats[i].Label, sum.Stats[i].Count)
		}
	}

	if step.Key != "" && !wizard.Completed(step.Step, snap) {
		fmt.Fprintf(&b, "%s\n", InfoStyle.Render("Not done yet. Run: adwizard "+step.Command))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) catalogDetails() string {
	switch {
	case m.CatalogsLoading:
		return InfoStyle.Render("Loading avatars and voices...") + "\n"
	case m.Catalogs == nil:
		return InfoStyle.Render("Press r to load avatars and voices.") + "\n"
	}

	var b strings.Builder
	c := m.Catalogs
	if c.AvatarsHint != "" {
		b.WriteString(WarnStyle.Render(c.AvatarsHint) + "\n")
	}
	for _, a := range c.Avatars {
		marker := "  "
		if a.ID == c.AvatarID {
			marker = "▸ "
		}
		fmt.Fprintf(&b, "%savatar %s (%s)\n", marker, a.Label(), a.ID)
	}
	if c.VoicesHint != "" {
		b.WriteString(WarnStyle.Render(c.VoicesHint) + "\n")
	}
	for _, v := range c.Voices {
		marker := "  "
		if v.ID == c.VoiceID {
			marker = "▸ "
		}
		fmt.Fprintf(&b, "%svoice  %s (%s)\n", marker, v.Label(), v.ID)
	}
	if m.CatalogsErr != nil {
		b.WriteString(ErrorStyle.Render(m.CatalogsErr.Error()) + "\n")
	}
	return b.String()
}

func footer(step wizard.Step) string {
	keys := []string{"←/→ move", "1-6 jump", "r refresh", "x start over", "q quit"}
	if step == wizard.StepAvatar {
		keys[2] = "r reload catalogs"
	}
	return strings.Join(keys, " • ")
}

// preview trims s and shortens it to n runes.
func preview(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
