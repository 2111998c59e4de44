package ui

import "strings"

// RepositoryURL is where the project and its data live.
const RepositoryURL = "https://github.com/DipokalLab/intellect"

// creditText is shown by the "?" dialog.
var creditText = []string{
	"\"Intellect\" summarizes the achievements of great people who changed the world.",
	"",
	"All code and data are open source, so anyone can contribute:",
	RepositoryURL,
	"",
	"Contributor",
	"H. Jun Huh (Maintainer)",
}

func (m Model) creditsView() string {
	var sb strings.Builder
	sb.WriteString(m.theme.Heading.Render("Intellect"))
	sb.WriteByte('\n')
	for _, line := range creditText {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	sb.WriteString(m.theme.Help.Render(strings.Join(keyHelp, "  ")))
	sb.WriteString("\n\n")
	sb.WriteString(m.theme.Help.Render("esc close"))
	return sb.String()
}
