package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hablemosverde/verde/internal/client/models"
	"github.com/hablemosverde/verde/internal/client/services"
)

var (
	green = lipgloss.Color("#4ade80")
	dim   = lipgloss.Color("245")

	titleStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)
)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(green).
	Padding(0, 1)

func renderProfile(u models.User) string {
	lines := []string{
		titleStyle.Render(u.Name) + " " + dimStyle.Render("@"+u.Username),
		u.Email,
	}
	if u.Bio != "" {
		lines = append(lines, lipgloss.NewStyle().Italic(true).Render(u.Bio))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func renderPosts(posts []models.Post) string {
	if len(posts) == 0 {
		return dimStyle.Render("No posts yet.")
	}

	cards := make([]string, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, renderPost(p))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func renderPost(p models.Post) string {
	header := dimStyle.Render(fmt.Sprintf("%s · %s · %s", p.ID, p.Location, p.CreatedAt.Format("2006-01-02 15:04")))
	body := p.Caption
	if len(p.Tags) > 0 {
		body += "\n" + titleStyle.Render("#"+strings.Join(p.Tags, " #"))
	}
	return cardStyle.Render(header + "\n" + body)
}

func renderPostDetails(d *services.PostDetails) string {
	parts := []string{renderPost(d.Post)}
	if d.IsOwner {
		parts = append(parts, dimStyle.Render("edit "+d.Post.ID+" · delete "+d.Post.ID))
	}
	parts = append(parts, titleStyle.Render("Más publicaciones relacionadas"), renderPosts(d.Related))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderCreators(creators []services.Creator) string {
	if len(creators) == 0 {
		return dimStyle.Render("No creators yet.")
	}

	lines := []string{titleStyle.Render("Mejores Creadores")}
	for _, c := range creators {
		action := "Seguir"
		if c.Following {
			action = "Dejar de seguir"
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s  %s",
			c.User.Name,
			dimStyle.Render("@"+c.User.Username),
			dimStyle.Render(fmt.Sprintf("%s · %d seguidores", c.User.ID, c.Followers)),
			titleStyle.Render("["+action+"]")))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
