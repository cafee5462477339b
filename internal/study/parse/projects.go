package parse

import "strings"

// sectionSeparator splits projects-finder output into host-specific sections.
const sectionSeparator = "---------------------"

// ProjectEntry is one related project from GitHub or DockerHub.
type ProjectEntry struct {
	Title       string `json:"title"`
	RepoName    string `json:"repo_name"`
	Creator     string `json:"creator"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ProjectGroups holds parsed projects separated by hosting site.
type ProjectGroups struct {
	GitHub []ProjectEntry `json:"github"`
	Docker []ProjectEntry `json:"docker"`
}

// Projects parses projects-finder output. Sections are separated by a literal
// dash line and classified as GitHub or DockerHub by keyword presence; a
// per-entry URL host overrides the section label. Entries matching neither
// classification, or shorter than two lines, are dropped and counted.
func Projects(text string) (groups ProjectGroups, dropped int) {
	for _, section := range strings.Split(text, sectionSeparator) {
		isGitHub := strings.Contains(section, "GitHub") || strings.Contains(section, "github.com")
		isDocker := strings.Contains(section, "DockerHub") ||
			strings.Contains(section, "hub.docker.com") ||
			strings.Contains(section, "Docker")

		parts := entryMarker.Split(section, -1)
		if len(parts) < 2 {
			continue
		}

		for _, part := range parts[1:] {
			lines := strings.Split(strings.TrimSpace(part), "\n")
			if len(lines) < 2 {
				dropped++
				continue
			}

			title := strings.TrimSpace(lines[0])
			var url, description string
			for _, line := range lines[1:] {
				if strings.HasPrefix(line, "URL:") {
					url = strings.TrimSpace(strings.TrimPrefix(line, "URL:"))
				} else if strings.HasPrefix(line, "Note:") {
					description = strings.TrimSpace(strings.TrimPrefix(line, "Note:"))
				}
			}

			repoName := title
			creator := "Unknown"
			if _, after, ok := strings.Cut(url, "github.com/"); ok {
				pathParts := strings.Split(after, "/")
				if len(pathParts) >= 2 {
					creator = pathParts[0]
					repoName = pathParts[1]
				}
			}

			entry := ProjectEntry{
				Title:       title,
				RepoName:    repoName,
				Creator:     creator,
				URL:         url,
				Description: description,
			}

			switch {
			case isGitHub || strings.Contains(url, "github.com"):
				groups.GitHub = append(groups.GitHub, entry)
			case isDocker || strings.Contains(url, "hub.docker.com"):
				groups.Docker = append(groups.Docker, entry)
			default:
				dropped++
			}
		}
	}
	return groups, dropped
}
