package nav

import "gridstock/models"

// Link is one entry of the top navigation.
type Link struct {
	Label string
	Href  string
}

// TopNavData is shared with page renderers.
type TopNavData struct {
	Username string
	Role     string
	Links    []Link
}

func BuildTopNavData(session models.Session) TopNavData {
	links := []Link{
		{Label: "Products", Href: "/tasker/products"},
		{Label: "Orders", Href: "/tasker/orders"},
		{Label: "Audit log", Href: "/tasker/audit-logs"},
		{Label: "Reports", Href: "/tasker/reports"},
	}
	if session.User.Role == models.RoleAdmin {
		links = append(links,
			Link{Label: "Dashboard", Href: "/tasker/dashboard"},
			Link{Label: "Users", Href: "/tasker/admin/users"},
		)
	}
	links = append(links, Link{Label: "Help", Href: "/tasker/help"})
	return TopNavData{Username: session.User.Username, Role: session.User.Role, Links: links}
}
