package dashboard

// SidebarView is the navigation drawer with its open state and the active
// item marked.
type SidebarView struct {
	Open     bool             `json:"open"`
	User     SidebarUser      `json:"user"`
	Initial  string           `json:"initial"`
	Sections []SidebarSection `json:"sections"`
	Promo    Promo            `json:"promo"`
}

// SidebarFor builds the drawer for the page whose label is active.
func (fx Fixtures) SidebarFor(active string, open bool) SidebarView {
	sections := make([]SidebarSection, 0, len(fx.Sidebar.Sections))
	for _, section := range fx.Sidebar.Sections {
		items := make([]SidebarItem, len(section.Items))
		for i, item := range section.Items {
			item.Active = item.Label == active
			items[i] = item
		}
		sections = append(sections, SidebarSection{Title: section.Title, Items: items})
	}

	initial := ""
	if name := []rune(fx.Sidebar.User.Name); len(name) > 0 {
		initial = string(name[0])
	}
	return SidebarView{
		Open:     open,
		User:     fx.Sidebar.User,
		Initial:  initial,
		Sections: sections,
		Promo:    fx.Sidebar.Promo,
	}
}

// ProductView is an investment product card.
type ProductView struct {
	Name          string `json:"name"`
	APY           string `json:"apy"`
	Risk          string `json:"risk"`
	Term          string `json:"term"`
	MinInvestment string `json:"minInvestment"`
	Gradient      string `json:"gradient"`
}

// CategoryView groups products under a heading.
type CategoryView struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Products    []ProductView `json:"products"`
}

// InvestmentsView is the product catalog page.
type InvestmentsView struct {
	Features   []string       `json:"features"`
	Categories []CategoryView `json:"categories"`
}

// InvestmentsFor formats the catalog.
func (fx Fixtures) InvestmentsFor(f Formatter) InvestmentsView {
	out := InvestmentsView{Features: fx.Investments.Features}
	for _, category := range fx.Investments.Categories {
		cv := CategoryView{Title: category.Title, Description: category.Description}
		for _, p := range category.Products {
			cv.Products = append(cv.Products, ProductView{
				Name:          p.Name,
				APY:           p.APY,
				Risk:          p.Risk,
				Term:          p.Term,
				MinInvestment: f.WholeMoney(p.MinInvestment),
				Gradient:      p.Gradient,
			})
		}
		out.Categories = append(out.Categories, cv)
	}
	return out
}
