package models

type Image struct {
	URL string `json:"url"`
}

type Company struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       *Image `json:"image,omitempty"`
}

// Menu is what the remote API returns for one company.
type Menu struct {
	Company    Company        `json:"company"`
	Categories []MenuCategory `json:"categories"`
}

type MenuCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Foods       []Food `json:"foods"`
}

// ImageURL returns the URL or "" for a nil image.
func (i *Image) ImageURL() string {
	if i == nil {
		return ""
	}
	return i.URL
}
