package domain

// PageState represents the complete state of the editing surface.
// Returned to the frontend to render the title and blocks.
type PageState struct {
	PageID             string  `json:"pageId"`
	Title              string  `json:"title"`
	TitleEmpty         bool    `json:"titleEmpty"`
	Blocks             []Block `json:"blocks"`
	PlaceholderVisible bool    `json:"placeholderVisible"`
}
