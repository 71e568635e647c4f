package books

type ListBooksQuery struct {
	Limit    int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset   int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Category *string `query:"category" json:"category,omitempty" validate:"omitempty,max=100"`
	Search   *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

type PopularBooksQuery struct {
	Limit int `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=50"`
}

type CreateBookPayload struct {
	Title       string   `json:"title" validate:"required,max=300"`
	Author      string   `json:"author" validate:"required,max=200"`
	Category    string   `json:"category" validate:"required,max=100"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
	Year        int      `json:"year" validate:"required,min=1000,max=2100"`
	CopiesTotal int      `json:"copies_total,omitempty" default:"1" validate:"min=1,max=1000"`
	Rating      float64  `json:"rating,omitempty" validate:"min=0,max=5"`
	Popularity  int      `json:"popularity,omitempty" validate:"min=0,max=100"`
}

type UpdateBookPayload struct {
	Title      *string  `json:"title,omitempty" validate:"omitempty,max=300"`
	Author     *string  `json:"author,omitempty" validate:"omitempty,max=200"`
	Category   *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
	Year       *int     `json:"year,omitempty" validate:"omitempty,min=1000,max=2100"`
	Rating     *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Popularity *int     `json:"popularity,omitempty" validate:"omitempty,min=0,max=100"`
}
