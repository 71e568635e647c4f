package loans

type ListLoansQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	UserID *string `query:"user_id" json:"user_id,omitempty"`
	BookID *string `query:"book_id" json:"book_id,omitempty"`
	Status *string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=borrowed overdue returned"`
}

type BorrowPayload struct {
	BookID string `json:"book_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}
