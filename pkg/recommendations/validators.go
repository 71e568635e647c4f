package recommendations

type RecommendQuery struct {
	UserID string `query:"user_id" json:"user_id" validate:"required"`
	Limit  int    `query:"limit" json:"limit,omitempty" default:"5" validate:"min=1,max=50"`
}
