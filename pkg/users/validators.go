package users

type ListUsersQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Role   *string `query:"role" json:"role,omitempty" validate:"omitempty,oneof=student admin"`
}

type CreateUserPayload struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email,max=200"`
	Role       string `json:"role,omitempty" default:"student" validate:"oneof=student admin"`
	Department string `json:"department,omitempty" validate:"omitempty,max=100"`
}

type UpdateUserPayload struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof=student admin"`
	Department *string `json:"department,omitempty" validate:"omitempty,max=100"`
}

type PayFinePayload struct {
	Amount int `json:"amount" validate:"required,min=1"`
}
