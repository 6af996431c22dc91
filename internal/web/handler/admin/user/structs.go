package user

type createInput struct {
	Name        string   `json:"name"        validate:"required,min=1,max=255"`
	Email       string   `json:"email"       validate:"required,email,max=255"`
	Password    string   `json:"password"    validate:"required,min=8,max=255"`
	Roles       []string `json:"roles"       validate:"dive,required"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

type updateInput struct {
	Name        string   `json:"name"        validate:"required,min=1,max=255"`
	Email       string   `json:"email"       validate:"required,email,max=255"`
	Password    string   `json:"password"    validate:"omitempty,min=8,max=255"`
	Roles       []string `json:"roles"       validate:"dive,required"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

// userView is the listing shape with embedded role names and direct
// permission grants.
type userView struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}
