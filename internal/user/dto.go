package user

// UpdateProfileDTO is a partial update; nil fields are left untouched.
type UpdateProfileDTO struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

func (d UpdateProfileDTO) Empty() bool {
	return d.Name == nil && d.Email == nil && d.Phone == nil && d.Password == nil
}

type ProfileResponse struct {
	User *User `json:"user"`
}

type UpdateProfileResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}
