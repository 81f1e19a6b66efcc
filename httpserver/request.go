package httpserver

import (
	"moviehub/movie"
	"moviehub/user"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,notblank,max=72"`
}

func (r LoginRequest) ToCredentials() user.Credentials {
	return user.Credentials{Email: r.Email, Password: r.Password}
}

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,notblank,min=2,max=100"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

func (r RegisterRequest) ToRegistration() user.Registration {
	return user.Registration{
		Name:                 r.Name,
		Email:                r.Email,
		Password:             r.Password,
		PasswordConfirmation: r.PasswordConfirmation,
	}
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"omitempty,notblank,min=2,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
}

func (r UpdateProfileRequest) ToProfileUpdate() user.ProfileUpdate {
	return user.ProfileUpdate{Name: r.Name, Email: r.Email}
}

type ChangePasswordRequest struct {
	CurrentPassword         string `json:"current_password" validate:"required,notblank,max=72"`
	NewPassword             string `json:"new_password" validate:"required,min=8,max=72"`
	NewPasswordConfirmation string `json:"new_password_confirmation" validate:"required,eqfield=NewPassword"`
}

func (r ChangePasswordRequest) ToPasswordChange() user.PasswordChange {
	return user.PasswordChange{
		CurrentPassword:         r.CurrentPassword,
		NewPassword:             r.NewPassword,
		NewPasswordConfirmation: r.NewPasswordConfirmation,
	}
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// VerifyEmailRequest carries the signed link from a verification email.
type VerifyEmailRequest struct {
	URL string `json:"url" validate:"required,notblank,max=2048"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token" validate:"required,notblank"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

func (r ResetPasswordRequest) ToPasswordReset() user.PasswordReset {
	return user.PasswordReset{
		Token:                r.Token,
		Email:                r.Email,
		Password:             r.Password,
		PasswordConfirmation: r.PasswordConfirmation,
	}
}

// FiltersRequest updates only the fields it carries.
type FiltersRequest struct {
	Genre     *string `json:"genre" validate:"omitempty,max=50"`
	Year      *string `json:"year" validate:"omitempty,max=9"`
	Rating    *string `json:"rating" validate:"omitempty,max=10"`
	SortBy    *string `json:"sort_by" validate:"omitempty,sortkey"`
	SortOrder *string `json:"sort_order" validate:"omitempty,sortorder"`
}

func (r FiltersRequest) ToPatch() movie.FilterPatch {
	p := movie.FilterPatch{
		Genre:  r.Genre,
		Year:   r.Year,
		Rating: r.Rating,
	}
	if r.SortBy != nil {
		k := movie.SortKey(*r.SortBy)
		p.SortBy = &k
	}
	if r.SortOrder != nil {
		o := movie.SortOrder(*r.SortOrder)
		p.SortOrder = &o
	}
	return p
}

// ToggleFavoriteRequest names the movie by database id, catalog id or both.
type ToggleFavoriteRequest struct {
	ID     int64  `json:"id" validate:"required_without=IMDbID,gte=0"`
	IMDbID string `json:"imdbID" validate:"required_without=ID,max=20"`
}
