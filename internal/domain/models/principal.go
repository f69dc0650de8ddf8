package models

type Principal struct {
	ID          string
	FirstName   string
	LastName    string
	PhoneNumber string
	DateOfBirth Date
	Email       string
	Role        Role
}

func (p Principal) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// ProfileForm holds the contact fields a principal may edit on their own record.
// DateOfBirth uses the form layout YYYY-MM-DD.
type ProfileForm struct {
	FirstName   string `validate:"required" label:"First name"`
	LastName    string `validate:"required" label:"Last name"`
	PhoneNumber string `validate:"required" label:"Phone number"`
	DateOfBirth string `validate:"required" label:"Date of birth"`
	Email       string `validate:"required,email" label:"Email"`
}

func ProfileFormFrom(p Principal) ProfileForm {
	form := ProfileForm{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhoneNumber: p.PhoneNumber,
		Email:       p.Email,
	}
	if !p.DateOfBirth.IsZero() {
		form.DateOfBirth = p.DateOfBirth.FormString()
	}
	return form
}
