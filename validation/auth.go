package validation

// LoginInput carries the credentials posted to the login endpoint.
type LoginInput struct {
	Email    string `json:"email" validate:"min=1"`
	Password string `json:"password" validate:"min=1"`
}

func DecodeLoginInput(body []byte) (*LoginInput, error) {
	fr, err := newFieldReader(body)
	if err != nil {
		return nil, err
	}

	in := &LoginInput{
		Email:    deref(fr.str("email", true)),
		Password: deref(fr.str("password", true)),
	}
	if err := fr.finish(in); err != nil {
		return nil, err
	}
	return in, nil
}

// AdminInput describes a new admin account, from the setup endpoint or the CLI.
type AdminInput struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=8"`
}

func DecodeAdminInput(body []byte) (*AdminInput, error) {
	fr, err := newFieldReader(body)
	if err != nil {
		return nil, err
	}

	in := &AdminInput{
		Email:    deref(fr.str("email", true)),
		Password: deref(fr.str("password", true)),
	}
	if err := fr.finish(in); err != nil {
		return nil, err
	}
	return in, nil
}
